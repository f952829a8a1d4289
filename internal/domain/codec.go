package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeState serializes state in its persisted JSON form.
func EncodeState(state *UserActivityState) ([]byte, error) {
	out := *state
	if out.DailyActivity == nil {
		out.DailyActivity = make(map[string]*DailyRecord)
	}
	return json.Marshal(&out)
}

// DecodeState parses a persisted blob. Every failure wraps ErrMalformedState.
func DecodeState(blob []byte) (*UserActivityState, error) {
	var state UserActivityState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if state.DailyActivity == nil {
		state.DailyActivity = make(map[string]*DailyRecord)
	}

	if state.Streak < 0 || state.TotalVisits < 0 {
		return nil, fmt.Errorf("%w: negative counters", ErrMalformedState)
	}
	if state.LastActive != nil {
		if _, err := ParseDate(*state.LastActive); err != nil {
			return nil, fmt.Errorf("%w: last_active %q", ErrMalformedState, *state.LastActive)
		}
	}
	if (state.LastActive != nil) != (state.Streak >= 1) {
		return nil, fmt.Errorf("%w: streak %d inconsistent with last_active", ErrMalformedState, state.Streak)
	}

	sum := 0
	for date, rec := range state.DailyActivity {
		if _, err := ParseDate(date); err != nil {
			return nil, fmt.Errorf("%w: daily_activity key %q", ErrMalformedState, date)
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: empty record for %s", ErrMalformedState, date)
		}
		if rec.Visits < 1 {
			return nil, fmt.Errorf("%w: %d visits on %s", ErrMalformedState, rec.Visits, date)
		}
		sum += rec.Visits
	}
	if sum != state.TotalVisits {
		return nil, fmt.Errorf("%w: total_visits %d, daily visits sum to %d", ErrMalformedState, state.TotalVisits, sum)
	}

	return &state, nil
}
