package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

// StorageKey derives the persistence key for a user.
func StorageKey(userID string) string {
	return "consistency_" + userID
}

// ConsistencyTracker owns one user's activity state. It is not safe for
// concurrent use, and two trackers for the same user overwrite each other.
type ConsistencyTracker struct {
	userID string
	key    string
	store  domain.StateStore
	clock  domain.Clock
	state  *domain.UserActivityState
}

func NewConsistencyTracker(ctx context.Context, userID string, store domain.StateStore, clock domain.Clock) (*ConsistencyTracker, error) {
	t := &ConsistencyTracker{
		userID: userID,
		key:    StorageKey(userID),
		store:  store,
		clock:  clock,
	}

	if err := t.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrStateNotFound) {
			return nil, err
		}
		t.state = domain.NewUserActivityState()
	}

	return t, nil
}

func (t *ConsistencyTracker) UserID() string {
	return t.userID
}

// Load replaces the in-memory state with the persisted one.
func (t *ConsistencyTracker) Load(ctx context.Context) error {
	blob, err := t.store.Load(ctx, t.key)
	if err != nil {
		return err
	}

	state, err := domain.DecodeState(blob)
	if err != nil {
		return err
	}

	t.state = state
	return nil
}

// Save overwrites the persisted state with the in-memory one.
func (t *ConsistencyTracker) Save(ctx context.Context) error {
	blob, err := domain.EncodeState(t.state)
	if err != nil {
		return err
	}
	return t.store.Save(ctx, t.key, blob)
}

// TrackActivity records one activity for today and persists the result.
// On a save error the in-memory state keeps the mutation.
func (t *ConsistencyTracker) TrackActivity(ctx context.Context, activityType string) (domain.ActivityResult, error) {
	today := domain.DayOf(t.clock.Now())
	todayKey := today.Format(domain.DateLayout)
	s := t.state

	s.TotalVisits++

	record, ok := s.DailyActivity[todayKey]
	if !ok {
		record = &domain.DailyRecord{
			Visits:     1,
			Activities: domain.NewActivitySet(activityType),
		}
		s.DailyActivity[todayKey] = record
	} else {
		record.Visits++
		record.Activities.Add(activityType)
	}

	if s.LastActive == nil {
		s.Streak = 1
	} else {
		// last_active was validated on load, so the parse cannot fail here.
		lastActive, _ := domain.ParseDate(*s.LastActive)
		switch diff := domain.DaysBetween(lastActive, today); {
		case diff == 1:
			s.Streak++
		case diff > 1:
			s.Streak = 1
		}
		// diff == 0 keeps the streak; a clock that moved backwards (diff < 0) does too.
	}
	s.LastActive = &todayKey

	if err := t.Save(ctx); err != nil {
		return domain.ActivityResult{}, err
	}

	return domain.ActivityResult{
		Streak:      s.Streak,
		TotalVisits: s.TotalVisits,
		TodayVisits: record.Visits,
	}, nil
}

// GetStats returns a copy of the current state.
func (t *ConsistencyTracker) GetStats() domain.StatsSnapshot {
	s := t.state

	var lastActive *string
	if s.LastActive != nil {
		v := *s.LastActive
		lastActive = &v
	}

	daily := make(map[string]*domain.DailyRecord, len(s.DailyActivity))
	for date, rec := range s.DailyActivity {
		daily[date] = &domain.DailyRecord{
			Visits:     rec.Visits,
			Activities: rec.Activities.Clone(),
		}
	}

	return domain.StatsSnapshot{
		Streak:        s.Streak,
		TotalVisits:   s.TotalVisits,
		LastActive:    lastActive,
		DailyActivity: daily,
	}
}

// GetWeeklyActivity returns visit counts for today and the six days before it.
func (t *ConsistencyTracker) GetWeeklyActivity() domain.WeeklyActivity {
	today := domain.DayOf(t.clock.Now())

	week := make(domain.WeeklyActivity, 0, 7)
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, -i).Format(domain.DateLayout)
		visits := 0
		if rec, ok := t.state.DailyActivity[date]; ok {
			visits = rec.Visits
		}
		week = append(week, domain.DayVisits{Date: date, Visits: visits})
	}

	return week
}

// GetMonthlyActivity lays out month as a calendar grid of visit counts.
func (t *ConsistencyTracker) GetMonthlyActivity(year int, month time.Month) domain.MonthlyActivity {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := domain.FormatDate(t.clock.Now())

	// Normalized, so month 13 of 2026 reads as January 2027.
	cal := domain.MonthlyActivity{
		Year:  first.Year(),
		Month: first.Month(),
		Days:  make([]domain.CalendarDay, 0, domain.CalendarCells),
	}
	for i := 0; i < domain.CalendarCells; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format(domain.DateLayout)
		visits := 0
		if rec, ok := t.state.DailyActivity[date]; ok {
			visits = rec.Visits
		}
		cal.Days = append(cal.Days, domain.CalendarDay{
			Date:    date,
			Visits:  visits,
			InMonth: day.Month() == first.Month(),
			Today:   date == today,
		})
	}

	return cal
}
