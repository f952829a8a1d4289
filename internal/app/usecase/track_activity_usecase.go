package usecase

import (
	"context"
	"fmt"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

type TrackActivityUsecase struct {
	store domain.StateStore
	clock domain.Clock
}

func NewTrackActivityUsecase(store domain.StateStore, clock domain.Clock) *TrackActivityUsecase {
	return &TrackActivityUsecase{store: store, clock: clock}
}

func (uc *TrackActivityUsecase) Execute(ctx context.Context, userID, name, activity string) (string, error) {
	tracker, err := NewConsistencyTracker(ctx, userID, uc.store, uc.clock)
	if err != nil {
		return "", err
	}

	res, err := tracker.TrackActivity(ctx, activity)
	if err != nil {
		return "", err
	}

	switch {
	case res.TotalVisits == 1:
		return fmt.Sprintf("Welcome %s! First activity \"%s\" recorded. Streak started: 1 day 🔥", name, activity), nil
	case res.TodayVisits > 1:
		return fmt.Sprintf("%s already checked in today, visit #%d recorded (\"%s\"). Streak stays at %d days 🔥", name, res.TodayVisits, activity, res.Streak), nil
	case res.Streak == 1:
		// Gap of two or more days
		return fmt.Sprintf("%s is back! \"%s\" recorded, streak restarted at 1 day. Total visits: %d 💪", name, activity, res.TotalVisits), nil
	default:
		return fmt.Sprintf("Activity \"%s\" received, %s is on a %d day streak. Total visits: %d 🔥", activity, name, res.Streak, res.TotalVisits), nil
	}
}
