package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

type GetStatsUsecase struct {
	store domain.StateStore
	clock domain.Clock
}

func NewGetStatsUsecase(store domain.StateStore, clock domain.Clock) *GetStatsUsecase {
	return &GetStatsUsecase{store: store, clock: clock}
}

func (uc *GetStatsUsecase) Execute(ctx context.Context, userID, name string) (string, error) {
	tracker, err := NewConsistencyTracker(ctx, userID, uc.store, uc.clock)
	if err != nil {
		return "", err
	}

	stats := tracker.GetStats()
	if stats.LastActive == nil {
		return fmt.Sprintf("%s has no activity yet. Send #track to start a streak 💪", name), nil
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("📊 Stats for %s\n\n", name))
	sb.WriteString(fmt.Sprintf("Streak: %d days 🔥\n", stats.Streak))
	sb.WriteString(fmt.Sprintf("Total visits: %d\n", stats.TotalVisits))
	sb.WriteString(fmt.Sprintf("Active days: %d\n", len(stats.DailyActivity)))
	sb.WriteString(fmt.Sprintf("Last active: %s", *stats.LastActive))

	today := domain.FormatDate(uc.clock.Now())
	if rec, ok := stats.DailyActivity[today]; ok {
		sb.WriteString(fmt.Sprintf("\nToday: %d visits (%s)", rec.Visits, strings.Join(rec.Activities.Labels(), ", ")))
	}

	return sb.String(), nil
}
