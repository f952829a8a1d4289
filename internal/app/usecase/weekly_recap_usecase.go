package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

type WeeklyRecapUsecase struct {
	store domain.StateStore
	clock domain.Clock
}

func NewWeeklyRecapUsecase(store domain.StateStore, clock domain.Clock) *WeeklyRecapUsecase {
	return &WeeklyRecapUsecase{store: store, clock: clock}
}

func (uc *WeeklyRecapUsecase) Execute(ctx context.Context, userID, name string) (string, error) {
	tracker, err := NewConsistencyTracker(ctx, userID, uc.store, uc.clock)
	if err != nil {
		return "", err
	}

	week := tracker.GetWeeklyActivity()
	stats := tracker.GetStats()

	activeDays := 0
	for _, d := range week {
		if d.Visits > 0 {
			activeDays++
		}
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Weekly recap for %s (%s – %s)\n\n", name, week[len(week)-1].Date, week[0].Date))
	for _, d := range week {
		mark := "⬜"
		if d.Visits > 0 {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s - %d visits\n", mark, d.Date, d.Visits))
	}
	sb.WriteString(fmt.Sprintf("\nActive %d/7 days, current streak %d 🔥", activeDays, stats.Streak))

	return sb.String(), nil
}
