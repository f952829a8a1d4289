package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

type MonthlyCalendarUsecase struct {
	store domain.StateStore
	clock domain.Clock
}

func NewMonthlyCalendarUsecase(store domain.StateStore, clock domain.Clock) *MonthlyCalendarUsecase {
	return &MonthlyCalendarUsecase{store: store, clock: clock}
}

// Execute renders the calendar for month (YYYY-MM), or the current month
// when month is empty.
func (uc *MonthlyCalendarUsecase) Execute(ctx context.Context, userID, name, month string) (string, error) {
	now := uc.clock.Now()
	year, mon := now.Year(), now.Month()
	if month != "" {
		var err error
		year, mon, err = domain.ParseMonth(month)
		if err != nil {
			return fmt.Sprintf("Unknown month %q, use #calendar YYYY-MM (e.g. #calendar %s)", month, now.Format(domain.MonthLayout)), nil
		}
	}

	tracker, err := NewConsistencyTracker(ctx, userID, uc.store, uc.clock)
	if err != nil {
		return "", err
	}
	cal := tracker.GetMonthlyActivity(year, mon)

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Calendar for %s, %s %d\n\n", name, cal.Month, cal.Year))
	sb.WriteString(FormatCalendarGrid(cal))
	sb.WriteString(fmt.Sprintf("\nActive %d days, %d visits this month 🔥", cal.ActiveDays(), cal.MonthVisits()))

	return sb.String(), nil
}

// FormatCalendarGrid renders the 6x7 grid under a Sunday-first header.
// Active days show ✅, other in-month days their day number, padding days "··".
func FormatCalendarGrid(cal domain.MonthlyActivity) string {
	sb := strings.Builder{}
	sb.WriteString("Su Mo Tu We Th Fr Sa\n")
	for i, d := range cal.Days {
		cell := "··"
		if d.InMonth {
			cell = d.Date[len(d.Date)-2:]
			if d.Visits > 0 {
				cell = "✅"
			}
		}
		sb.WriteString(cell)
		if i%7 == 6 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
