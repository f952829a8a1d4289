package domain

import "time"

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DayOf truncates t to its calendar date in t's own location. The result is
// expressed as midnight UTC so day arithmetic is free of DST shifts.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return DayOf(t).Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DaysBetween returns the whole-day difference to - from. Both must be
// values produced by DayOf or ParseDate.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ParseMonth reads a YYYY-MM month reference.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}
