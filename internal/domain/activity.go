package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStateNotFound  = errors.New("activity state not found")
	ErrMalformedState = errors.New("malformed activity state")
)

// UserActivityState is the full persisted record for one user.
type UserActivityState struct {
	Streak        int                     `json:"streak"`
	LastActive    *string                 `json:"last_active"`
	TotalVisits   int                     `json:"total_visits"`
	DailyActivity map[string]*DailyRecord `json:"daily_activity"`
}

type DailyRecord struct {
	Visits     int         `json:"visits"`
	Activities ActivitySet `json:"activities"`
}

// NewUserActivityState returns the never-active state.
func NewUserActivityState() *UserActivityState {
	return &UserActivityState{
		DailyActivity: make(map[string]*DailyRecord),
	}
}

type ActivityResult struct {
	Streak      int `json:"streak"`
	TotalVisits int `json:"total_visits"`
	TodayVisits int `json:"today_visits"`
}

// StatsSnapshot is a detached copy of a user's state.
type StatsSnapshot struct {
	Streak        int                     `json:"streak"`
	TotalVisits   int                     `json:"total_visits"`
	LastActive    *string                 `json:"last_active"`
	DailyActivity map[string]*DailyRecord `json:"daily_activity"`
}

type DayVisits struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

// WeeklyActivity holds seven days, today first.
type WeeklyActivity []DayVisits

// StateStore persists serialized state blobs by key.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date    string `json:"date"`
	Visits  int    `json:"visits"`
	InMonth bool   `json:"in_month"`
	Today   bool   `json:"today"`
}

// MonthlyActivity is a six-week, Sunday-first grid covering one month,
// padded with the trailing days of the previous month and leading days of
// the next one.
type MonthlyActivity struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Days  []CalendarDay `json:"days"`
}

const CalendarCells = 42

// ActiveDays counts in-month days with at least one visit.
func (m MonthlyActivity) ActiveDays() int {
	n := 0
	for _, d := range m.Days {
		if d.InMonth && d.Visits > 0 {
			n++
		}
	}
	return n
}

// MonthVisits sums visits over in-month days.
func (m MonthlyActivity) MonthVisits() int {
	n := 0
	for _, d := range m.Days {
		if d.InMonth {
			n += d.Visits
		}
	}
	return n
}
