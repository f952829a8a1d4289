package usecase

import (
	"context"
	"strings"
	"sync"
	"unicode"
)

type activityTracker interface {
	Execute(ctx context.Context, userID, name, activity string) (string, error)
}

type userReporter interface {
	Execute(ctx context.Context, userID, name string) (string, error)
}

type calendarReporter interface {
	Execute(ctx context.Context, userID, name, month string) (string, error)
}

// HandleMessageUsecase routes chat commands to the tracker use cases.
type HandleMessageUsecase struct {
	// Trackers assume a single writer per user; messages arrive on
	// separate goroutines, so executions are serialized.
	mu sync.Mutex

	track           activityTracker
	stats           userReporter
	weekly          userReporter
	calendar        calendarReporter
	defaultActivity string
}

func NewHandleMessageUsecase(track activityTracker, stats, weekly userReporter, calendar calendarReporter, defaultActivity string) *HandleMessageUsecase {
	return &HandleMessageUsecase{
		track:           track,
		stats:           stats,
		weekly:          weekly,
		calendar:        calendar,
		defaultActivity: defaultActivity,
	}
}

// Execute returns an empty reply for anything that is not a known command.
func (uc *HandleMessageUsecase) Execute(ctx context.Context, userID, name, msg string) (string, error) {
	cmd, args := splitCommand(msg)
	if cmd == "" {
		return "", nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	switch cmd {
	case "#track":
		activity := args
		if activity == "" {
			activity = uc.defaultActivity
		}
		return uc.track.Execute(ctx, userID, name, activity)
	case "#stats":
		return uc.stats.Execute(ctx, userID, name)
	case "#weekly":
		return uc.weekly.Execute(ctx, userID, name)
	case "#calendar":
		return uc.calendar.Execute(ctx, userID, name, args)
	}

	return "", nil
}

func splitCommand(msg string) (cmd, args string) {
	text := strings.TrimSpace(msg)
	if !strings.HasPrefix(text, "#") {
		return "", ""
	}

	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		return strings.ToLower(text), ""
	}
	return strings.ToLower(text[:end]), strings.TrimSpace(text[end:])
}
