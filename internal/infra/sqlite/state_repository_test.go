package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fardannozami/consistency-tracker/internal/app/usecase"
	"github.com/fardannozami/consistency-tracker/internal/domain"
	"github.com/fardannozami/consistency-tracker/internal/infra/sqlite"
)

// =============================================================================
// SQLITE STATE REPOSITORY TESTS
// =============================================================================
//
// Tests the SQLite implementation of domain.StateStore using in-memory database.
// Each test gets a fresh database to ensure isolation.
//
// =============================================================================

func setupTestDB(t *testing.T) (*sql.DB, *sqlite.StateRepository, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// Every pooled connection would otherwise get its own empty :memory: database.
	db.SetMaxOpenConns(1)

	repo := sqlite.NewStateRepository(db)
	if err := repo.InitTable(context.Background()); err != nil {
		t.Fatalf("Failed to initialize table: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, repo, cleanup
}

func TestStateRepository_Load_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	blob, err := repo.Load(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("Expected ErrStateNotFound, got %v", err)
	}
	if blob != nil {
		t.Errorf("Expected nil blob, got %s", blob)
	}
}

func TestStateRepository_Save_InsertThenOverwrite(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.Save(ctx, "consistency_user1", []byte(`{"streak":1}`)); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if err := repo.Save(ctx, "consistency_user1", []byte(`{"streak":2}`)); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	got, err := repo.Load(ctx, "consistency_user1")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if string(got) != `{"streak":2}` {
		t.Errorf("Expected overwritten payload, got %s", got)
	}

	keys, err := repo.Keys(ctx)
	if err != nil {
		t.Fatalf("Failed to list keys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("Expected a single row after overwrite, got %v", keys)
	}
}

func TestStateRepository_Keys(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	keys, err := repo.Keys(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}

	for _, k := range []string{"consistency_b", "consistency_a"} {
		if err := repo.Save(ctx, k, []byte("{}")); err != nil {
			t.Fatalf("Failed to save %s: %v", k, err)
		}
	}

	keys, err = repo.Keys(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys, got %v", keys)
	}
}

func TestStateRepository_InitTable_Idempotent(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// InitTable was already called in setup, call it again
	if err := repo.InitTable(ctx); err != nil {
		t.Fatalf("Second InitTable should not fail: %v", err)
	}
	if err := repo.Save(ctx, "k", []byte("{}")); err != nil {
		t.Fatalf("Save after double InitTable failed: %v", err)
	}

	repo2 := sqlite.NewStateRepository(db)
	if _, err := repo2.Load(ctx, "k"); err != nil {
		t.Errorf("Load with new repo failed: %v", err)
	}
}

func TestStateRepository_TrackerRoundTrip(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	clock := domain.ClockFunc(func() time.Time { return now })

	first, err := usecase.NewConsistencyTracker(ctx, "user1", repo, clock)
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}
	if _, err := first.TrackActivity(ctx, "login"); err != nil {
		t.Fatalf("Failed to track: %v", err)
	}
	now = now.AddDate(0, 0, 1)
	if _, err := first.TrackActivity(ctx, "post"); err != nil {
		t.Fatalf("Failed to track: %v", err)
	}

	second, err := usecase.NewConsistencyTracker(ctx, "user1", repo, clock)
	if err != nil {
		t.Fatalf("Failed to reload tracker: %v", err)
	}

	stats := second.GetStats()
	if stats.Streak != 2 || stats.TotalVisits != 2 {
		t.Errorf("Expected streak=2 total=2, got streak=%d total=%d", stats.Streak, stats.TotalVisits)
	}
	if stats.LastActive == nil || *stats.LastActive != "2026-10-20" {
		t.Errorf("Expected last_active=2026-10-20, got %v", stats.LastActive)
	}
	if rec := stats.DailyActivity["2026-10-20"]; rec == nil || !rec.Activities.Contains("post") {
		t.Errorf("Expected 'post' recorded on 2026-10-20, got %+v", rec)
	}
}

func TestStateRepository_CorruptPayload(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.Save(ctx, usecase.StorageKey("user1"), []byte("not json")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	_, err := usecase.NewConsistencyTracker(ctx, "user1", repo, domain.ClockFunc(time.Now))
	if !errors.Is(err, domain.ErrMalformedState) {
		t.Errorf("Expected ErrMalformedState, got %v", err)
	}
}
