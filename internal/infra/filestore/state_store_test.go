package filestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/fardannozami/consistency-tracker/internal/app/usecase"
	"github.com/fardannozami/consistency-tracker/internal/domain"
	"github.com/fardannozami/consistency-tracker/internal/infra/filestore"
)

func TestStateStore_LoadMissing(t *testing.T) {
	store := filestore.NewStateStore(t.TempDir())

	_, err := store.Load(context.Background(), "consistency_user1")
	if !errors.Is(err, domain.ErrStateNotFound) {
		t.Errorf("Expected ErrStateNotFound, got %v", err)
	}
}

func TestStateStore_SaveCreatesDirectoryAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	store := filestore.NewStateStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "k.json"))
	if err != nil {
		t.Fatalf("Expected state file on disk: %v", err)
	}
	if string(b) != "second" {
		t.Errorf("Expected full overwrite, got %q", b)
	}
	if _, err := os.Stat(filepath.Join(dir, "k.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("Temp file should not remain after save")
	}
}

func TestStateStore_RejectsPathKeys(t *testing.T) {
	store := filestore.NewStateStore(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", `a\b`, "a/b"} {
		if err := store.Save(ctx, key, []byte("{}")); err == nil {
			t.Errorf("Save with key %q should fail", key)
		}
		if _, err := store.Load(ctx, key); err == nil || errors.Is(err, domain.ErrStateNotFound) {
			t.Errorf("Load with key %q should fail with a key error, got %v", key, err)
		}
	}
}

func TestStateStore_Keys(t *testing.T) {
	dir := t.TempDir()
	store := filestore.NewStateStore(dir)
	ctx := context.Background()

	for _, k := range []string{"consistency_b", "consistency_a"} {
		if err := store.Save(ctx, k, []byte("{}")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("Failed to write stray file: %v", err)
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "consistency_a" || keys[1] != "consistency_b" {
		t.Errorf("Expected [consistency_a consistency_b], got %v", keys)
	}

	empty := filestore.NewStateStore(filepath.Join(dir, "missing"))
	if keys, err := empty.Keys(ctx); err != nil || len(keys) != 0 {
		t.Errorf("Missing directory should list no keys, got %v, %v", keys, err)
	}
}

func TestStateStore_WritesReferenceDocument(t *testing.T) {
	dir := t.TempDir()
	store := filestore.NewStateStore(dir)
	ctx := context.Background()
	clock := domain.ClockFunc(func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) })

	tracker, err := usecase.NewConsistencyTracker(ctx, "alice", store, clock)
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}
	if _, err := tracker.TrackActivity(ctx, "login"); err != nil {
		t.Fatalf("Failed to track: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "consistency_alice.json"))
	if err != nil {
		t.Fatalf("Expected consistency_alice.json: %v", err)
	}
	expected := `{"streak":1,"last_active":"2026-10-19","total_visits":1,"daily_activity":{"2026-10-19":{"visits":1,"activities":["login"]}}}`
	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, b)
	}
}
