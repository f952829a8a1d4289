// Package storage opens the configured state store backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fardannozami/consistency-tracker/internal/config"
	"github.com/fardannozami/consistency-tracker/internal/domain"
	"github.com/fardannozami/consistency-tracker/internal/infra/filestore"
	"github.com/fardannozami/consistency-tracker/internal/infra/sqlite"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store is a StateStore that can also enumerate its keys.
type Store interface {
	domain.StateStore
	Keys(ctx context.Context) ([]string, error)
}

// Open returns the store selected by backend and a function releasing it.
func Open(ctx context.Context, backend, dir, dbPath string) (Store, func() error, error) {
	switch backend {
	case config.BackendFile:
		return filestore.NewStateStore(dir), func() error { return nil }, nil
	case config.BackendSQLite:
		return openSQLite(ctx, dbPath)
	}
	return nil, nil, config.ValidateBackend(backend)
}

func openSQLite(ctx context.Context, path string) (Store, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}

	// WAL and busy timeout avoid "database is locked" errors
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := sqlite.NewStateRepository(db)
	if err := repo.InitTable(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to init table: %w", err)
	}
	return repo, db.Close, nil
}
