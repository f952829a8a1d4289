package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fardannozami/consistency-tracker/internal/domain"
)

// StateRepository stores activity state blobs in a single SQLite table.
type StateRepository struct {
	db *sql.DB
}

func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT payload FROM activity_states WHERE state_key = ?`
	row := r.db.QueryRowContext(ctx, query, key)

	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", key, err)
	}

	return []byte(payload), nil
}

func (r *StateRepository) Save(ctx context.Context, key string, blob []byte) error {
	query := `
		INSERT INTO activity_states (state_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(state_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, key, string(blob), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key, most recently written first.
func (r *StateRepository) Keys(ctx context.Context) ([]string, error) {
	query := `SELECT state_key FROM activity_states ORDER BY updated_at DESC, state_key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *StateRepository) InitTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS activity_states (
			state_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}
