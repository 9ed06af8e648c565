package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SnapshotStore implements ports.SnapshotStore on a single upsert table:
//
//	CREATE TABLE snapshots (
//	    key        TEXT PRIMARY KEY,
//	    data       BYTEA NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type SnapshotStore struct {
	pool Pool
}

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(pool Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Save upserts the value under key.
func (s *SnapshotStore) Save(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO snapshots (key, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Load fetches the value stored under key.
// Returns nil, nil if no row exists.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT data FROM snapshots WHERE key = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return data, nil
}

// Remove deletes the row for key. Missing rows are not an error.
func (s *SnapshotStore) Remove(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Clear deletes every snapshot row.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM snapshots`)
	if err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
