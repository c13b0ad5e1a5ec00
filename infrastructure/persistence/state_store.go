package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateStore keeps tracker keys in the PostgreSQL tracker_state table.
type StateStore struct {
	db     *sql.DB
	prefix string
}

func NewStateStore(db *sql.DB, prefix string) *StateStore {
	return &StateStore{db: db, prefix: prefix}
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM tracker_state WHERE state_key=$1`, prefixedKey(s.prefix, key))
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	q := `INSERT INTO tracker_state(state_key, value, updated_at)
          VALUES ($1,$2,$3)
          ON CONFLICT (state_key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, q, prefixedKey(s.prefix, key), string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Close() error {
	return s.db.Close()
}
