package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateStoreMSSQL is the SQL Server twin of StateStore.
type StateStoreMSSQL struct {
	db     *sql.DB
	prefix string
}

func NewStateStoreMSSQL(db *sql.DB, prefix string) *StateStoreMSSQL {
	return &StateStoreMSSQL{db: db, prefix: prefix}
}

func (s *StateStoreMSSQL) Load(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM dbo.[tracker_state] WHERE state_key=@p1`, prefixedKey(s.prefix, key))
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *StateStoreMSSQL) Save(ctx context.Context, key string, value []byte) error {
	q := `MERGE dbo.[tracker_state] AS target
          USING (SELECT @p1 AS state_key, @p2 AS value, @p3 AS updated_at) AS src
          ON target.state_key = src.state_key
          WHEN MATCHED THEN UPDATE SET value = src.value, updated_at = src.updated_at
          WHEN NOT MATCHED THEN INSERT (state_key, value, updated_at) VALUES (src.state_key, src.value, src.updated_at);`
	if _, err := s.db.ExecContext(ctx, q, prefixedKey(s.prefix, key), string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStoreMSSQL) Close() error {
	return s.db.Close()
}
