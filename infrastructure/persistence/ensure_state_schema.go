package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureStateSchema creates the tracker_state table on PostgreSQL if missing.
func EnsureStateSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS tracker_state (
        state_key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create tracker_state table: %w", err)
	}
	return nil
}
