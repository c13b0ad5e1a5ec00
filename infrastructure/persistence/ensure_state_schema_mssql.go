package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureStateSchemaMSSQL creates dbo.tracker_state on SQL Server if missing.
func EnsureStateSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `IF OBJECT_ID('dbo.tracker_state', 'U') IS NULL BEGIN
        CREATE TABLE dbo.[tracker_state] (
            state_key NVARCHAR(191) NOT NULL PRIMARY KEY,
            value NVARCHAR(MAX) NOT NULL,
            updated_at DATETIME2 NOT NULL
        )
    END`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure tracker_state table: %w", err)
	}
	return nil
}
