package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the fulfillment store schema. The statement is kept
// portable between SQLite (local runs) and Postgres (shared deployments):
// packing list and picked summary live in JSON text columns because a
// packing list's shape is irregular and order-specific.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStatesQuery := `
	CREATE TABLE IF NOT EXISTS fulfillment_states (
		order_key TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		declared_box_count INTEGER NOT NULL DEFAULT 0,
		packing_list TEXT NOT NULL DEFAULT '[]',
		picked_summary TEXT NOT NULL DEFAULT '{}',
		artifact_ref TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);
	`

	createStatusIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_fulfillment_states_status
	ON fulfillment_states(status);
	`

	statements := []string{
		createStatesQuery,
		createStatusIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
