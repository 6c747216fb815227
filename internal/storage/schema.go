package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createOrdersTable(db); err != nil {
		return err
	}
	return createSnapshotMetaTable(db)
}

func createOrdersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS orders (
		order_no TEXT PRIMARY KEY,
		contractor TEXT,
		delivery_date TEXT NOT NULL,
		row_num INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_row_num ON orders(row_num);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create orders table: %w", err)
	}

	return nil
}

// createSnapshotMetaTable creates a single-row table recording when the
// current snapshot was fetched from the spreadsheet.
func createSnapshotMetaTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK(id = 1),
		fetched_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create snapshot_meta table: %w", err)
	}

	return nil
}
