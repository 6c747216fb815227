package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReplaceOrders replaces the persisted snapshot wholesale in a single
// transaction. Readers either see the old snapshot or the new one, never
// a mix.
func (db *DB) ReplaceOrders(ctx context.Context, orders []Order, fetchedAt time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("failed to clear orders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (order_no, contractor, delivery_date, row_num)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range orders {
		_, err := stmt.ExecContext(ctx, o.OrderNo, o.Contractor, o.DeliveryDate.Format(dateLayout), o.Row)
		if err != nil {
			return fmt.Errorf("failed to save order %s: %w", o.OrderNo, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, fetched_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at
	`, fetchedAt.Unix()); err != nil {
		return fmt.Errorf("failed to record fetch time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// GetAllOrders returns the persisted snapshot in sheet order together with
// the time it was fetched. Returns an empty slice and zero time when no
// snapshot has been persisted yet.
func (db *DB) GetAllOrders(ctx context.Context) ([]Order, time.Time, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT order_no, contractor, delivery_date, row_num
		FROM orders
		ORDER BY row_num
	`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []Order
	for rows.Next() {
		var o Order
		var dateStr string
		if err := rows.Scan(&o.OrderNo, &o.Contractor, &dateStr, &o.Row); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan order: %w", err)
		}
		o.DeliveryDate, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("invalid date for order %s: %w", o.OrderNo, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to iterate orders: %w", err)
	}

	var fetchedAt time.Time
	var unix int64
	err = db.conn.QueryRowContext(ctx, `SELECT fetched_at FROM snapshot_meta WHERE id = 1`).Scan(&unix)
	switch {
	case err == sql.ErrNoRows:
		// No snapshot persisted yet
	case err != nil:
		return nil, time.Time{}, fmt.Errorf("failed to read fetch time: %w", err)
	default:
		fetchedAt = time.Unix(unix, 0)
	}

	return orders, fetchedAt, nil
}

// CountOrders returns the number of orders in the persisted snapshot.
func (db *DB) CountOrders(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// Ready reports whether the database answers queries. Used by the
// readiness probe.
func (db *DB) Ready(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
