// Package storage implements the sqlx-backed repositories for the order
// snapshot and the audit trail. Queries use '?' bindvars rebound per driver
// so the same code runs against Postgres and SQLite.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"orderbot/core/logger"
	"orderbot/order"

	"log/slog"
)

// OrderRepo persists the full order snapshot in the orders table.
type OrderRepo struct {
	db *sqlx.DB
}

var _ order.Repository = (*OrderRepo)(nil)

// NewOrderRepo wraps db with the order snapshot repository.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// LoadAll reads the persisted snapshot.
func (r *OrderRepo) LoadAll(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		Item     string  `db:"item"`
		Quantity float64 `db:"quantity"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT item, quantity FROM orders`); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	items := make(map[string]float64, len(rows))
	for _, row := range rows {
		items[row.Item] = row.Quantity
	}
	return items, nil
}

// SaveAll rewrites the snapshot in one transaction: delete everything, then
// insert the current items.
func (r *OrderRepo) SaveAll(ctx context.Context, items map[string]float64) error {
	start := time.Now()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save orders: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	insert := r.db.Rebind(`INSERT INTO orders (item, quantity) VALUES (?, ?)`)
	for item, qty := range items {
		if _, err := tx.ExecContext(ctx, insert, item, qty); err != nil {
			return fmt.Errorf("insert order item %q: %w", item, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save orders: %w", err)
	}

	logger.Debug(ctx, "db", "orders.saved",
		slog.Int("items", len(items)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
