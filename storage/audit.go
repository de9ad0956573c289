package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"orderbot/order"
)

// Timestamps are persisted as formatted text so both drivers roundtrip them
// identically.
const auditTimeLayout = "2006-01-02 15:04:05"

// AuditRepo appends to and reads from the action_log table.
type AuditRepo struct {
	db *sqlx.DB
}

var _ order.AuditSink = (*AuditRepo)(nil)

// NewAuditRepo wraps db with the audit trail repository.
func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append inserts one audit record. Records are never updated or deleted.
func (r *AuditRepo) Append(ctx context.Context, e order.AuditEntry) error {
	query := r.db.Rebind(
		`INSERT INTO action_log (ts, actor_id, actor_name, action, details) VALUES (?, ?, ?, ?, ?)`,
	)
	_, err := r.db.ExecContext(ctx, query,
		e.Time.UTC().Format(auditTimeLayout),
		e.ActorID,
		e.ActorName,
		string(e.Action),
		e.Details,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit latest entries, newest first.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]order.AuditEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []struct {
		TS        string `db:"ts"`
		ActorID   int64  `db:"actor_id"`
		ActorName string `db:"actor_name"`
		Action    string `db:"action"`
		Details   string `db:"details"`
	}
	query := r.db.Rebind(
		`SELECT ts, actor_id, actor_name, action, details FROM action_log ORDER BY id DESC LIMIT ?`,
	)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}

	entries := make([]order.AuditEntry, 0, len(rows))
	for _, row := range rows {
		ts, err := time.ParseInLocation(auditTimeLayout, row.TS, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", row.TS, err)
		}
		entries = append(entries, order.AuditEntry{
			Time:      ts,
			ActorID:   row.ActorID,
			ActorName: row.ActorName,
			Action:    order.Action(row.Action),
			Details:   row.Details,
		})
	}
	return entries, nil
}
