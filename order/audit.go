package order

import (
	"context"
	"time"
)

// Action classifies an audited user action.
type Action string

const (
	// ActionShow records a request to display the shared order.
	ActionShow Action = "SHOW_ORDER"
	// ActionAdd records a merge of new positions into the shared order.
	ActionAdd Action = "ADD_ITEMS"
	// ActionEdit records a full replacement of the shared order.
	ActionEdit Action = "EDIT_ORDER"
	// ActionClear records the shared order being emptied.
	ActionClear Action = "CLEAR_ORDER"
)

// AuditEntry is one append-only record of who did what and when.
type AuditEntry struct {
	Time      time.Time
	ActorID   int64
	ActorName string
	Action    Action
	Details   string
}

// AuditSink receives audit entries. The core only appends; reading the trail
// is an optional capability of concrete implementations.
type AuditSink interface {
	Append(ctx context.Context, e AuditEntry) error
}
