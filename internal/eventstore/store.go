// Package eventstore is the optional run journal: an append-only SQLite log
// of pipeline run and stage events, plus a projection that folds the log
// into per-run summaries for `docweave history`.
package eventstore

import (
	"context"
	"time"
)

// Store persists and queries journal events.
type Store interface {
	// Append stores e and sets its ID. A zero Time is stamped with now.
	Append(ctx context.Context, e *Event) error
	// GetByRunID returns one run's events in append order.
	GetByRunID(ctx context.Context, runID string) ([]*Event, error)
	// GetRange returns the events stamped within [start, end] in append order.
	GetRange(ctx context.Context, start, end time.Time) ([]*Event, error)
	Close() error
}
