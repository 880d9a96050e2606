package kpi

import (
	"context"
	"time"
)

// SnapshotStore persists daily KPI snapshots keyed by calendar date.
type SnapshotStore interface {
	// Upsert creates the snapshot for its date, or replaces it entirely if
	// one already exists. It never appends a second row for the same date.
	Upsert(ctx context.Context, snapshot *Snapshot) error

	// GetByDate returns the snapshot for the given date, or CodeNotFound.
	GetByDate(ctx context.Context, date time.Time) (*Snapshot, error)

	// Latest returns the most recent snapshot, or CodeNotFound when the
	// store is empty.
	Latest(ctx context.Context) (*Snapshot, error)

	// ListRange returns snapshots with start <= date <= end, oldest first.
	ListRange(ctx context.Context, start, end time.Time) ([]Snapshot, error)
}
