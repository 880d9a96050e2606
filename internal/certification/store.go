package certification

import (
	"context"
	"time"

	id "brandcert/pkg/domain"
)

// ListFilter narrows List and Count queries. Zero values mean "no filter".
type ListFilter struct {
	Status     Status
	Department Department
	Purpose    Purpose
	NationalID string

	// RegisteredFrom/To bound registered_at: from inclusive, to exclusive.
	RegisteredFrom time.Time
	RegisteredTo   time.Time
}

// Matches reports whether a record passes the filter. Shared by the memory
// store and by tests asserting against the postgres implementation.
func (f ListFilter) Matches(r *Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Department != "" && r.Department != f.Department {
		return false
	}
	if f.Purpose != "" && r.Purpose != f.Purpose {
		return false
	}
	if f.NationalID != "" && r.NationalID != f.NationalID {
		return false
	}
	if !f.RegisteredFrom.IsZero() && r.RegisteredAt.Before(f.RegisteredFrom) {
		return false
	}
	if !f.RegisteredTo.IsZero() && !r.RegisteredAt.Before(f.RegisteredTo) {
		return false
	}
	return true
}

// RecordStore is the persistence boundary for certification records.
// Interface-driven so the engine and aggregator stay testable against the
// in-memory implementation and swappable onto PostgreSQL.
type RecordStore interface {
	// Get returns CodeNotFound for unknown ids.
	Get(ctx context.Context, recordID id.RecordID) (*Record, error)

	// GetByBrandNumber returns CodeNotFound for unknown brand numbers.
	GetByBrandNumber(ctx context.Context, brandNumber string) (*Record, error)

	// List returns records matching the filter ordered by registered_at
	// descending. limit <= 0 means no limit.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Record, error)

	// Save creates the record when Version == 0, otherwise updates it.
	// Updates compare the record's Version against the stored row and fail
	// with CodeConflict on mismatch; on success the stored Version is
	// incremented and reflected on the passed record.
	Save(ctx context.Context, record *Record) error

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}
