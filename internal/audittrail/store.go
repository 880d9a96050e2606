package audittrail

import (
	"context"
	"time"

	id "brandcert/pkg/domain"
)

// Store is the append-only persistence boundary for audit entries.
// No update or delete operation exists on purpose.
type Store interface {
	// Append persists one entry. Appending against a nonexistent record is
	// a data-integrity bug upstream and fails with CodeIntegrity.
	Append(ctx context.Context, entry Entry) error

	// ListForRecord returns a record's entries ordered by changed_at
	// descending.
	ListForRecord(ctx context.Context, recordID id.RecordID) ([]Entry, error)

	// ListRecent returns entries with changed_at >= since, newest first.
	ListRecent(ctx context.Context, since time.Time) ([]Entry, error)

	// AggregateByActor counts entries per actor across the whole trail.
	AggregateByActor(ctx context.Context) (map[string]int, error)

	// AggregateByDay buckets entries by UTC calendar day of changed_at,
	// oldest first, days with no entries omitted.
	AggregateByDay(ctx context.Context, since time.Time) ([]DayCount, error)
}
