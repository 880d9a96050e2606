package audittrail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"brandcert/internal/certification"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
	txcontext "brandcert/pkg/platform/tx"
)

// PostgresStore persists audit entries in the audit_entries table. The table
// carries a foreign key onto certification_records; a violated key means the
// atomic-write guarantee was broken upstream and surfaces as CodeIntegrity.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO audit_entries (
			id, record_id, previous_status, new_status, changed_at, actor, notes, trace_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID.String(), entry.RecordID.String(),
		string(entry.PreviousStatus), string(entry.NewStatus),
		entry.ChangedAt, entry.Actor, entry.Notes, entry.TraceID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return dErrors.WithField(
				dErrors.New(dErrors.CodeIntegrity, "audit entry references nonexistent record"),
				"record_id", entry.RecordID.String())
		}
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

const entryColumns = `id, record_id, previous_status, new_status, changed_at, actor, notes, trace_id`

func (s *PostgresStore) ListForRecord(ctx context.Context, recordID id.RecordID) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_entries WHERE record_id = $1 ORDER BY changed_at DESC`,
		entryColumns)
	return s.queryEntries(ctx, query, recordID.String())
}

func (s *PostgresStore) ListRecent(ctx context.Context, since time.Time) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_entries WHERE changed_at >= $1 ORDER BY changed_at DESC`,
		entryColumns)
	return s.queryEntries(ctx, query, since)
}

func (s *PostgresStore) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			rawID      string
			rawRecord  string
			prevStatus string
			newStatus  string
		)
		err := rows.Scan(&rawID, &rawRecord, &prevStatus, &newStatus,
			&entry.ChangedAt, &entry.Actor, &entry.Notes, &entry.TraceID)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entryID, err := id.ParseEntryID(rawID)
		if err != nil {
			return nil, fmt.Errorf("malformed entry id %q: %w", rawID, err)
		}
		recordID, err := id.ParseRecordID(rawRecord)
		if err != nil {
			return nil, fmt.Errorf("malformed record id %q: %w", rawRecord, err)
		}
		entry.ID = entryID
		entry.RecordID = recordID
		entry.PreviousStatus = certification.Status(prevStatus)
		entry.NewStatus = certification.Status(newStatus)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) AggregateByActor(ctx context.Context) (map[string]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT actor, COUNT(*) FROM audit_entries GROUP BY actor`)
	if err != nil {
		return nil, fmt.Errorf("aggregate by actor: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var actor string
		var count int
		if err := rows.Scan(&actor, &count); err != nil {
			return nil, fmt.Errorf("scan actor aggregate: %w", err)
		}
		counts[actor] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) AggregateByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	query := `
		SELECT date_trunc('day', changed_at AT TIME ZONE 'UTC') AS day, COUNT(*)
		FROM audit_entries
		WHERE changed_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("aggregate by day: %w", err)
	}
	defer rows.Close()

	var buckets []DayCount
	for rows.Next() {
		var bucket DayCount
		if err := rows.Scan(&bucket.Date, &bucket.Count); err != nil {
			return nil, fmt.Errorf("scan day aggregate: %w", err)
		}
		bucket.Date = bucket.Date.UTC()
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}
