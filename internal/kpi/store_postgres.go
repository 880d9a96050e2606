package kpi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dErrors "brandcert/pkg/domain-errors"
	txcontext "brandcert/pkg/platform/tx"
)

// PostgresSnapshotStore persists snapshots in the kpi_snapshots table with one
// row per calendar date, replaced in place on recompute.
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresSnapshotStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const snapshotColumns = `snapshot_date, registered_count, approved_count,
	rejected_count, pending_count, in_review_count, approval_rate,
	avg_processing_hours, head_count_total, avg_head_per_record, amount_total,
	purpose_meat, purpose_dairy, purpose_dual, purpose_breeding,
	dept_santa_cruz, dept_beni, dept_la_paz, dept_other,
	logo_count, logo_success_rate, avg_logo_seconds, computed_at`

func (s *PostgresSnapshotStore) Upsert(ctx context.Context, snapshot *Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO kpi_snapshots (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			registered_count = EXCLUDED.registered_count,
			approved_count = EXCLUDED.approved_count,
			rejected_count = EXCLUDED.rejected_count,
			pending_count = EXCLUDED.pending_count,
			in_review_count = EXCLUDED.in_review_count,
			approval_rate = EXCLUDED.approval_rate,
			avg_processing_hours = EXCLUDED.avg_processing_hours,
			head_count_total = EXCLUDED.head_count_total,
			avg_head_per_record = EXCLUDED.avg_head_per_record,
			amount_total = EXCLUDED.amount_total,
			purpose_meat = EXCLUDED.purpose_meat,
			purpose_dairy = EXCLUDED.purpose_dairy,
			purpose_dual = EXCLUDED.purpose_dual,
			purpose_breeding = EXCLUDED.purpose_breeding,
			dept_santa_cruz = EXCLUDED.dept_santa_cruz,
			dept_beni = EXCLUDED.dept_beni,
			dept_la_paz = EXCLUDED.dept_la_paz,
			dept_other = EXCLUDED.dept_other,
			logo_count = EXCLUDED.logo_count,
			logo_success_rate = EXCLUDED.logo_success_rate,
			avg_logo_seconds = EXCLUDED.avg_logo_seconds,
			computed_at = EXCLUDED.computed_at
	`, snapshotColumns)
	_, err := s.execer(ctx).ExecContext(ctx, query,
		Day(snapshot.Date), snapshot.RegisteredCount, snapshot.ApprovedCount,
		snapshot.RejectedCount, snapshot.PendingCount, snapshot.InReviewCount,
		snapshot.ApprovalRate, snapshot.AvgProcessingHours, snapshot.HeadCountTotal,
		snapshot.AvgHeadPerRecord, snapshot.AmountTotal,
		snapshot.Purposes.Meat, snapshot.Purposes.Dairy,
		snapshot.Purposes.DualPurpose, snapshot.Purposes.Breeding,
		snapshot.Departments.SantaCruz, snapshot.Departments.Beni,
		snapshot.Departments.LaPaz, snapshot.Departments.Other,
		snapshot.LogoCount, snapshot.LogoSuccessRate, snapshot.AvgLogoSeconds,
		snapshot.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresSnapshotStore) GetByDate(ctx context.Context, date time.Time) (*Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM kpi_snapshots WHERE snapshot_date = $1`, snapshotColumns)
	snapshot, err := scanSnapshot(s.execer(ctx).QueryRowContext(ctx, query, Day(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.WithField(
				dErrors.New(dErrors.CodeNotFound, "snapshot not found"),
				"date", Day(date).Format(time.DateOnly))
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *PostgresSnapshotStore) Latest(ctx context.Context) (*Snapshot, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM kpi_snapshots ORDER BY snapshot_date DESC LIMIT 1`, snapshotColumns)
	snapshot, err := scanSnapshot(s.execer(ctx).QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no snapshots computed yet")
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *PostgresSnapshotStore) ListRange(ctx context.Context, start, end time.Time) ([]Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM kpi_snapshots
		WHERE snapshot_date >= $1 AND snapshot_date <= $2
		ORDER BY snapshot_date ASC
	`, snapshotColumns)
	rows, err := s.execer(ctx).QueryContext(ctx, query, Day(start), Day(end))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snapshot Snapshot
	err := row.Scan(
		&snapshot.Date, &snapshot.RegisteredCount, &snapshot.ApprovedCount,
		&snapshot.RejectedCount, &snapshot.PendingCount, &snapshot.InReviewCount,
		&snapshot.ApprovalRate, &snapshot.AvgProcessingHours, &snapshot.HeadCountTotal,
		&snapshot.AvgHeadPerRecord, &snapshot.AmountTotal,
		&snapshot.Purposes.Meat, &snapshot.Purposes.Dairy,
		&snapshot.Purposes.DualPurpose, &snapshot.Purposes.Breeding,
		&snapshot.Departments.SantaCruz, &snapshot.Departments.Beni,
		&snapshot.Departments.LaPaz, &snapshot.Departments.Other,
		&snapshot.LogoCount, &snapshot.LogoSuccessRate, &snapshot.AvgLogoSeconds,
		&snapshot.ComputedAt,
	)
	if err != nil {
		return nil, err
	}
	snapshot.Date = Day(snapshot.Date)
	return &snapshot, nil
}
