package certification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
	txcontext "brandcert/pkg/platform/tx"
)

// PostgresStore persists records in the certification_records table. All
// statements run against the transaction carried in context when one is
// present, so the transition engine can commit record + audit atomically.
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

const recordColumns = `id, brand_number, owner_name, national_id, breed, purpose,
	head_count, department, municipality, amount_centavos, status,
	registered_at, processed_at, processing_hours, version`

func (s *PostgresStore) Get(ctx context.Context, recordID id.RecordID) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM certification_records WHERE id = $1`, recordColumns)
	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, recordID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.WithField(
				dErrors.New(dErrors.CodeNotFound, "record not found"),
				"record_id", recordID.String())
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) GetByBrandNumber(ctx context.Context, brandNumber string) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM certification_records WHERE brand_number = $1`, recordColumns)
	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, brandNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.WithField(
				dErrors.New(dErrors.CodeNotFound, "record not found"),
				"brand_number", brandNumber)
		}
		return nil, fmt.Errorf("get record by brand number: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Record, error) {
	where, args := buildWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM certification_records %s ORDER BY registered_at DESC`,
		recordColumns, where)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, record *Record) error {
	if record.Version == 0 {
		return s.insert(ctx, record)
	}
	return s.update(ctx, record)
}

func (s *PostgresStore) insert(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO certification_records (
			id, brand_number, owner_name, national_id, breed, purpose,
			head_count, department, municipality, amount_centavos, status,
			registered_at, processed_at, processing_hours, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.ID.String(), record.BrandNumber, record.OwnerName, record.NationalID,
		string(record.Breed), string(record.Purpose), record.HeadCount,
		string(record.Department), record.Municipality, record.Amount,
		string(record.Status), record.RegisteredAt, record.ProcessedAt,
		record.ProcessingHours,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return dErrors.WithField(
				dErrors.New(dErrors.CodeConflict, "brand number already registered"),
				"brand_number", record.BrandNumber)
		}
		return fmt.Errorf("insert record: %w", err)
	}
	record.Version = 1
	return nil
}

// update compares-and-swaps on version. Zero rows affected means either the
// row is gone or someone else won the race; we re-check to tell the two apart.
func (s *PostgresStore) update(ctx context.Context, record *Record) error {
	query := `
		UPDATE certification_records
		SET status = $1, processed_at = $2, processing_hours = $3,
			owner_name = $4, municipality = $5, head_count = $6,
			amount_centavos = $7, version = version + 1
		WHERE id = $8 AND version = $9
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		string(record.Status), record.ProcessedAt, record.ProcessingHours,
		record.OwnerName, record.Municipality, record.HeadCount,
		record.Amount, record.ID.String(), record.Version,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: rows affected: %w", err)
	}
	if affected == 0 {
		var storedVersion int
		err := s.execer(ctx).QueryRowContext(ctx,
			`SELECT version FROM certification_records WHERE id = $1`,
			record.ID.String()).Scan(&storedVersion)
		if errors.Is(err, sql.ErrNoRows) {
			return dErrors.WithField(
				dErrors.New(dErrors.CodeNotFound, "record not found"),
				"record_id", record.ID.String())
		}
		if err != nil {
			return fmt.Errorf("update record: version check: %w", err)
		}
		conflict := dErrors.New(dErrors.CodeConflict, "stale record version")
		conflict = dErrors.WithField(conflict, "record_id", record.ID.String())
		conflict = dErrors.WithField(conflict, "stored_version", storedVersion)
		return dErrors.WithField(conflict, "read_version", record.Version)
	}
	record.Version++
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM certification_records `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Department != "" {
		add("department = $%d", string(filter.Department))
	}
	if filter.Purpose != "" {
		add("purpose = $%d", string(filter.Purpose))
	}
	if filter.NationalID != "" {
		add("national_id = $%d", filter.NationalID)
	}
	if !filter.RegisteredFrom.IsZero() {
		add("registered_at >= $%d", filter.RegisteredFrom)
	}
	if !filter.RegisteredTo.IsZero() {
		add("registered_at < $%d", filter.RegisteredTo)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record          Record
		rawID           string
		breed           string
		purpose         string
		department      string
		status          string
		processedAt     sql.NullTime
		processingHours sql.NullInt64
	)
	err := row.Scan(
		&rawID, &record.BrandNumber, &record.OwnerName, &record.NationalID,
		&breed, &purpose, &record.HeadCount, &department, &record.Municipality,
		&record.Amount, &status, &record.RegisteredAt, &processedAt,
		&processingHours, &record.Version,
	)
	if err != nil {
		return nil, err
	}
	recordID, err := id.ParseRecordID(rawID)
	if err != nil {
		return nil, fmt.Errorf("malformed record id %q: %w", rawID, err)
	}
	record.ID = recordID
	record.Breed = Breed(breed)
	record.Purpose = Purpose(purpose)
	record.Department = Department(department)
	record.Status = Status(status)
	if processedAt.Valid {
		t := processedAt.Time
		record.ProcessedAt = &t
	}
	if processingHours.Valid {
		h := int(processingHours.Int64)
		record.ProcessingHours = &h
	}
	return &record, nil
}
