package transition

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "brandcert/pkg/domain-errors"
	txcontext "brandcert/pkg/platform/tx"
)

// TxRunner provides the transactional boundary around a record update and
// its audit entry. Implementations may wrap a database transaction or, in
// memory, a coarse lock.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// defaultTxTimeout bounds a transition transaction when the caller did not
// set a deadline.
const defaultTxTimeout = 5 * time.Second

// MemoryTxRunner serializes transitions with a single mutex. Paired with the
// in-memory stores in tests; the granularity is coarse but transitions on
// different records do not observe each other's partial state.
type MemoryTxRunner struct {
	mu sync.Mutex
}

func NewMemoryTxRunner() *MemoryTxRunner {
	return &MemoryTxRunner{}
}

func (t *MemoryTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// PostgresTxRunner opens a SQL transaction and threads it through context so
// the postgres stores execute against it. Commit makes the record update and
// the audit append visible together; any error rolls both back.
type PostgresTxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTxRunner(db *sql.DB) *PostgresTxRunner {
	return &PostgresTxRunner{db: db}
}

func (t *PostgresTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
