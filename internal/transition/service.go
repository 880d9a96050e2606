// Package transition implements the certification state-transition engine:
// the only write path for status changes. Every change validates against the
// transition table, persists the record and its audit entry as one atomic
// unit, and uses optimistic versioning to refuse lost updates.
package transition

import (
	"context"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	"brandcert/internal/transition/metrics"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
	"brandcert/pkg/requestcontext"
)

// Engine validates and applies status changes.
type Engine struct {
	records   certification.RecordStore
	trail     audittrail.Store
	txRunner  TxRunner
	publisher audittrail.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPublisher attaches a downstream audit publisher. Publish failures are
// logged, never surfaced: the stored entry is the source of truth.
func WithPublisher(publisher audittrail.Publisher) Option {
	return func(e *Engine) { e.publisher = publisher }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine wires the engine with its stores and transactional boundary.
func NewEngine(records certification.RecordStore, trail audittrail.Store, txRunner TxRunner, opts ...Option) *Engine {
	engine := &Engine{
		records:   records,
		trail:     trail,
		txRunner:  txRunner,
		publisher: audittrail.NopPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Transition applies one status change to one record.
//
// Errors: CodeValidation for bad input; CodeNotFound for unknown records;
// CodeInvalidTransition when the change is not an edge in the table (the
// record is untouched and no entry is written); CodeConflict when the
// record's version moved between read and write (caller re-reads and
// retries; the engine never retries internally).
func (e *Engine) Transition(ctx context.Context, recordID id.RecordID, newStatus certification.Status, actor, notes string) (*audittrail.Entry, error) {
	start := time.Now()
	if recordID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "record id is required")
	}
	if actor == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "actor is required")
	}
	if _, err := certification.ParseStatus(string(newStatus)); err != nil {
		return nil, err
	}

	var entry *audittrail.Entry
	err := e.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		record, err := e.records.Get(ctx, recordID)
		if err != nil {
			return err
		}

		if !record.Status.CanTransitionTo(newStatus) {
			invalid := dErrors.Newf(dErrors.CodeInvalidTransition,
				"cannot transition from %s to %s", record.Status, newStatus)
			invalid = dErrors.WithField(invalid, "record_id", recordID.String())
			invalid = dErrors.WithField(invalid, "from", string(record.Status))
			return dErrors.WithField(invalid, "to", string(newStatus))
		}

		now := requestcontext.Now(ctx)
		previous := record.Status
		record.Status = newStatus
		if newStatus.IsTerminal() {
			processedAt := now
			record.ProcessedAt = &processedAt
			hours := processingHours(record.RegisteredAt, processedAt)
			record.ProcessingHours = &hours
		}

		if err := e.records.Save(ctx, record); err != nil {
			return err
		}

		entry = &audittrail.Entry{
			ID:             id.NewEntryID(),
			RecordID:       recordID,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			ChangedAt:      now,
			Actor:          actor,
			Notes:          notes,
			TraceID:        traceID(ctx),
		}
		return e.trail.Append(ctx, *entry)
	})
	e.metrics.ObserveLatency(time.Since(start))
	if err != nil {
		e.metrics.IncOutcome("", string(newStatus), string(dErrors.CodeOf(err)))
		return nil, err
	}

	e.metrics.IncOutcome(string(entry.PreviousStatus), string(newStatus), "applied")
	if err := e.publisher.Publish(ctx, *entry); err != nil {
		e.logger.WarnContext(ctx, "audit publish failed",
			"record_id", recordID.String(), "err", err)
	}
	return entry, nil
}

// BatchFailure reports why one record of a batch was skipped.
type BatchFailure struct {
	RecordID id.RecordID
	Code     dErrors.Code
	Reason   string
}

// BatchResult summarizes a TransitionMany call.
type BatchResult struct {
	Applied []id.RecordID
	Failed  []BatchFailure
}

// TransitionMany applies the same status change to each record
// independently: a failure on one record never blocks the others. This is
// the single code path behind bulk admin approve/reject actions. Between
// records it honors cancellation; records already committed stay committed
// and the partial result is returned alongside the context error.
func (e *Engine) TransitionMany(ctx context.Context, recordIDs []id.RecordID, newStatus certification.Status, actor, notes string) (BatchResult, error) {
	e.metrics.ObserveBatchSize(len(recordIDs))

	var result BatchResult
	for _, recordID := range recordIDs {
		if err := ctx.Err(); err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeTimeout, "batch cancelled")
		}
		if _, err := e.Transition(ctx, recordID, newStatus, actor, notes); err != nil {
			result.Failed = append(result.Failed, BatchFailure{
				RecordID: recordID,
				Code:     dErrors.CodeOf(err),
				Reason:   err.Error(),
			})
			continue
		}
		result.Applied = append(result.Applied, recordID)
	}
	return result, nil
}

// processingHours is the ceiling of the elapsed hours between registration
// and processing. A clock running behind the registration timestamp counts
// as zero rather than negative.
func processingHours(registeredAt, processedAt time.Time) int {
	elapsed := processedAt.Sub(registeredAt)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours()))
}

func traceID(ctx context.Context) string {
	if span := trace.SpanContextFromContext(ctx); span.HasTraceID() {
		return span.TraceID().String()
	}
	return ""
}
