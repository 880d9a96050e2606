// Package audittrail is the append-only log of status changes. Entries are
// written exactly once per successful transition and never updated or
// deleted; reports and the audit endpoints read them back.
package audittrail

import (
	"time"

	"brandcert/internal/certification"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

// ActorSystem identifies transitions applied by batch jobs rather than a
// named reviewer.
const ActorSystem = "system"

// Entry records one status change of one certification record.
//
// Invariant: NewStatus != PreviousStatus. PreviousStatus is always set since
// every record starts in PENDING and the first transition leaves it.
type Entry struct {
	ID             id.EntryID
	RecordID       id.RecordID
	PreviousStatus certification.Status
	NewStatus      certification.Status
	ChangedAt      time.Time
	Actor          string
	Notes          string

	// TraceID carries the OpenTelemetry trace of the request that caused
	// the change, when one was active. Empty otherwise.
	TraceID string
}

// Validate enforces entry invariants before append.
func (e *Entry) Validate() error {
	if e.RecordID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "record id is required")
	}
	if e.Actor == "" {
		return dErrors.New(dErrors.CodeValidation, "actor is required")
	}
	if e.NewStatus == e.PreviousStatus {
		return dErrors.New(dErrors.CodeValidation, "new status must differ from previous status")
	}
	if _, err := certification.ParseStatus(string(e.NewStatus)); err != nil {
		return err
	}
	if _, err := certification.ParseStatus(string(e.PreviousStatus)); err != nil {
		return err
	}
	return nil
}

// DayCount is one bucket of the per-day aggregate.
type DayCount struct {
	Date  time.Time
	Count int
}
