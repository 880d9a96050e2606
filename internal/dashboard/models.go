// Package dashboard composes the operational view served to the
// certification office: the latest KPI snapshot, current-moment workload
// counts, and threshold-based alerts.
package dashboard

import (
	"time"

	"brandcert/internal/kpi"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is generated fresh on every Compose call and never persisted.
type Alert struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// LiveCounts are read from the record store at compose time rather than the
// snapshot, since the office needs current-moment workload numbers.
type LiveCounts struct {
	Pending  int `json:"pending"`
	InReview int `json:"in_review"`
}

// View is the full dashboard payload. Available is false when no snapshot
// has ever been computed; the live counts are still filled in.
type View struct {
	Available  bool          `json:"available"`
	Snapshot   *kpi.Snapshot `json:"snapshot,omitempty"`
	LiveCounts LiveCounts    `json:"live_counts"`

	// RejectionRate complements the snapshot approval rate. Zero when the
	// snapshot decided nothing.
	RejectionRate float64 `json:"rejection_rate"`

	Alerts      []Alert   `json:"alerts"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Thresholds drive alert generation.
type Thresholds struct {
	// PendingWarning fires a warning when the live pending count exceeds it.
	PendingWarning int

	// ApprovalRateError fires an error when the snapshot approval rate
	// falls below it. Skipped when the snapshot decided nothing.
	ApprovalRateError float64

	// LogoSuccessWarning fires a warning when the logo success rate falls
	// below it. Skipped when no logos were generated.
	LogoSuccessWarning float64
}

// DefaultThresholds returns the values the certification office has run
// with historically.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PendingWarning:     50,
		ApprovalRateError:  60,
		LogoSuccessWarning: 70,
	}
}
