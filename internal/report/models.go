// Package report builds period-scoped aggregate reports for the
// certification office from records, snapshots, and the audit trail.
package report

import (
	"time"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	dErrors "brandcert/pkg/domain-errors"
)

// Type selects the report shape.
type Type string

const (
	// TypePeriodSummary totals the period and includes audit activity.
	TypePeriodSummary Type = "period_summary"

	// TypeDepartmentComparison breaks the period down per department.
	TypeDepartmentComparison Type = "department_comparison"

	// TypeProducer scopes the period to one producer's national id.
	TypeProducer Type = "producer"
)

var validTypes = map[Type]bool{
	TypePeriodSummary: true, TypeDepartmentComparison: true, TypeProducer: true,
}

// ParseType constructs a Type from external input.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !validTypes[t] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown report type %q", s)
	}
	return t, nil
}

// Trend compares registration volume across the period's snapshots.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Totals are the period-wide aggregate figures.
type Totals struct {
	Registered   int     `json:"registered"`
	Approved     int     `json:"approved"`
	Rejected     int     `json:"rejected"`
	Pending      int     `json:"pending"`
	InReview     int     `json:"in_review"`
	HeadCount    int     `json:"head_count"`
	Amount       int64   `json:"amount"`
	ApprovalRate float64 `json:"approval_rate"`
}

// DepartmentLine is one row of a department comparison.
type DepartmentLine struct {
	Department   certification.Department `json:"department"`
	Registered   int                      `json:"registered"`
	Approved     int                      `json:"approved"`
	Rejected     int                      `json:"rejected"`
	HeadCount    int                      `json:"head_count"`
	ApprovalRate float64                  `json:"approval_rate"`
}

// ProducerSummary scopes a report to one producer.
type ProducerSummary struct {
	NationalID string   `json:"national_id"`
	OwnerName  string   `json:"owner_name"`
	Brands     []string `json:"brands"`
}

// Data is the generated report. Empty is true when the period holds no
// records and no snapshots; all numeric fields are zero in that case.
type Data struct {
	Type        Type      `json:"type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Empty       bool      `json:"empty"`
	Totals      Totals    `json:"totals"`
	Trend       Trend     `json:"trend,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	// Departments is filled for department comparison reports.
	Departments []DepartmentLine `json:"departments,omitempty"`

	// Producer is filled for producer reports.
	Producer *ProducerSummary `json:"producer,omitempty"`

	// ActivityByDay is filled for period summaries from the audit trail.
	ActivityByDay []audittrail.DayCount `json:"activity_by_day,omitempty"`
}
