// Package kpi computes and stores daily key-performance snapshots over
// certification records and logo-generation statistics.
package kpi

import (
	"context"
	"time"

	dErrors "brandcert/pkg/domain-errors"
)

// PurposeDistribution counts the day's registrations per herd purpose.
type PurposeDistribution struct {
	Meat        int `json:"meat"`
	Dairy       int `json:"dairy"`
	DualPurpose int `json:"dual_purpose"`
	Breeding    int `json:"breeding"`
}

// Sum returns the total across all purpose buckets.
func (d PurposeDistribution) Sum() int {
	return d.Meat + d.Dairy + d.DualPurpose + d.Breeding
}

// DepartmentDistribution counts the day's registrations for the three
// departments that historically concentrate most of the cattle activity,
// with everything else folded into Other.
type DepartmentDistribution struct {
	SantaCruz int `json:"santa_cruz"`
	Beni      int `json:"beni"`
	LaPaz     int `json:"la_paz"`
	Other     int `json:"other"`
}

func (d DepartmentDistribution) Sum() int {
	return d.SantaCruz + d.Beni + d.LaPaz + d.Other
}

// LogoWindowStats summarizes logo-generation activity in a time window.
type LogoWindowStats struct {
	Total      int     `json:"total"`
	Successful int     `json:"successful"`
	AvgSeconds float64 `json:"avg_seconds"`
}

// SuccessRate returns the percentage of successful generations, 0 when
// there were none.
func (s LogoWindowStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total) * 100
}

// LogoStats provides logo-generation statistics from the image subsystem.
// The window is half-open: [start, end).
type LogoStats interface {
	StatsForWindow(ctx context.Context, start, end time.Time) (LogoWindowStats, error)
}

// Snapshot is the daily KPI rollup for one calendar date (UTC).
// Recomputing a date overwrites the previous row, it never appends.
type Snapshot struct {
	Date time.Time `json:"date"`

	RegisteredCount int     `json:"registered_count"`
	ApprovedCount   int     `json:"approved_count"`
	RejectedCount   int     `json:"rejected_count"`
	PendingCount    int     `json:"pending_count"`
	InReviewCount   int     `json:"in_review_count"`
	ApprovalRate    float64 `json:"approval_rate"`

	AvgProcessingHours float64 `json:"avg_processing_hours"`

	HeadCountTotal   int     `json:"head_count_total"`
	AvgHeadPerRecord float64 `json:"avg_head_per_record"`
	AmountTotal      int64   `json:"amount_total"`

	Purposes    PurposeDistribution    `json:"purposes"`
	Departments DepartmentDistribution `json:"departments"`

	LogoCount       int     `json:"logo_count"`
	LogoSuccessRate float64 `json:"logo_success_rate"`
	AvgLogoSeconds  float64 `json:"avg_logo_seconds"`

	ComputedAt time.Time `json:"computed_at"`
}

// Day normalizes a timestamp to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate checks the snapshot's internal consistency: both distributions
// must account for every registered record.
func (s *Snapshot) Validate() error {
	if s.Date.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "snapshot date is required")
	}
	if !s.Date.Equal(Day(s.Date)) {
		return dErrors.New(dErrors.CodeValidation, "snapshot date must be a UTC midnight")
	}
	if s.RegisteredCount < 0 {
		return dErrors.New(dErrors.CodeValidation, "registered count cannot be negative")
	}
	if got := s.Purposes.Sum(); got != s.RegisteredCount {
		err := dErrors.New(dErrors.CodeIntegrity, "purpose buckets do not sum to registered count")
		err = dErrors.WithField(err, "expected", s.RegisteredCount)
		return dErrors.WithField(err, "got", got)
	}
	if got := s.Departments.Sum(); got != s.RegisteredCount {
		err := dErrors.New(dErrors.CodeIntegrity, "department buckets do not sum to registered count")
		err = dErrors.WithField(err, "expected", s.RegisteredCount)
		return dErrors.WithField(err, "got", got)
	}
	if s.ApprovalRate < 0 || s.ApprovalRate > 100 {
		return dErrors.New(dErrors.CodeValidation, "approval rate must be between 0 and 100")
	}
	return nil
}
