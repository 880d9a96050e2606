package kpi

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks LogoStats

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"brandcert/internal/certification"
	"brandcert/internal/kpi/metrics"
	dErrors "brandcert/pkg/domain-errors"
	"brandcert/pkg/requestcontext"
)

const (
	// scanPageSize bounds memory while scanning a day's records.
	scanPageSize = 500

	// defaultRangeWorkers bounds parallel per-date recomputation.
	defaultRangeWorkers = 4
)

// Aggregator computes daily snapshots from the record store and the logo
// subsystem. It holds no state of its own; recomputing a date is idempotent.
type Aggregator struct {
	records   certification.RecordStore
	logos     LogoStats
	snapshots SnapshotStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	workers   int
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logger }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

// WithRangeWorkers overrides the per-date parallelism of ComputeRange.
func WithRangeWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// NewAggregator wires the aggregator with its read sources and snapshot sink.
func NewAggregator(records certification.RecordStore, logos LogoStats, snapshots SnapshotStore, opts ...AggregatorOption) *Aggregator {
	aggregator := &Aggregator{
		records:   records,
		logos:     logos,
		snapshots: snapshots,
		logger:    slog.Default(),
		workers:   defaultRangeWorkers,
	}
	for _, opt := range opts {
		opt(aggregator)
	}
	return aggregator
}

// ComputeSnapshot builds and upserts the snapshot for one UTC calendar date.
// It scans every record registered within the date's 24h window, folds in
// logo-generation stats for the same window, and overwrites any snapshot
// previously stored for that date.
func (a *Aggregator) ComputeSnapshot(ctx context.Context, date time.Time) (*Snapshot, error) {
	start := time.Now()
	day := Day(date)
	windowStart, windowEnd := day, day.Add(24*time.Hour)

	records, err := a.scanWindow(ctx, windowStart, windowEnd)
	if err != nil {
		a.metrics.IncRun("failure")
		return nil, dErrors.Wrap(err, dErrors.CodeAggregation, "scan records")
	}
	a.metrics.ObserveRecordsScanned(len(records))

	snapshot := buildSnapshot(day, records)
	snapshot.ComputedAt = requestcontext.Now(ctx)

	logoStats, err := a.logos.StatsForWindow(ctx, windowStart, windowEnd)
	if err != nil {
		// Logo stats come from a separate subsystem; a day without them is
		// still a valid snapshot.
		a.logger.WarnContext(ctx, "logo stats unavailable",
			"date", day.Format(time.DateOnly), "err", err)
	} else {
		snapshot.LogoCount = logoStats.Total
		snapshot.LogoSuccessRate = logoStats.SuccessRate()
		snapshot.AvgLogoSeconds = logoStats.AvgSeconds
	}

	if err := a.snapshots.Upsert(ctx, snapshot); err != nil {
		a.metrics.IncRun("failure")
		return nil, err
	}

	a.metrics.IncRun("success")
	a.metrics.ObserveDuration(time.Since(start))
	a.logger.InfoContext(ctx, "snapshot computed",
		"date", day.Format(time.DateOnly),
		"registered", snapshot.RegisteredCount,
		"approval_rate", snapshot.ApprovalRate)
	return snapshot, nil
}

func (a *Aggregator) scanWindow(ctx context.Context, start, end time.Time) ([]*certification.Record, error) {
	filter := certification.ListFilter{RegisteredFrom: start, RegisteredTo: end}
	var all []*certification.Record
	for offset := 0; ; offset += scanPageSize {
		page, err := a.records.List(ctx, filter, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}

// DayFailure reports why one date of a range could not be computed.
type DayFailure struct {
	Date   time.Time
	Reason string
}

// RangeResult summarizes a ComputeRange call.
type RangeResult struct {
	Computed []time.Time
	Failed   []DayFailure
}

// ComputeRange recomputes snapshots for every date in [start, end],
// bounded-parallel across dates. Per-date failures are collected, logged,
// and do not stop the remaining dates; only cancellation aborts the run.
func (a *Aggregator) ComputeRange(ctx context.Context, start, end time.Time) (RangeResult, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return RangeResult{}, dErrors.New(dErrors.CodeValidation, "range end precedes start")
	}

	var (
		mu     sync.Mutex
		result RangeResult
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.workers)

	for day := start; !day.After(end); day = day.Add(24 * time.Hour) {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			_, err := a.ComputeSnapshot(groupCtx, day)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.WarnContext(groupCtx, "snapshot failed",
					"date", day.Format(time.DateOnly), "err", err)
				result.Failed = append(result.Failed, DayFailure{Date: day, Reason: err.Error()})
				return nil
			}
			result.Computed = append(result.Computed, day)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, dErrors.Wrap(err, dErrors.CodeTimeout, "range computation cancelled")
	}

	sort.Slice(result.Computed, func(i, j int) bool {
		return result.Computed[i].Before(result.Computed[j])
	})
	return result, nil
}

// buildSnapshot folds one day's records into KPI figures. Distribution
// buckets are reconciled so they always sum to the registered count: any
// shortfall from records carrying out-of-enum values lands in the largest
// bucket (or Other for departments) instead of being dropped.
func buildSnapshot(day time.Time, records []*certification.Record) *Snapshot {
	snapshot := &Snapshot{Date: day, RegisteredCount: len(records)}

	var processedCount int
	var processingHoursTotal int
	for _, record := range records {
		switch record.Status {
		case certification.StatusApproved:
			snapshot.ApprovedCount++
		case certification.StatusRejected:
			snapshot.RejectedCount++
		case certification.StatusInReview:
			snapshot.InReviewCount++
		default:
			snapshot.PendingCount++
		}

		snapshot.HeadCountTotal += record.HeadCount
		snapshot.AmountTotal += record.Amount
		if record.ProcessingHours != nil {
			processedCount++
			processingHoursTotal += *record.ProcessingHours
		}

		switch record.Purpose {
		case certification.PurposeMeat:
			snapshot.Purposes.Meat++
		case certification.PurposeDairy:
			snapshot.Purposes.Dairy++
		case certification.PurposeDual:
			snapshot.Purposes.DualPurpose++
		case certification.PurposeBreeding:
			snapshot.Purposes.Breeding++
		}

		switch record.Department {
		case certification.DeptSantaCruz:
			snapshot.Departments.SantaCruz++
		case certification.DeptBeni:
			snapshot.Departments.Beni++
		case certification.DeptLaPaz:
			snapshot.Departments.LaPaz++
		default:
			snapshot.Departments.Other++
		}
	}

	if denominator := snapshot.ApprovedCount + snapshot.RejectedCount; denominator > 0 {
		snapshot.ApprovalRate = float64(snapshot.ApprovedCount) / float64(denominator) * 100
	}
	if processedCount > 0 {
		snapshot.AvgProcessingHours = float64(processingHoursTotal) / float64(processedCount)
	}
	if snapshot.RegisteredCount > 0 {
		snapshot.AvgHeadPerRecord = float64(snapshot.HeadCountTotal) / float64(snapshot.RegisteredCount)
	}

	reconcilePurposes(&snapshot.Purposes, snapshot.RegisteredCount)
	return snapshot
}

// reconcilePurposes absorbs any remainder between the bucket sum and the
// registered total into the largest bucket, so consumers rendering the
// distribution as percentages never lose records to rounding or to values
// outside the known enum.
func reconcilePurposes(d *PurposeDistribution, total int) {
	remainder := total - d.Sum()
	if remainder <= 0 {
		return
	}
	largest := &d.Meat
	for _, bucket := range []*int{&d.Dairy, &d.DualPurpose, &d.Breeding} {
		if *bucket > *largest {
			largest = bucket
		}
	}
	*largest += remainder
}
