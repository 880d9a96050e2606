package report

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	"brandcert/internal/kpi"
	dErrors "brandcert/pkg/domain-errors"
	"brandcert/pkg/requestcontext"
)

const scanPageSize = 500

// Generator builds reports. It is read-only; generating a report never
// mutates records, snapshots, or the audit trail.
type Generator struct {
	records   certification.RecordStore
	snapshots kpi.SnapshotStore
	trail     audittrail.Store
	logger    *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

func NewGenerator(records certification.RecordStore, snapshots kpi.SnapshotStore, trail audittrail.Store, opts ...GeneratorOption) *Generator {
	generator := &Generator{
		records:   records,
		snapshots: snapshots,
		trail:     trail,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(generator)
	}
	return generator
}

// Option scopes a single Generate call.
type Option func(*request)

// WithProducer scopes the report to one producer's national id. Required
// for producer reports, ignored otherwise.
func WithProducer(nationalID string) Option {
	return func(r *request) { r.producerID = nationalID }
}

type request struct {
	producerID string
}

// Generate builds a report over the inclusive calendar-date range
// [start, end]. An empty period returns Data with Empty set and every
// numeric field at zero; it is not an error.
func (g *Generator) Generate(ctx context.Context, start, end time.Time, reportType Type, opts ...Option) (*Data, error) {
	if !validTypes[reportType] {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown report type %q", reportType)
	}
	startDay, endDay := kpi.Day(start), kpi.Day(end)
	if endDay.Before(startDay) {
		return nil, dErrors.New(dErrors.CodeValidation, "report end precedes start")
	}

	var req request
	for _, opt := range opts {
		opt(&req)
	}
	if reportType == TypeProducer && req.producerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "producer report requires a national id")
	}

	records, err := g.scanPeriod(ctx, startDay, endDay, req.producerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAggregation, "scan records")
	}
	snapshots, err := g.snapshots.ListRange(ctx, startDay, endDay)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAggregation, "list snapshots")
	}

	data := &Data{
		Type:        reportType,
		Start:       startDay,
		End:         endDay,
		GeneratedAt: requestcontext.Now(ctx),
	}
	if len(records) == 0 && len(snapshots) == 0 {
		data.Empty = true
		return data, nil
	}

	data.Totals = buildTotals(records)
	data.Trend = trendOf(snapshots)

	switch reportType {
	case TypeDepartmentComparison:
		data.Departments = buildDepartmentLines(records)
	case TypeProducer:
		data.Producer = buildProducerSummary(req.producerID, records)
	case TypePeriodSummary:
		activity, err := g.activityForPeriod(ctx, startDay, endDay)
		if err != nil {
			// The totals stand on their own; a failed audit aggregation
			// degrades the report instead of failing it.
			g.logger.WarnContext(ctx, "audit activity unavailable", "err", err)
		} else {
			data.ActivityByDay = activity
		}
	}
	return data, nil
}

func (g *Generator) scanPeriod(ctx context.Context, startDay, endDay time.Time, producerID string) ([]*certification.Record, error) {
	filter := certification.ListFilter{
		RegisteredFrom: startDay,
		RegisteredTo:   endDay.Add(24 * time.Hour),
		NationalID:     producerID,
	}
	var all []*certification.Record
	for offset := 0; ; offset += scanPageSize {
		page, err := g.records.List(ctx, filter, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}

func (g *Generator) activityForPeriod(ctx context.Context, startDay, endDay time.Time) ([]audittrail.DayCount, error) {
	counts, err := g.trail.AggregateByDay(ctx, startDay)
	if err != nil {
		return nil, err
	}
	var inPeriod []audittrail.DayCount
	for _, count := range counts {
		if !count.Date.After(endDay) {
			inPeriod = append(inPeriod, count)
		}
	}
	return inPeriod, nil
}

func buildTotals(records []*certification.Record) Totals {
	var totals Totals
	for _, record := range records {
		totals.Registered++
		totals.HeadCount += record.HeadCount
		totals.Amount += record.Amount
		switch record.Status {
		case certification.StatusApproved:
			totals.Approved++
		case certification.StatusRejected:
			totals.Rejected++
		case certification.StatusInReview:
			totals.InReview++
		default:
			totals.Pending++
		}
	}
	if decided := totals.Approved + totals.Rejected; decided > 0 {
		totals.ApprovalRate = float64(totals.Approved) / float64(decided) * 100
	}
	return totals
}

// trendOf compares the first and last snapshot of the period. Fewer than
// two snapshots give no basis for a direction and leave the flag unset.
func trendOf(snapshots []kpi.Snapshot) Trend {
	if len(snapshots) < 2 {
		return ""
	}
	first, last := snapshots[0].RegisteredCount, snapshots[len(snapshots)-1].RegisteredCount
	switch {
	case last > first:
		return TrendIncreasing
	case last < first:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func buildDepartmentLines(records []*certification.Record) []DepartmentLine {
	byDept := make(map[certification.Department]*DepartmentLine)
	for _, record := range records {
		line, ok := byDept[record.Department]
		if !ok {
			line = &DepartmentLine{Department: record.Department}
			byDept[record.Department] = line
		}
		line.Registered++
		line.HeadCount += record.HeadCount
		switch record.Status {
		case certification.StatusApproved:
			line.Approved++
		case certification.StatusRejected:
			line.Rejected++
		}
	}

	lines := make([]DepartmentLine, 0, len(byDept))
	for _, line := range byDept {
		if decided := line.Approved + line.Rejected; decided > 0 {
			line.ApprovalRate = float64(line.Approved) / float64(decided) * 100
		}
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Registered != lines[j].Registered {
			return lines[i].Registered > lines[j].Registered
		}
		return lines[i].Department < lines[j].Department
	})
	return lines
}

func buildProducerSummary(nationalID string, records []*certification.Record) *ProducerSummary {
	summary := &ProducerSummary{NationalID: nationalID}
	for _, record := range records {
		if summary.OwnerName == "" {
			summary.OwnerName = record.OwnerName
		}
		summary.Brands = append(summary.Brands, record.BrandNumber)
	}
	sort.Strings(summary.Brands)
	return summary
}
