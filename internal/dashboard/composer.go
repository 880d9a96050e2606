package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"brandcert/internal/certification"
	"brandcert/internal/kpi"
	dErrors "brandcert/pkg/domain-errors"
	"brandcert/pkg/requestcontext"
)

// Composer assembles the dashboard view from snapshots and live record
// counts. It is read-only and safe to call concurrently.
type Composer struct {
	records    certification.RecordStore
	snapshots  kpi.SnapshotStore
	cache      Cache
	thresholds Thresholds
	logger     *slog.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithCache attaches a view cache.
func WithCache(cache Cache) ComposerOption {
	return func(c *Composer) { c.cache = cache }
}

// WithThresholds overrides the alert thresholds.
func WithThresholds(thresholds Thresholds) ComposerOption {
	return func(c *Composer) { c.thresholds = thresholds }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) { c.logger = logger }
}

func NewComposer(records certification.RecordStore, snapshots kpi.SnapshotStore, opts ...ComposerOption) *Composer {
	composer := &Composer{
		records:    records,
		snapshots:  snapshots,
		cache:      NopCache{},
		thresholds: DefaultThresholds(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(composer)
	}
	return composer
}

// Compose builds the current dashboard view. A missing snapshot for today
// falls back to the most recent one; an entirely empty snapshot store still
// yields a view with live counts and Available=false. Cache failures are
// logged, never surfaced.
func (c *Composer) Compose(ctx context.Context) (*View, error) {
	if cached, hit, err := c.cache.Get(ctx); err != nil {
		c.logger.WarnContext(ctx, "dashboard cache read failed", "err", err)
	} else if hit {
		return cached, nil
	}

	view := &View{GeneratedAt: requestcontext.Now(ctx)}

	snapshot, err := c.latestSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		view.Available = true
		view.Snapshot = snapshot
		if snapshot.ApprovedCount+snapshot.RejectedCount > 0 {
			view.RejectionRate = 100 - snapshot.ApprovalRate
		}
	}

	pending, err := c.records.Count(ctx, certification.ListFilter{Status: certification.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}
	inReview, err := c.records.Count(ctx, certification.ListFilter{Status: certification.StatusInReview})
	if err != nil {
		return nil, fmt.Errorf("count in review: %w", err)
	}
	view.LiveCounts = LiveCounts{Pending: pending, InReview: inReview}
	view.Alerts = c.alerts(view)

	if err := c.cache.Set(ctx, view); err != nil {
		c.logger.WarnContext(ctx, "dashboard cache write failed", "err", err)
	}
	return view, nil
}

// latestSnapshot prefers today's snapshot, falls back to the most recent
// one, and reports no snapshot at all as nil rather than an error.
func (c *Composer) latestSnapshot(ctx context.Context) (*kpi.Snapshot, error) {
	today := kpi.Day(requestcontext.Now(ctx))
	snapshot, err := c.snapshots.GetByDate(ctx, today)
	if err == nil {
		return snapshot, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}
	snapshot, err = c.snapshots.Latest(ctx)
	if err == nil {
		return snapshot, nil
	}
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, nil
	}
	return nil, err
}

func (c *Composer) alerts(view *View) []Alert {
	alerts := []Alert{}
	if view.LiveCounts.Pending > c.thresholds.PendingWarning {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Title:    "Pending backlog",
			Message: fmt.Sprintf("%d records pending review (threshold %d)",
				view.LiveCounts.Pending, c.thresholds.PendingWarning),
		})
	}
	if view.Snapshot == nil {
		return alerts
	}

	if decided := view.Snapshot.ApprovedCount + view.Snapshot.RejectedCount; decided > 0 &&
		view.Snapshot.ApprovalRate < c.thresholds.ApprovalRateError {
		alerts = append(alerts, Alert{
			Severity: SeverityError,
			Title:    "Low approval rate",
			Message: fmt.Sprintf("approval rate %.1f%% below threshold %.0f%%",
				view.Snapshot.ApprovalRate, c.thresholds.ApprovalRateError),
		})
	}
	if view.Snapshot.LogoCount > 0 &&
		view.Snapshot.LogoSuccessRate < c.thresholds.LogoSuccessWarning {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Title:    "Logo generation degraded",
			Message: fmt.Sprintf("logo success rate %.1f%% below threshold %.0f%%",
				view.Snapshot.LogoSuccessRate, c.thresholds.LogoSuccessWarning),
		})
	}
	return alerts
}
