// Package metrics provides observability for snapshot computation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks aggregator runs and their cost.
type Metrics struct {
	// Snapshot computations by outcome (success, failure).
	SnapshotRuns *prometheus.CounterVec

	// Duration of a single-date snapshot computation.
	SnapshotDuration prometheus.Histogram

	// Records scanned per snapshot computation.
	RecordsScanned prometheus.Histogram
}

// New registers all aggregator metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SnapshotRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brandcert_kpi_snapshot_runs_total",
			Help: "Snapshot computations by outcome",
		}, []string{"outcome"}),

		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "brandcert_kpi_snapshot_duration_seconds",
			Help:    "Duration of a single-date snapshot computation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RecordsScanned: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "brandcert_kpi_snapshot_records_scanned",
			Help:    "Records scanned per snapshot computation",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		}),
	}
}

// IncRun records one snapshot computation result.
func (m *Metrics) IncRun(outcome string) {
	if m != nil {
		m.SnapshotRuns.WithLabelValues(outcome).Inc()
	}
}

// ObserveDuration records the cost of a snapshot computation.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m != nil {
		m.SnapshotDuration.Observe(d.Seconds())
	}
}

// ObserveRecordsScanned records how many records a computation read.
func (m *Metrics) ObserveRecordsScanned(n int) {
	if m != nil {
		m.RecordsScanned.Observe(float64(n))
	}
}
