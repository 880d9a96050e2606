// Package metrics provides observability for the transition engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts transition outcomes and measures engine latency.
type Metrics struct {
	// Transition outcomes by source status, target status, and result.
	TransitionOutcome *prometheus.CounterVec

	// Latency of a full single-record transition including the commit.
	TransitionLatency prometheus.Histogram

	// Sizes of transition_many batches.
	BatchSize prometheus.Histogram
}

// New registers all transition engine metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		TransitionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brandcert_transitions_total",
			Help: "Total transition attempts by from-status, to-status, and outcome",
		}, []string{"from", "to", "outcome"}),

		TransitionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "brandcert_transition_duration_seconds",
			Help:    "Duration of single-record transitions including commit",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "brandcert_transition_batch_size",
			Help:    "Number of records per transition_many call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// IncOutcome records one transition attempt result.
func (m *Metrics) IncOutcome(from, to, outcome string) {
	if m != nil {
		m.TransitionOutcome.WithLabelValues(from, to, outcome).Inc()
	}
}

// ObserveLatency records the duration of a transition.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.TransitionLatency.Observe(d.Seconds())
	}
}

// ObserveBatchSize records the size of a batch call.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
