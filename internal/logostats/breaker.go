package logostats

import (
	"context"
	"io"
	"log/slog"
	"time"

	"brandcert/internal/kpi"
	"brandcert/pkg/platform/circuit"
)

// BreakerProvider wraps another provider with a circuit breaker. While the
// breaker is open, failures degrade to empty statistics instead of
// surfacing an error on every snapshot run; open and close transitions are
// logged once.
type BreakerProvider struct {
	inner   kpi.LogoStats
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// BreakerOption configures a BreakerProvider.
type BreakerOption func(*BreakerProvider)

func WithLogger(logger *slog.Logger) BreakerOption {
	return func(p *BreakerProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithBreaker(breaker *circuit.Breaker) BreakerOption {
	return func(p *BreakerProvider) {
		if breaker != nil {
			p.breaker = breaker
		}
	}
}

func NewBreakerProvider(inner kpi.LogoStats, opts ...BreakerOption) *BreakerProvider {
	p := &BreakerProvider{
		inner:   inner,
		breaker: circuit.New("logo-stats", circuit.WithFailureThreshold(3)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *BreakerProvider) StatsForWindow(ctx context.Context, start, end time.Time) (kpi.LogoWindowStats, error) {
	stats, err := p.inner.StatsForWindow(ctx, start, end)
	if err == nil {
		if _, change := p.breaker.RecordSuccess(); change.Closed {
			p.logger.InfoContext(ctx, "logo stats recovered", "breaker", p.breaker.Name())
		}
		return stats, nil
	}

	useFallback, change := p.breaker.RecordFailure()
	if change.Opened {
		p.logger.ErrorContext(ctx, "logo stats circuit opened",
			"breaker", p.breaker.Name(), "error", err)
	}
	if useFallback {
		return kpi.LogoWindowStats{}, nil
	}
	return kpi.LogoWindowStats{}, err
}
