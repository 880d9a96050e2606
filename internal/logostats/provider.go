// Package logostats reads logo-generation statistics produced by the AI
// image subsystem. The certification core treats that subsystem as opaque
// and only consumes aggregate figures per time window.
package logostats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"brandcert/internal/kpi"
)

// PostgresProvider aggregates over the logo_generations table that the image
// subsystem writes into.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

// StatsForWindow returns totals for generations started in [start, end).
func (p *PostgresProvider) StatsForWindow(ctx context.Context, start, end time.Time) (kpi.LogoWindowStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE success),
			COALESCE(AVG(generation_seconds), 0)
		FROM logo_generations
		WHERE created_at >= $1 AND created_at < $2
	`
	var stats kpi.LogoWindowStats
	err := p.db.QueryRowContext(ctx, query, start, end).
		Scan(&stats.Total, &stats.Successful, &stats.AvgSeconds)
	if err != nil {
		return kpi.LogoWindowStats{}, fmt.Errorf("logo stats: %w", err)
	}
	return stats, nil
}

// NopProvider reports empty statistics. Used where the image subsystem is
// not deployed.
type NopProvider struct{}

func (NopProvider) StatsForWindow(context.Context, time.Time, time.Time) (kpi.LogoWindowStats, error) {
	return kpi.LogoWindowStats{}, nil
}
