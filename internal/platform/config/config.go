// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"brandcert/internal/dashboard"
	strutil "brandcert/pkg/platform/strings"
)

// Config captures everything the server and CLI need to start.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// DatabaseURL is the postgres DSN. Empty selects the in-memory stores,
	// which is only sensible for local development.
	DatabaseURL string

	// RedisURL enables the dashboard view cache when set.
	RedisURL string

	// KafkaBrokers enables the audit event stream when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// SnapshotCron schedules the daily KPI computation.
	SnapshotCron string

	// Thresholds drive dashboard alerting.
	Thresholds dashboard.Thresholds

	ShutdownTimeout time.Duration
}

// FromEnv reads BRANDCERT_* variables, filling defaults for anything unset.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("BRANDCERT_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("BRANDCERT_DATABASE_URL"),
		RedisURL:        os.Getenv("BRANDCERT_REDIS_URL"),
		KafkaTopic:      envOr("BRANDCERT_KAFKA_TOPIC", "brandcert.audit"),
		SnapshotCron:    envOr("BRANDCERT_SNAPSHOT_CRON", "15 0 * * *"),
		Thresholds:      dashboard.DefaultThresholds(),
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := os.Getenv("BRANDCERT_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strutil.DedupeAndTrim(strings.Split(brokers, ","))
	}
	if v, ok := envInt("BRANDCERT_ALERT_PENDING_MAX"); ok {
		cfg.Thresholds.PendingWarning = v
	}
	if v, ok := envFloat("BRANDCERT_ALERT_APPROVAL_MIN"); ok {
		cfg.Thresholds.ApprovalRateError = v
	}
	if v, ok := envFloat("BRANDCERT_ALERT_LOGO_MIN"); ok {
		cfg.Thresholds.LogoSuccessWarning = v
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) (int, bool) {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
