package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "brandcert.audit", cfg.KafkaTopic)
	assert.Equal(t, "15 0 * * *", cfg.SnapshotCron)
	assert.Equal(t, 50, cfg.Thresholds.PendingWarning)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BRANDCERT_ADDR", ":9090")
	t.Setenv("BRANDCERT_DATABASE_URL", "postgres://localhost/brandcert")
	t.Setenv("BRANDCERT_KAFKA_BROKERS", " kafka-1:9092 ,kafka-2:9092,kafka-1:9092,")
	t.Setenv("BRANDCERT_SNAPSHOT_CRON", "0 1 * * *")
	t.Setenv("BRANDCERT_ALERT_PENDING_MAX", "75")
	t.Setenv("BRANDCERT_ALERT_APPROVAL_MIN", "55.5")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost/brandcert", cfg.DatabaseURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "0 1 * * *", cfg.SnapshotCron)
	assert.Equal(t, 75, cfg.Thresholds.PendingWarning)
	assert.InDelta(t, 55.5, cfg.Thresholds.ApprovalRateError, 0.001)
}

func TestFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("BRANDCERT_ALERT_PENDING_MAX", "lots")

	cfg := FromEnv()
	assert.Equal(t, 50, cfg.Thresholds.PendingWarning)
}
