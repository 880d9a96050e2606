//go:build integration

package audittrail_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	id "brandcert/pkg/domain"
	"brandcert/pkg/testutil/containers"
)

func TestKafkaPublisherProducesEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	broker := containers.GetManager().GetRedpanda(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	topic := "brandcert.audit.test"

	publisher, err := audittrail.NewKafkaPublisher(broker.Brokers, topic, logger)
	require.NoError(t, err)
	defer publisher.Close()

	entry := audittrail.Entry{
		ID:             id.NewEntryID(),
		RecordID:       id.NewRecordID(),
		PreviousStatus: certification.StatusPending,
		NewStatus:      certification.StatusApproved,
		ChangedAt:      time.Date(2026, 6, 2, 15, 4, 5, 0, time.UTC),
		Actor:          "supervisor",
		Notes:          "verified on site",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, publisher.Publish(ctx, entry))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	// Keyed by record id so one record's changes stay in one partition.
	require.Equal(t, entry.RecordID.String(), string(records[0].Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &payload))
	require.Equal(t, entry.ID.String(), payload["id"])
	require.Equal(t, entry.RecordID.String(), payload["record_id"])
	require.Equal(t, "PENDING", payload["previous_status"])
	require.Equal(t, "APPROVED", payload["new_status"])
	require.Equal(t, "supervisor", payload["actor"])
	require.Equal(t, "verified on site", payload["notes"])
	require.Equal(t, "2026-06-02T15:04:05Z", payload["changed_at"])
}
