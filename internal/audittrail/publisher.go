package audittrail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher fans audit entries out to downstream consumers (the BI
// warehouse). Publishing is best effort after the entry is durably stored;
// the store remains the source of truth.
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
	Close()
}

// NopPublisher drops entries. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Entry) error { return nil }
func (NopPublisher) Close()                               {}

// entryPayload is the JSON shape produced to Kafka. Field names are stable;
// consumers deserialize by name.
type entryPayload struct {
	ID             string `json:"id"`
	RecordID       string `json:"record_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	ChangedAt      string `json:"changed_at"`
	Actor          string `json:"actor"`
	Notes          string `json:"notes,omitempty"`
	TraceID        string `json:"trace_id,omitempty"`
}

// KafkaPublisher produces audit entries onto a Kafka topic, keyed by record
// id so one record's changes stay ordered within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Already-exists is the common case on restart.
		logger.Debug("create topic", "topic", topic, "err", err)
	}

	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entryPayload{
		ID:             entry.ID.String(),
		RecordID:       entry.RecordID.String(),
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		ChangedAt:      entry.ChangedAt.UTC().Format(time.RFC3339Nano),
		Actor:          entry.Actor,
		Notes:          entry.Notes,
		TraceID:        entry.TraceID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.RecordID.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit entry: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
