package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "borderlink/pkg/domain-errors"
)

// Kafka publishes lifecycle events to a topic. Produces are asynchronous;
// Close flushes whatever is still in flight.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects to the brokers and returns a publisher bound to the topic.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to connect to kafka")
	}
	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

// Emit enqueues the event keyed by manifest ID so per-manifest ordering holds
// within a partition. Delivery failures are logged, not returned: lifecycle
// events must never fail a submission.
func (k *Kafka) Emit(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode event")
	}

	record := &kgo.Record{
		Key:   []byte(e.ManifestID.String()),
		Value: value,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.ErrorContext(ctx, "failed to publish lifecycle event",
				"action", e.Action,
				"manifest_id", e.ManifestID,
				"error", err,
			)
		}
	})
	return nil
}

// Close drains pending produces and releases the client.
func (k *Kafka) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := k.client.Flush(ctx); err != nil {
		return err
	}
	k.client.Close()
	return nil
}
