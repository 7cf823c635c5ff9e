package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwantia/didmeta/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	// Seed brokers, host:port
	Brokers []string

	// Topic events are produced to (default: "didmeta.events")
	Topic string

	// How long a record may wait for delivery before it is dropped (default: 30s)
	DeliveryTimeout time.Duration
}

// Kafka produces events asynchronously through franz-go.
type Kafka struct {
	client *kgo.Client
	topic  string
	log    *log.Logger
}

func NewKafka(config KafkaConfig, logger *log.Logger) (*Kafka, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if config.Topic == "" {
		config.Topic = "didmeta.events"
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.NewDiscard()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(config.Brokers...),
		kgo.DefaultProduceTopic(config.Topic),
		kgo.RecordDeliveryTimeout(config.DeliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Kafka{
		client: client,
		topic:  config.Topic,
		log:    logger,
	}, nil
}

// Publish encodes and enqueues the event; delivery errors are only logged.
func (k *Kafka) Publish(ctx context.Context, kind Kind, payload map[string]any) {
	event := NewEvent(kind, payload)

	raw, err := json.Marshal(event)
	if err != nil {
		k.log.Warn("Unable to encode %s event: %v", kind, err)
		return
	}

	record := &kgo.Record{Value: raw}
	if key := event.Key(); key != "" {
		record.Key = []byte(key)
	}

	// Delivery outlives the request that triggered it
	k.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			k.log.Warn("Unable to publish %s event %s to %s: %v", kind, event.ID, k.topic, err)
		}
	})
}

// Close flushes buffered events for at most timeout and closes the client.
func (k *Kafka) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := k.client.Flush(ctx)
	k.client.Close()

	if err != nil {
		return fmt.Errorf("failed to flush kafka events: %w", err)
	}
	return nil
}
