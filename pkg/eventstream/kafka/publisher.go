// Package kafka publishes eventstream payloads to a Kafka topic as JSON.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/saorihq/saori/pkg/eventstream"
)

// DefaultTopic is the topic events are published to when none is configured.
const DefaultTopic = "saori.events"

// Publisher implements eventstream.Publisher on top of a Kafka writer.
type Publisher struct {
	writer *kafkago.Writer
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic if empty.
	Topic string
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(cfg.Brokers...),
			Topic:    topic,
			Balancer: &kafkago.LeastBytes{},
		},
	}, nil
}

// PublishIndexRebuilt writes the event keyed by its event ID.
func (p *Publisher) PublishIndexRebuilt(ctx context.Context, event *eventstream.IndexRebuiltEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.publish(ctx, event.EventID, event)
}

// PublishDocumentIngested writes the event keyed by its event ID.
func (p *Publisher) PublishDocumentIngested(ctx context.Context, event *eventstream.DocumentIngestedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.publish(ctx, event.EventID, event)
}

func (p *Publisher) publish(ctx context.Context, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
