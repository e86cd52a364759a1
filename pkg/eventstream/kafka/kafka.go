// Package kafka provides a Kafka-backed eventstream.Publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vendorahq/vendora-ai/pkg/eventstream"
)

// Publisher writes interaction events to a Kafka topic, keyed by user id so
// a single user's events land on one partition in order.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the destination topic.
	Topic string
}

// NewPublisher creates a Kafka publisher.
func NewPublisher(c Config, logger *zap.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("connected Kafka event publisher",
		zap.Strings("brokers", c.Brokers),
		zap.String("topic", c.Topic),
	)

	return &Publisher{writer: writer, logger: logger}, nil
}

// PublishInteraction writes one event to the topic.
func (p *Publisher) PublishInteraction(ctx context.Context, event *eventstream.InteractionTrackedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling interaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.UserID, 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing interaction event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
