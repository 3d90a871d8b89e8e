package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes CloudEvents to Kafka. Messages are keyed so all events
// for one aggregate land on the same partition.
type Producer struct {
	writer *kafka.Writer
	source string
	logger *zap.Logger
}

// NewProducer creates a Producer writing to the given brokers. source is
// stamped on every envelope.
func NewProducer(brokers []string, source string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, source: source, logger: logger}
}

// Publish wraps data in a CloudEvent and writes it to topic, keyed by key.
func (p *Producer) Publish(ctx context.Context, topic, eventType, key string, data interface{}) error {
	ce, err := NewCloudEvent(p.source, eventType, data)
	if err != nil {
		return err
	}

	value, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("failed to marshal cloud event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("type", eventType),
		zap.String("event_id", ce.ID),
	)
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
