package events

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// maxRetryBackoff caps the delay between handler retries.
const maxRetryBackoff = 30 * time.Second

// Handler processes one decoded CloudEvent. A returned error makes the
// consumer retry the same event with backoff; the message offset is only
// committed once the handler succeeds, so delivery is at-least-once.
type Handler func(ctx context.Context, event CloudEvent) error

// Consumer reads CloudEvents from one topic within a consumer group.
type Consumer struct {
	reader  *kafka.Reader
	logger  *zap.Logger
	backoff time.Duration
}

// NewConsumer creates a Consumer for the given topic and group.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: logger, backoff: time.Second}
}

// Run consumes messages until ctx is cancelled, invoking handle for each.
// Undecodable messages are logged and committed so they do not wedge the
// partition; handler failures are retried in place so the offset never
// advances past an unprocessed event.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		ce, err := ParseCloudEvent(msg.Value)
		if err != nil {
			c.logger.Error("dropping undecodable message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := c.handleWithRetry(ctx, handle, ce, msg.Topic, msg.Offset); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// handleWithRetry invokes handle until it succeeds or ctx ends, doubling the
// wait between attempts up to maxRetryBackoff.
func (c *Consumer) handleWithRetry(ctx context.Context, handle Handler, ce CloudEvent, topic string, offset int64) error {
	wait := c.backoff
	for {
		err := handle(ctx, ce)
		if err == nil {
			return nil
		}

		c.logger.Error("event handler failed, retrying",
			zap.String("topic", topic),
			zap.String("type", ce.Type),
			zap.String("event_id", ce.ID),
			zap.Int64("offset", offset),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if wait < maxRetryBackoff {
			wait *= 2
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
