package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
	"github.com/nusastay/service-rental/internal/events"
)

// HousekeepingConsumer listens to housekeeping events and completes confirmed
// bookings once their stay has ended and the unit is turned over.
type HousekeepingConsumer struct {
	consumer *events.Consumer
	service  *BookingService
	logger   *zap.Logger
}

// NewHousekeepingConsumer creates a new HousekeepingConsumer.
func NewHousekeepingConsumer(
	brokers []string,
	groupID string,
	service *BookingService,
	logger *zap.Logger,
) *HousekeepingConsumer {
	consumer := events.NewConsumer(brokers, groupID, events.TopicHousekeepingEvents, logger)
	return &HousekeepingConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming housekeeping events. Blocks until ctx is cancelled.
func (c *HousekeepingConsumer) Start(ctx context.Context) error {
	return c.consumer.Run(ctx, c.handleEvent)
}

// Close closes the underlying Kafka consumer.
func (c *HousekeepingConsumer) Close() error {
	return c.consumer.Close()
}

func (c *HousekeepingConsumer) handleEvent(ctx context.Context, ce events.CloudEvent) error {
	switch ce.Type {
	case events.BookingStayEnded:
		return c.handleStayEnded(ctx, ce)
	default:
		c.logger.Debug("ignoring unhandled housekeeping event type",
			zap.String("type", ce.Type),
		)
		return nil
	}
}

func (c *HousekeepingConsumer) handleStayEnded(ctx context.Context, ce events.CloudEvent) error {
	var evt events.StayEndedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse StayEndedEvent data", zap.Error(err))
		return nil // never retry malformed data
	}

	_, err := c.service.CompleteBooking(ctx, evt.BookingID)
	if err != nil {
		// Unknown bookings and bookings that can no longer complete (e.g.
		// cancelled before the stay ended) will never succeed on retry.
		if domain.IsKind(err, domain.KindNotFound) || domain.IsKind(err, domain.KindInvalidState) {
			c.logger.Warn("skipping stay-ended event for unfinishable booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to complete booking after stay ended",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking completed after stay ended",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
