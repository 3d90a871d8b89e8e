package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/events"
)

func stayEndedEvent(t *testing.T, bookingID uuid.UUID) events.CloudEvent {
	t.Helper()
	now := time.Now().UTC()
	ce, err := events.NewCloudEvent("service-housekeeping", events.BookingStayEnded, events.StayEndedEvent{
		BookingID:  bookingID,
		EndedAt:    now,
		OccurredAt: now,
	})
	require.NoError(t, err)
	return ce
}

func TestHousekeepingConsumer_CompletesConfirmedBooking(t *testing.T) {
	fx := newPaymentFixture(t)
	operatorID := uuid.New()

	submitted := fx.submit(t, bookingDomain.PayFull)
	_, err := fx.verification.VerifyPayment(context.Background(), operatorID, submitted.ID, "")
	require.NoError(t, err)

	hc := &HousekeepingConsumer{service: fx.service, logger: zap.NewNop()}
	require.NoError(t, hc.handleEvent(context.Background(), stayEndedEvent(t, fx.bookingID)))

	bk, err := fx.bookings.FindByID(context.Background(), fx.bookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCompleted, bk.Status())
}

func TestHousekeepingConsumer_SkipsUnfinishableBooking(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.service.CancelBooking(context.Background(), fx.bookingID, fx.ownerID, false, "")
	require.NoError(t, err)

	// A booking that can never complete must not wedge the consumer.
	assert.NoError(t, hcFor(fx).handleEvent(context.Background(), stayEndedEvent(t, fx.bookingID)))

	bk, err := fx.bookings.FindByID(context.Background(), fx.bookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCancelled, bk.Status())

	// Same for bookings this consumer has never heard of.
	assert.NoError(t, hcFor(fx).handleEvent(context.Background(), stayEndedEvent(t, uuid.New())))
}

func TestHousekeepingConsumer_IgnoresMalformedData(t *testing.T) {
	fx := newPaymentFixture(t)

	ce := events.CloudEvent{
		Type: events.BookingStayEnded,
		Data: json.RawMessage(`{"booking_id": 42`),
	}
	assert.NoError(t, hcFor(fx).handleEvent(context.Background(), ce))
}

func TestHousekeepingConsumer_IgnoresOtherEventTypes(t *testing.T) {
	fx := newPaymentFixture(t)

	ce, err := events.NewCloudEvent("service-housekeeping", "housekeeping.room_inspected", struct{}{})
	require.NoError(t, err)
	assert.NoError(t, hcFor(fx).handleEvent(context.Background(), ce))
}

func hcFor(fx *paymentFixture) *HousekeepingConsumer {
	return &HousekeepingConsumer{service: fx.service, logger: zap.NewNop()}
}
