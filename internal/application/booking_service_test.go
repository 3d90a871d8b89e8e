package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/domain/catalog"
	"github.com/nusastay/service-rental/internal/events"
)

type bookingFixture struct {
	service   *BookingService
	bookings  *fakeBookingRepo
	services  *fakeServiceRepo
	publisher *fakePublisher
	dayRoom   *catalog.Service
	hourPod   *catalog.Service
}

func newBookingFixture(t *testing.T, guardHourly bool) *bookingFixture {
	t.Helper()

	bookings := newFakeBookingRepo()
	services := newFakeServiceRepo()
	publisher := &fakePublisher{}

	dayRoom, err := catalog.NewService("Deluxe Room", "deluxe-room", "", 100_000, catalog.UnitPerDay, nil, nil, nil)
	require.NoError(t, err)
	hourPod, err := catalog.NewService("Meeting Pod", "meeting-pod", "", 25_000, catalog.UnitPerHour, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, services.Save(context.Background(), dayRoom))
	require.NoError(t, services.Save(context.Background(), hourPod))

	svc := NewBookingService(
		bookings,
		services,
		bookingDomain.NewStandardPricingCalculator(),
		bookingDomain.NewUnitOverlapPolicy(guardHourly),
		publisher,
		"628111222333",
		zap.NewNop(),
	)

	return &bookingFixture{
		service:   svc,
		bookings:  bookings,
		services:  services,
		publisher: publisher,
		dayRoom:   dayRoom,
		hourPod:   hourPod,
	}
}

func createReq(serviceID uuid.UUID, start, end time.Time) CreateBookingRequest {
	return CreateBookingRequest{
		ServiceID:     serviceID,
		StartTime:     start,
		EndTime:       end,
		CustomerName:  "Rina",
		CustomerPhone: "+628123456789",
		CustomerEmail: "rina@example.com",
	}
}

func TestCreateBooking(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 2)))
	require.NoError(t, err)

	assert.Equal(t, int64(200_000), dto.TotalPrice)
	assert.Equal(t, int64(200_000), dto.RemainingBalance)
	assert.Equal(t, "pending_payment", dto.Status)
	assert.Equal(t, "unpaid", dto.PaymentStatus)
	assert.Equal(t, "pay_full", dto.NextAction)
	assert.Equal(t, "per_day", dto.Unit)
	assert.Equal(t, int64(100_000), dto.UnitPrice)

	assert.Equal(t, []string{events.BookingCreated}, fx.publisher.typesOn(events.TopicBookingEvents))
}

func TestCreateBooking_OverlapRejected(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 3)))
	require.NoError(t, err)

	// Overlapping range on the same room conflicts.
	_, err = fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start.AddDate(0, 0, 2), start.AddDate(0, 0, 5)))
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// Back-to-back is fine: intervals are half-open.
	_, err = fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start.AddDate(0, 0, 3), start.AddDate(0, 0, 5)))
	assert.NoError(t, err)
}

func TestCreateBooking_HourlySharedByDefault(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.hourPod.ID(), start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	// Same slot again: hourly resources are shareable unless the guard is on.
	_, err = fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.hourPod.ID(), start, start.Add(2*time.Hour)))
	assert.NoError(t, err)
}

func TestCreateBooking_HourlyGuarded(t *testing.T) {
	fx := newBookingFixture(t, true)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.hourPod.ID(), start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.hourPod.ID(), start.Add(time.Hour), start.Add(3*time.Hour)))
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestCreateBooking_SubHourRejected(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	// 30 minutes of an hourly service prices at zero and is rejected.
	_, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.hourPod.ID(), start, start.Add(30*time.Minute)))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCreateBooking_InactiveService(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	fx.dayRoom.Deactivate()
	_, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestQuote(t *testing.T) {
	fx := newBookingFixture(t, false)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	quote, err := fx.service.Quote(context.Background(), QuoteRequest{
		ServiceID: fx.dayRoom.ID(),
		StartTime: start,
		EndTime:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200_000), quote.TotalPrice)
	assert.Equal(t, int64(100_000), quote.Deposit)
	assert.True(t, quote.Available)

	ownerID := uuid.New()
	_, err = fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 2)))
	require.NoError(t, err)

	quote, err = fx.service.Quote(context.Background(), QuoteRequest{
		ServiceID: fx.dayRoom.ID(),
		StartTime: start.AddDate(0, 0, 1),
		EndTime:   start.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.False(t, quote.Available)
}

func TestGetOwnerBooking_Scoping(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	require.NoError(t, err)

	got, err := fx.service.GetOwnerBooking(context.Background(), ownerID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)

	// Someone else's booking reads as not-found, not forbidden.
	stranger := uuid.New()
	_, err = fx.service.GetOwnerBooking(context.Background(), stranger, dto.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCancelBooking(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	require.NoError(t, err)

	// A stranger cannot cancel someone else's booking.
	stranger := uuid.New()
	_, err = fx.service.CancelBooking(context.Background(), dto.ID, stranger, false, "nope")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	cancelled, err := fx.service.CancelBooking(context.Background(), dto.ID, ownerID, false, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "plans changed", cancelled.CancelNote)
	assert.Contains(t, fx.publisher.typesOn(events.TopicBookingEvents), events.BookingCancelled)

	// The freed range can be rebooked.
	_, err = fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	assert.NoError(t, err)
}

func TestCancelBooking_OperatorOverride(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	operatorID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	require.NoError(t, err)

	cancelled, err := fx.service.CancelBooking(context.Background(), dto.ID, operatorID, true, "no-show")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestCheckTicket(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	require.NoError(t, err)

	ticket, err := fx.service.CheckTicket(context.Background(), dto.BookingNumber)
	require.NoError(t, err)
	assert.False(t, ticket.Valid, "unpaid booking is not a valid ticket")

	bk, err := fx.bookings.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NoError(t, bk.SubmitProof())
	require.NoError(t, bk.ApplyVerifiedPayment(bk.TotalPrice()))

	ticket, err = fx.service.CheckTicket(context.Background(), dto.BookingNumber)
	require.NoError(t, err)
	assert.True(t, ticket.Valid)
	assert.Equal(t, "confirmed", ticket.Status)
}

func TestCompleteBooking(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	require.NoError(t, err)

	// Completion requires a confirmed booking.
	_, err = fx.service.CompleteBooking(context.Background(), dto.ID)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))

	bk, err := fx.bookings.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NoError(t, bk.SubmitProof())
	require.NoError(t, bk.ApplyVerifiedPayment(bk.TotalPrice()))

	completed, err := fx.service.CompleteBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
}

func TestGetBookingStats(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := fx.service.CreateBooking(context.Background(), &ownerID,
			createReq(fx.dayRoom.ID(), start.AddDate(0, 0, i*7), start.AddDate(0, 0, i*7+2)))
		require.NoError(t, err)
	}

	stats, err := fx.service.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(3), stats.ByStatus["pending_payment"])
}

func TestContactAdminLink(t *testing.T) {
	fx := newBookingFixture(t, false)
	ownerID := uuid.New()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := fx.service.CreateBooking(context.Background(), &ownerID, createReq(fx.dayRoom.ID(), start, start.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Empty(t, dto.ContactAdminURL, "no contact link before a proof is submitted")

	bk, err := fx.bookings.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NoError(t, bk.SubmitProof())

	got, err := fx.service.GetOwnerBooking(context.Background(), ownerID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "contact_admin", got.NextAction)
	assert.Contains(t, got.ContactAdminURL, "https://wa.me/628111222333?text=")
	assert.Contains(t, got.ContactAdminURL, got.BookingNumber)
}
