package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics carrying our domain events.
const (
	TopicBookingEvents      = "booking.events"
	TopicPaymentEvents      = "payment.events"
	TopicHousekeepingEvents = "housekeeping.events"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"

	PaymentSubmitted = "payment.submitted"
	PaymentVerified  = "payment.verified"
	PaymentRejected  = "payment.rejected"

	BookingStayEnded = "booking.stay_ended"
)

// BookingCreatedEvent is published when a reservation request is created.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	OwnerID       *uuid.UUID `json:"owner_id,omitempty"`
	ServiceID     uuid.UUID  `json:"service_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	TotalPrice    int64      `json:"total_price"`
	Currency      string     `json:"currency"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a booking reaches full payment.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	TotalPaid     int64     `json:"total_paid"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentSubmittedEvent is published when a customer submits a payment proof.
type PaymentSubmittedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentVerifiedEvent is published when an operator approves a payment.
type PaymentVerifiedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	VerifiedBy uuid.UUID `json:"verified_by"`
	Amount     int64     `json:"amount"`
	TotalPaid  int64     `json:"total_paid"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentRejectedEvent is published when an operator rejects a payment.
type PaymentRejectedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StayEndedEvent arrives from housekeeping once the booked range has passed
// and the unit has been turned over; it drives confirmed bookings to completed.
type StayEndedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	EndedAt    time.Time `json:"ended_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
