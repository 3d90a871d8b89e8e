package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/domain"
	"github.com/nusastay/service-rental/internal/domain/catalog"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CustomerContact holds the contact fields captured at booking time, even
// for bookings made on behalf of another guest.
type CustomerContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Booking is the aggregate root for a reservation request. The contract
// price is snapshotted at creation; total_paid only ever grows, and only
// through ApplyVerifiedPayment.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	ownerID       *uuid.UUID
	serviceID     uuid.UUID
	unit          catalog.Unit
	unitPrice     int64

	startTime time.Time
	endTime   time.Time

	totalPrice    int64
	totalPaid     int64
	status        BookingStatus
	paymentStatus PaymentStatus

	customer   CustomerContact
	notes      string
	cancelNote string

	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "RB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "RB-" + string(result), nil
}

// NewBooking creates a new Booking with status=pending_payment,
// payment_status=unpaid and total_paid=0. totalPrice must already be
// computed from the service's snapshotted rate.
func NewBooking(
	ownerID *uuid.UUID,
	serviceID uuid.UUID,
	unit catalog.Unit,
	unitPrice int64,
	startTime, endTime time.Time,
	totalPrice int64,
	customer CustomerContact,
	notes string,
) (*Booking, error) {
	if serviceID == uuid.Nil {
		return nil, domain.NewValidationError("service ID is required")
	}
	if !unit.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid unit: %s", unit))
	}
	if !startTime.Before(endTime) {
		return nil, domain.NewValidationError("end time must be after start time")
	}
	if totalPrice <= 0 {
		return nil, domain.NewValidationError("total price must be positive")
	}
	if customer.Name == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	if customer.Phone == "" {
		return nil, domain.NewValidationError("customer phone is required")
	}
	if customer.Email == "" {
		return nil, domain.NewValidationError("customer email is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		ownerID:       ownerID,
		serviceID:     serviceID,
		unit:          unit,
		unitPrice:     unitPrice,
		startTime:     startTime.UTC(),
		endTime:       endTime.UTC(),
		totalPrice:    totalPrice,
		totalPaid:     0,
		status:        StatusPendingPayment,
		paymentStatus: PaymentUnpaid,
		customer:      customer,
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	ownerID *uuid.UUID,
	serviceID uuid.UUID,
	unit catalog.Unit,
	unitPrice int64,
	startTime, endTime time.Time,
	totalPrice, totalPaid int64,
	status BookingStatus,
	paymentStatus PaymentStatus,
	customer CustomerContact,
	notes, cancelNote string,
	cancelledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		ownerID:       ownerID,
		serviceID:     serviceID,
		unit:          unit,
		unitPrice:     unitPrice,
		startTime:     startTime,
		endTime:       endTime,
		totalPrice:    totalPrice,
		totalPaid:     totalPaid,
		status:        status,
		paymentStatus: paymentStatus,
		customer:      customer,
		notes:         notes,
		cancelNote:    cancelNote,
		cancelledAt:   cancelledAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// OwnerID returns the account that placed the booking, or nil for guest bookings.
func (b *Booking) OwnerID() *uuid.UUID { return b.ownerID }

// ServiceID returns the booked catalog service.
func (b *Booking) ServiceID() uuid.UUID { return b.serviceID }

// Unit returns the billing unit snapshotted from the service.
func (b *Booking) Unit() catalog.Unit { return b.unit }

// UnitPrice returns the unit rate snapshotted from the service.
func (b *Booking) UnitPrice() int64 { return b.unitPrice }

// StartTime returns the start of the booked range.
func (b *Booking) StartTime() time.Time { return b.startTime }

// EndTime returns the end of the booked range (exclusive).
func (b *Booking) EndTime() time.Time { return b.endTime }

// Interval returns the booked range as a half-open interval.
func (b *Booking) Interval() Interval { return Interval{Start: b.startTime, End: b.endTime} }

// TotalPrice returns the contract price snapshotted at creation.
func (b *Booking) TotalPrice() int64 { return b.totalPrice }

// TotalPaid returns the running sum of verified payments.
func (b *Booking) TotalPaid() int64 { return b.totalPaid }

// RemainingBalance returns the unpaid part of the contract price.
func (b *Booking) RemainingBalance() int64 { return b.totalPrice - b.totalPaid }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// Customer returns the contact captured at booking time.
func (b *Booking) Customer() CustomerContact { return b.customer }

// Notes returns free-text notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// SubmitProof transitions the booking to waiting_verification after a
// payment proof has been submitted. A booking that is already waiting keeps
// its status: resubmission just adds another pending payment. Confirmed,
// cancelled and completed bookings are closed for new payments.
func (b *Booking) SubmitProof() error {
	if !b.status.AcceptsPayments() {
		return domain.NewInvalidStateError(string(b.status), string(StatusWaitingVerification))
	}
	b.status = StatusWaitingVerification
	b.updatedAt = time.Now().UTC()
	return nil
}

// ApplyVerifiedPayment adds a verified payment amount to total_paid and
// recomputes the derived payment status. The amount is clamped so total_paid
// never exceeds the contract price. When the booking is fully paid it
// becomes confirmed; a partial balance sends it back to pending_payment so
// the customer can settle the remainder.
func (b *Booking) ApplyVerifiedPayment(amount int64) error {
	if amount <= 0 {
		return domain.NewValidationError("payment amount must be positive")
	}
	if b.status != StatusWaitingVerification {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}

	applied := amount
	if remaining := b.RemainingBalance(); applied > remaining {
		applied = remaining
	}
	b.totalPaid += applied
	b.paymentStatus = DerivePaymentStatus(b.totalPaid, b.totalPrice)

	if b.paymentStatus == PaymentPaid {
		b.status = StatusConfirmed
	} else {
		b.status = StatusPendingPayment
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// RejectPendingProof reverts the booking to pending_payment after an
// operator rejects its submitted proof. Money fields are untouched.
func (b *Booking) RejectPendingProof() error {
	if !b.status.CanTransitionTo(StatusPendingPayment) {
		return domain.NewInvalidStateError(string(b.status), string(StatusPendingPayment))
	}
	b.status = StatusPendingPayment
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions a confirmed booking to completed. This is driven by
// housekeeping after the stay ends, never by the payment flows.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
