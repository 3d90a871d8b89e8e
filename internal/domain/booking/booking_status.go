package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPendingPayment      BookingStatus = "pending_payment"
	StatusWaitingVerification BookingStatus = "waiting_verification"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCancelled           BookingStatus = "cancelled"
	StatusCompleted           BookingStatus = "completed"
)

// validTransitions defines the state machine for booking status transitions.
// waiting_verification can move back to pending_payment: a rejected proof, or
// a verified deposit that still leaves a balance, returns the booking to the
// customer for another payment.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingPayment:      {StatusWaitingVerification, StatusCancelled},
	StatusWaitingVerification: {StatusPendingPayment, StatusConfirmed, StatusCancelled},
	StatusConfirmed:           {StatusCompleted, StatusCancelled},
	StatusCancelled:           {},
	StatusCompleted:           {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// AcceptsPayments returns true if a new payment proof may be submitted in
// this status. Confirmed and terminal bookings are closed for new payments.
func (s BookingStatus) AcceptsPayments() bool {
	return s == StatusPendingPayment || s == StatusWaitingVerification
}

// CanBeCancelled returns true if the booking can be cancelled from this status.
func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
