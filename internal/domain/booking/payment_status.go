package booking

import "fmt"

// PaymentStatus tracks how much of the booking's contract price has been
// covered by verified payments.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	return p == PaymentUnpaid || p == PaymentPartial || p == PaymentPaid
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string { return string(p) }

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// DerivePaymentStatus computes the payment status as a pure function of the
// amounts. It is the single source of truth; the stored column is only a
// denormalized copy of this derivation.
func DerivePaymentStatus(totalPaid, totalPrice int64) PaymentStatus {
	switch {
	case totalPaid <= 0:
		return PaymentUnpaid
	case totalPaid < totalPrice:
		return PaymentPartial
	default:
		return PaymentPaid
	}
}
