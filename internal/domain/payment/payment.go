package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/domain"
)

// PaymentStatus represents the verification state of a single payment attempt.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusVerified PaymentStatus = "verified"
	StatusRejected PaymentStatus = "rejected"
)

// IsValid returns true if the payment status is recognized.
func (s PaymentStatus) IsValid() bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

// String returns the string representation of the status.
func (s PaymentStatus) String() string { return string(s) }

// ParseStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParseStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// Payment is one payment attempt with its proof-of-transfer artifact. A
// payment contributes to the booking's total_paid exactly once, when it
// moves from pending to verified; rejected and pending payments contribute
// nothing. Several payments may exist per booking (deposit flows and
// resubmission after rejection).
type Payment struct {
	id          uuid.UUID
	bookingID   uuid.UUID
	userID      uuid.UUID
	amount      int64
	paymentType string
	proofURL    string
	status      PaymentStatus
	verifiedBy  *uuid.UUID
	verifiedAt  *time.Time
	notes       string
	createdAt   time.Time
}

// NewPayment creates a pending payment attempt.
func NewPayment(bookingID, userID uuid.UUID, amount int64, paymentType, proofURL string) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if amount <= 0 {
		return nil, domain.NewValidationError("payment amount must be positive")
	}
	if paymentType == "" {
		return nil, domain.NewValidationError("payment type is required")
	}
	if proofURL == "" {
		return nil, domain.NewValidationError("payment proof is required")
	}

	return &Payment{
		id:          uuid.New(),
		bookingID:   bookingID,
		userID:      userID,
		amount:      amount,
		paymentType: paymentType,
		proofURL:    proofURL,
		status:      StatusPending,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, bookingID, userID uuid.UUID,
	amount int64,
	paymentType, proofURL string,
	status PaymentStatus,
	verifiedBy *uuid.UUID,
	verifiedAt *time.Time,
	notes string,
	createdAt time.Time,
) *Payment {
	return &Payment{
		id:          id,
		bookingID:   bookingID,
		userID:      userID,
		amount:      amount,
		paymentType: paymentType,
		proofURL:    proofURL,
		status:      status,
		verifiedBy:  verifiedBy,
		verifiedAt:  verifiedAt,
		notes:       notes,
		createdAt:   createdAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID          { return p.id }
func (p *Payment) BookingID() uuid.UUID   { return p.bookingID }
func (p *Payment) UserID() uuid.UUID      { return p.userID }
func (p *Payment) Amount() int64          { return p.amount }
func (p *Payment) PaymentType() string    { return p.paymentType }
func (p *Payment) ProofURL() string       { return p.proofURL }
func (p *Payment) Status() PaymentStatus  { return p.status }
func (p *Payment) VerifiedBy() *uuid.UUID { return p.verifiedBy }
func (p *Payment) VerifiedAt() *time.Time { return p.verifiedAt }
func (p *Payment) Notes() string          { return p.notes }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }

// --- Behavior ---

// Verify marks a pending payment as verified and stamps the operator.
func (p *Payment) Verify(operatorID uuid.UUID, note string) error {
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), string(StatusVerified))
	}
	if operatorID == uuid.Nil {
		return domain.NewValidationError("operator ID is required")
	}
	now := time.Now().UTC()
	p.status = StatusVerified
	p.verifiedBy = &operatorID
	p.verifiedAt = &now
	if note != "" {
		p.notes = note
	}
	return nil
}

// Reject marks a pending payment as rejected and stamps the operator.
func (p *Payment) Reject(operatorID uuid.UUID, note string) error {
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), string(StatusRejected))
	}
	if operatorID == uuid.Nil {
		return domain.NewValidationError("operator ID is required")
	}
	now := time.Now().UTC()
	p.status = StatusRejected
	p.verifiedBy = &operatorID
	p.verifiedAt = &now
	if note != "" {
		p.notes = note
	}
	return nil
}
