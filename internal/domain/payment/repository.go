package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for payment attempts.
type PaymentRepository interface {
	// FindByID retrieves a payment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBookingID retrieves all payments for a booking, oldest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)

	// ListByStatus retrieves payments with the given status, oldest first,
	// with pagination (operator work queue).
	ListByStatus(ctx context.Context, status PaymentStatus, page, limit int) ([]*Payment, int64, error)

	// Save persists a new payment.
	Save(ctx context.Context, p *Payment) error

	// Update persists changes to an existing payment.
	Update(ctx context.Context, p *Payment) error
}
