package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByOwnerID retrieves bookings belonging to a specific owner with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindActiveIntervals returns the booked ranges of all non-cancelled
	// bookings for a service that intersect [from, to).
	FindActiveIntervals(ctx context.Context, serviceID uuid.UUID, from, to time.Time) ([]Interval, error)

	// Create persists a new booking. exclusive requests transactional
	// overlap enforcement: the insert fails with a conflict error if any
	// non-cancelled booking for the same service overlaps the range.
	Create(ctx context.Context, booking *Booking, exclusive bool) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
