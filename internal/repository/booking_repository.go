package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nusastay/service-rental/internal/domain"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/domain/catalog"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber string     `gorm:"uniqueIndex;not null;size:20"`
	OwnerID       *uuid.UUID `gorm:"type:uuid;index"`
	ServiceID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	Unit          string     `gorm:"not null;size:20"`
	UnitPrice     int64      `gorm:"not null"`
	StartTime     time.Time  `gorm:"not null;index"`
	EndTime       time.Time  `gorm:"not null"`
	TotalPrice    int64      `gorm:"not null"`
	TotalPaid     int64      `gorm:"not null;default:0"`
	Status        string     `gorm:"not null;size:30;index"`
	PaymentStatus string     `gorm:"not null;size:20"`
	CustomerName  string     `gorm:"not null;size:200"`
	CustomerPhone string     `gorm:"not null;size:30"`
	CustomerEmail string     `gorm:"not null;size:200"`
	Notes         string     `gorm:"size:1000"`
	CancelNote    string     `gorm:"size:500"`
	CancelledAt   *time.Time `gorm:""`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByOwnerID retrieves bookings for a specific owner with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// FindActiveIntervals returns the booked ranges of all non-cancelled bookings
// for a service intersecting [from, to).
func (r *GormBookingRepository) FindActiveIntervals(ctx context.Context, serviceID uuid.UUID, from, to time.Time) ([]bookingDomain.Interval, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where("service_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			serviceID, string(bookingDomain.StatusCancelled), to, from).
		Order("start_time ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active intervals: %w", err)
	}

	intervals := make([]bookingDomain.Interval, len(models))
	for i, m := range models {
		intervals[i] = bookingDomain.Interval{Start: m.StartTime, End: m.EndTime}
	}
	return intervals, nil
}

// Create persists a new booking. When exclusive is set, the insert runs in a
// serializable transaction that re-checks for overlapping non-cancelled
// bookings of the same service; the bookings table additionally carries an
// exclusion constraint so racing inserts that slip past the check fail at
// the database.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking, exclusive bool) error {
	model := toBookingModel(bk)

	if !exclusive {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			if isExclusionViolation(err) {
				return domain.NewConflictError("the requested range is no longer available")
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		if err := tx.Model(&BookingModel{}).
			Where("service_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
				model.ServiceID, string(bookingDomain.StatusCancelled), model.EndTime, model.StartTime).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("failed to check for overlapping bookings: %w", err)
		}
		if overlapping > 0 {
			return domain.NewConflictError("the requested range is no longer available")
		}
		if err := tx.Create(model).Error; err != nil {
			if isExclusionViolation(err) {
				return domain.NewConflictError("the requested range is no longer available")
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		if isExclusionViolation(err) || isSerializationFailure(err) {
			return domain.NewConflictError("the requested range is no longer available")
		}
		return err
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the stored version matches version-1, since
	// IncrementVersion was called before persisting.
	expectedVersion := bk.Version() - 1
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"total_paid":     model.TotalPaid,
			"status":         model.Status,
			"payment_status": model.PaymentStatus,
			"notes":          model.Notes,
			"cancel_note":    model.CancelNote,
			"cancelled_at":   model.CancelledAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

func isExclusionViolation(err error) bool {
	// 23P01 exclusion_violation; lib/pq and pgx both embed the code in the
	// error string GORM surfaces.
	return err != nil && (strings.Contains(err.Error(), "23P01") ||
		strings.Contains(err.Error(), "bookings_no_overlap"))
}

func isSerializationFailure(err error) bool {
	// 40001 serialization_failure.
	return err != nil && strings.Contains(err.Error(), "40001")
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	customer := bk.Customer()
	return &BookingModel{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		OwnerID:       bk.OwnerID(),
		ServiceID:     bk.ServiceID(),
		Unit:          string(bk.Unit()),
		UnitPrice:     bk.UnitPrice(),
		StartTime:     bk.StartTime(),
		EndTime:       bk.EndTime(),
		TotalPrice:    bk.TotalPrice(),
		TotalPaid:     bk.TotalPaid(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		Notes:         bk.Notes(),
		CancelNote:    bk.CancelNote(),
		CancelledAt:   bk.CancelledAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	unit, err := catalog.ParseUnit(m.Unit)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.OwnerID,
		m.ServiceID,
		unit,
		m.UnitPrice,
		m.StartTime,
		m.EndTime,
		m.TotalPrice,
		m.TotalPaid,
		status,
		paymentStatus,
		bookingDomain.CustomerContact{
			Name:  m.CustomerName,
			Phone: m.CustomerPhone,
			Email: m.CustomerEmail,
		},
		m.Notes,
		m.CancelNote,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
