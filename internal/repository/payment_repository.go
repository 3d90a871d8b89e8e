package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nusastay/service-rental/internal/domain"
	paymentDomain "github.com/nusastay/service-rental/internal/domain/payment"
)

// PaymentModel is the GORM model for the payments table.
type PaymentModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	Amount      int64      `gorm:"not null"`
	PaymentType string     `gorm:"not null;size:50"`
	ProofURL    string     `gorm:"not null;size:500"`
	Status      string     `gorm:"not null;size:20;index"`
	VerifiedBy  *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt  *time.Time `gorm:""`
	Notes       string     `gorm:"size:500"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of PaymentRepository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toDomainPayment(&model)
}

// FindByBookingID retrieves all payments for a booking, oldest first.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*paymentDomain.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find payments by booking: %w", err)
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i, m := range models {
		p, err := toDomainPayment(&m)
		if err != nil {
			return nil, err
		}
		payments[i] = p
	}
	return payments, nil
}

// ListByStatus retrieves payments with the given status, oldest first.
func (r *GormPaymentRepository) ListByStatus(ctx context.Context, status paymentDomain.PaymentStatus, page, limit int) ([]*paymentDomain.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).Where("status = ?", string(status)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i, m := range models {
		p, err := toDomainPayment(&m)
		if err != nil {
			return nil, 0, err
		}
		payments[i] = p
	}
	return payments, total, nil
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(toPaymentModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Update persists changes to an existing payment. The status predicate keeps
// two operators from deciding the same pending payment twice.
func (r *GormPaymentRepository) Update(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND status = ?", model.ID, string(paymentDomain.StatusPending)).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"verified_by": model.VerifiedBy,
			"verified_at": model.VerifiedAt,
			"notes":       model.Notes,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("payment was already decided")
	}

	return nil
}

// --- Conversion Helpers ---

func toPaymentModel(p *paymentDomain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:          p.ID(),
		BookingID:   p.BookingID(),
		UserID:      p.UserID(),
		Amount:      p.Amount(),
		PaymentType: p.PaymentType(),
		ProofURL:    p.ProofURL(),
		Status:      string(p.Status()),
		VerifiedBy:  p.VerifiedBy(),
		VerifiedAt:  p.VerifiedAt(),
		Notes:       p.Notes(),
		CreatedAt:   p.CreatedAt(),
	}
}

func toDomainPayment(m *PaymentModel) (*paymentDomain.Payment, error) {
	status, err := paymentDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return paymentDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.UserID,
		m.Amount,
		m.PaymentType,
		m.ProofURL,
		status,
		m.VerifiedBy,
		m.VerifiedAt,
		m.Notes,
		m.CreatedAt,
	), nil
}
