package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	paymentDomain "github.com/nusastay/service-rental/internal/domain/payment"
	"github.com/nusastay/service-rental/internal/events"
	"github.com/nusastay/service-rental/internal/storage"
)

// SubmitPaymentRequest carries a payment proof submission. Option decides how
// much is due; PaymentType is the customer's free-text channel label (e.g.
// bca_manual). Proof is the uploaded file stream; Filename is only used for
// its extension.
type SubmitPaymentRequest struct {
	BookingID   uuid.UUID
	Option      bookingDomain.PaymentOption
	PaymentType string
	Proof       io.Reader
	Filename    string
	ContentType string
}

// PaymentDTO is the response representation of a payment attempt.
type PaymentDTO struct {
	ID          uuid.UUID  `json:"id"`
	BookingID   uuid.UUID  `json:"booking_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	PaymentType string     `json:"payment_type"`
	ProofURL    string     `json:"proof_url"`
	Status      string     `json:"status"`
	VerifiedBy  *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PaymentService handles proof submission and payment queries.
type PaymentService struct {
	payments  paymentDomain.PaymentRepository
	bookings  bookingDomain.BookingRepository
	proofs    storage.ProofStore
	tx        Transactor
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	payments paymentDomain.PaymentRepository,
	bookings bookingDomain.BookingRepository,
	proofs storage.ProofStore,
	tx Transactor,
	publisher EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		bookings:  bookings,
		proofs:    proofs,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitPayment records a payment proof for a booking the user owns. The
// amount is derived from the chosen option and the booking's balance, never
// taken from the client. The booking moves to waiting_verification.
func (s *PaymentService) SubmitPayment(ctx context.Context, userID uuid.UUID, req SubmitPaymentRequest) (*PaymentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() == nil || *bk.OwnerID() != userID {
		return nil, domain.NewNotFoundError("Booking", req.BookingID.String())
	}
	if !bk.Status().AcceptsPayments() {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusWaitingVerification))
	}
	if strings.TrimSpace(req.PaymentType) == "" {
		return nil, domain.NewValidationError("payment type is required")
	}

	amount, err := bookingDomain.AmountDue(req.Option, bk.TotalPrice(), bk.TotalPaid())
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if amount <= 0 {
		return nil, domain.NewConflictError("booking has no outstanding balance")
	}

	objectPath := fmt.Sprintf("%s/%s-%d%s",
		userID, bk.ID(), time.Now().UnixMilli(), proofExtension(req.Filename))
	proofURL, err := s.proofs.Store(ctx, objectPath, req.ContentType, req.Proof)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}

	p, err := paymentDomain.NewPayment(bk.ID(), userID, amount, req.PaymentType, proofURL)
	if err != nil {
		return nil, err
	}

	if err := bk.SubmitProof(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.payments.Save(ctx, p); err != nil {
			return err
		}
		return s.bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	evt := events.PaymentSubmittedEvent{
		PaymentID:  p.ID(),
		BookingID:  bk.ID(),
		UserID:     userID,
		Amount:     amount,
		Currency:   domain.CurrencyIDR,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicPaymentEvents, events.PaymentSubmitted, p.ID().String(), evt)

	result := toPaymentDTO(p)
	return &result, nil
}

// ListBookingPayments returns the payment history of a booking the user owns,
// oldest first.
func (s *PaymentService) ListBookingPayments(ctx context.Context, userID, bookingID uuid.UUID) ([]PaymentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() == nil || *bk.OwnerID() != userID {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	payments, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, nil
}

// --- Helpers ---

func proofExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ".jpg"
	}
	return ext
}

func toPaymentDTO(p *paymentDomain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID(),
		BookingID:   p.BookingID(),
		UserID:      p.UserID(),
		Amount:      p.Amount(),
		Currency:    domain.CurrencyIDR,
		PaymentType: p.PaymentType(),
		ProofURL:    p.ProofURL(),
		Status:      string(p.Status()),
		VerifiedBy:  p.VerifiedBy(),
		VerifiedAt:  p.VerifiedAt(),
		Notes:       p.Notes(),
		CreatedAt:   p.CreatedAt(),
	}
}

func (s *PaymentService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if err := s.publisher.Publish(ctx, topic, eventType, key, data); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
