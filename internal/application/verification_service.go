package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	paymentDomain "github.com/nusastay/service-rental/internal/domain/payment"
	"github.com/nusastay/service-rental/internal/events"
)

// VerificationService is the operator-side flow deciding submitted payments.
type VerificationService struct {
	payments  paymentDomain.PaymentRepository
	bookings  bookingDomain.BookingRepository
	tx        Transactor
	publisher EventPublisher
	logger    *zap.Logger
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(
	payments paymentDomain.PaymentRepository,
	bookings bookingDomain.BookingRepository,
	tx Transactor,
	publisher EventPublisher,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		payments:  payments,
		bookings:  bookings,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
	}
}

// ListPendingPayments returns the operator work queue, oldest first.
func (s *VerificationService) ListPendingPayments(ctx context.Context, page, limit int) ([]PaymentDTO, int64, error) {
	payments, total, err := s.payments.ListByStatus(ctx, paymentDomain.StatusPending, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, total, nil
}

// VerifyPayment approves a pending payment and applies its amount to the
// booking. Both state changes happen in memory before anything is persisted,
// and both rows are written in one transaction: a verification that cannot
// land on the booking leaves the payment pending. The conditional payment
// update inside the transaction is what keeps two operators from crediting
// the same proof twice.
func (s *VerificationService) VerifyPayment(ctx context.Context, operatorID, paymentID uuid.UUID, note string) (*PaymentDTO, error) {
	if operatorID == uuid.Nil {
		return nil, domain.NewValidationError("operator ID is required")
	}

	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status() != paymentDomain.StatusPending {
		return nil, domain.NewInvalidStateError(string(p.Status()), string(paymentDomain.StatusVerified))
	}

	bk, err := s.bookings.FindByID(ctx, p.BookingID())
	if err != nil {
		return nil, err
	}

	if err := bk.ApplyVerifiedPayment(p.Amount()); err != nil {
		return nil, err
	}
	if err := p.Verify(operatorID, note); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.payments.Update(ctx, p); err != nil {
			return err
		}
		return s.bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	evt := events.PaymentVerifiedEvent{
		PaymentID:  p.ID(),
		BookingID:  bk.ID(),
		VerifiedBy: operatorID,
		Amount:     p.Amount(),
		TotalPaid:  bk.TotalPaid(),
		Currency:   domain.CurrencyIDR,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicPaymentEvents, events.PaymentVerified, p.ID().String(), evt)

	if bk.Status() == bookingDomain.StatusConfirmed {
		confirmed := events.BookingConfirmedEvent{
			BookingID:     bk.ID(),
			BookingNumber: bk.BookingNumber(),
			TotalPaid:     bk.TotalPaid(),
			Currency:      domain.CurrencyIDR,
			OccurredAt:    time.Now().UTC(),
		}
		s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, bk.ID().String(), confirmed)
	}

	result := toPaymentDTO(p)
	return &result, nil
}

// RejectPayment declines a pending payment. The booking returns to
// pending_payment so the customer can resubmit; money fields are untouched.
// Payment and booking rows are written in one transaction.
func (s *VerificationService) RejectPayment(ctx context.Context, operatorID, paymentID uuid.UUID, note string) (*PaymentDTO, error) {
	if operatorID == uuid.Nil {
		return nil, domain.NewValidationError("operator ID is required")
	}

	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status() != paymentDomain.StatusPending {
		return nil, domain.NewInvalidStateError(string(p.Status()), string(paymentDomain.StatusRejected))
	}

	bk, err := s.bookings.FindByID(ctx, p.BookingID())
	if err != nil {
		return nil, err
	}

	// A stale proof can be rejected after the booking moved on (another
	// payment already confirmed it); in that case the booking is left alone.
	bookingChanged := bk.Status() == bookingDomain.StatusWaitingVerification
	if bookingChanged {
		if err := bk.RejectPendingProof(); err != nil {
			return nil, err
		}
		bk.IncrementVersion()
	}
	if err := p.Reject(operatorID, note); err != nil {
		return nil, err
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.payments.Update(ctx, p); err != nil {
			return err
		}
		if bookingChanged {
			return s.bookings.Update(ctx, bk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := events.PaymentRejectedEvent{
		PaymentID:  p.ID(),
		BookingID:  bk.ID(),
		RejectedBy: operatorID,
		Reason:     note,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicPaymentEvents, events.PaymentRejected, p.ID().String(), evt)

	result := toPaymentDTO(p)
	return &result, nil
}

func (s *VerificationService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if err := s.publisher.Publish(ctx, topic, eventType, key, data); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
