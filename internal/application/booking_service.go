package application

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/domain/catalog"
	"github.com/nusastay/service-rental/internal/events"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceID     uuid.UUID `json:"service_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerPhone string    `json:"customer_phone" binding:"required"`
	CustomerEmail string    `json:"customer_email" binding:"required,email"`
	Notes         string    `json:"notes"`
}

// QuoteRequest asks for a price and availability preview without booking.
type QuoteRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// QuoteDTO is the price and availability preview for a range.
type QuoteDTO struct {
	ServiceID  uuid.UUID `json:"service_id"`
	Unit       string    `json:"unit"`
	UnitPrice  int64     `json:"unit_price"`
	TotalPrice int64     `json:"total_price"`
	Deposit    int64     `json:"deposit"`
	Currency   string    `json:"currency"`
	Available  bool      `json:"available"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID                     `json:"id"`
	BookingNumber    string                        `json:"booking_number"`
	OwnerID          *uuid.UUID                    `json:"owner_id,omitempty"`
	ServiceID        uuid.UUID                     `json:"service_id"`
	Unit             string                        `json:"unit"`
	UnitPrice        int64                         `json:"unit_price"`
	StartTime        time.Time                     `json:"start_time"`
	EndTime          time.Time                     `json:"end_time"`
	TotalPrice       int64                         `json:"total_price"`
	TotalPaid        int64                         `json:"total_paid"`
	RemainingBalance int64                         `json:"remaining_balance"`
	Currency         string                        `json:"currency"`
	Status           string                        `json:"status"`
	PaymentStatus    string                        `json:"payment_status"`
	NextAction       string                        `json:"next_action"`
	ContactAdminURL  string                        `json:"contact_admin_url,omitempty"`
	Customer         bookingDomain.CustomerContact `json:"customer"`
	Notes            string                        `json:"notes,omitempty"`
	CancelNote       string                        `json:"cancel_note,omitempty"`
	CancelledAt      *time.Time                    `json:"cancelled_at,omitempty"`
	Version          int64                         `json:"version"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}

// TicketDTO is the admin's view of a scanned booking ticket.
type TicketDTO struct {
	BookingNumber string    `json:"booking_number"`
	Valid         bool      `json:"valid"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	services  catalog.ServiceRepository
	pricing   bookingDomain.PricingCalculator
	policy    bookingDomain.OverlapPolicy
	publisher EventPublisher
	whatsApp  string
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. adminWhatsApp is the
// operator contact number used for the contact-admin deep link.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	services catalog.ServiceRepository,
	pricing bookingDomain.PricingCalculator,
	policy bookingDomain.OverlapPolicy,
	publisher EventPublisher,
	adminWhatsApp string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		services:  services,
		pricing:   pricing,
		policy:    policy,
		publisher: publisher,
		whatsApp:  adminWhatsApp,
		logger:    logger,
	}
}

// Quote computes the contract price and availability for a range without
// creating anything.
func (s *BookingService) Quote(ctx context.Context, req QuoteRequest) (*QuoteDTO, error) {
	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active() {
		return nil, domain.NewNotFoundError("Service", svc.ID().String())
	}

	total, err := s.pricing.ComputeTotal(svc.Unit(), svc.Price(), req.StartTime, req.EndTime)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	available := true
	if s.policy.RequiresExclusiveUse(svc.Unit()) {
		conflict, err := s.findConflict(ctx, svc.ID(), req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		available = conflict == nil
	}

	return &QuoteDTO{
		ServiceID:  svc.ID(),
		Unit:       string(svc.Unit()),
		UnitPrice:  svc.Price(),
		TotalPrice: total,
		Deposit:    bookingDomain.Deposit(total, bookingDomain.DepositFraction),
		Currency:   domain.CurrencyIDR,
		Available:  available,
	}, nil
}

// CreateBooking creates a new booking for the given owner. ownerID is nil for
// guest bookings taken over the phone by an operator.
func (s *BookingService) CreateBooking(ctx context.Context, ownerID *uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active() {
		return nil, domain.NewNotFoundError("Service", svc.ID().String())
	}

	total, err := s.pricing.ComputeTotal(svc.Unit(), svc.Price(), req.StartTime, req.EndTime)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if total <= 0 {
		return nil, domain.NewValidationError("the selected range is shorter than the minimum billable unit")
	}

	exclusive := s.policy.RequiresExclusiveUse(svc.Unit())
	if exclusive {
		conflict, err := s.findConflict(ctx, svc.ID(), req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, domain.NewConflictError(fmt.Sprintf(
				"the requested range overlaps an existing booking from %s to %s",
				conflict.Start.Format(time.RFC3339), conflict.End.Format(time.RFC3339),
			))
		}
	}

	bk, err := bookingDomain.NewBooking(
		ownerID,
		svc.ID(),
		svc.Unit(),
		svc.Price(),
		req.StartTime,
		req.EndTime,
		total,
		bookingDomain.CustomerContact{
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
			Email: req.CustomerEmail,
		},
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, bk, exclusive); err != nil {
		return nil, err
	}

	evt := events.BookingCreatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		OwnerID:       bk.OwnerID(),
		ServiceID:     bk.ServiceID(),
		StartTime:     bk.StartTime(),
		EndTime:       bk.EndTime(),
		TotalPrice:    bk.TotalPrice(),
		Currency:      domain.CurrencyIDR,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)

	result := s.toBookingDTO(bk)
	return &result, nil
}

// GetOwnerBooking retrieves one booking scoped to its owner. Bookings that
// belong to someone else come back as not-found so their existence never
// leaks.
func (s *BookingService) GetOwnerBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() == nil || *bk.OwnerID() != ownerID {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}
	result := s.toBookingDTO(bk)
	return &result, nil
}

// GetOwnerBookings retrieves paginated bookings for a specific owner.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state. Owners
// may only cancel their own bookings; operators may cancel any.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, cancelledBy uuid.UUID, isOperator bool, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !isOperator {
		if bk.OwnerID() == nil || *bk.OwnerID() != cancelledBy {
			return nil, domain.NewNotFoundError("Booking", bookingID.String())
		}
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CancelledBy:   cancelledBy,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, bk.ID().String(), evt)

	result := s.toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking finalizes a confirmed booking after the stay has ended.
// Driven by the housekeeping consumer, not by any HTTP endpoint.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := s.toBookingDTO(bk)
	return &result, nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// CheckTicket resolves a booking number scanned at the door. Only a confirmed
// booking is a valid ticket.
func (s *BookingService) CheckTicket(ctx context.Context, bookingNumber string) (*TicketDTO, error) {
	bk, err := s.bookings.FindByNumber(ctx, bookingNumber)
	if err != nil {
		return nil, err
	}

	return &TicketDTO{
		BookingNumber: bk.BookingNumber(),
		Valid:         bk.Status() == bookingDomain.StatusConfirmed,
		Status:        string(bk.Status()),
		CustomerName:  bk.Customer().Name,
		StartTime:     bk.StartTime(),
		EndTime:       bk.EndTime(),
	}, nil
}

// --- Helpers ---

func (s *BookingService) findConflict(ctx context.Context, serviceID uuid.UUID, start, end time.Time) (*bookingDomain.Interval, error) {
	existing, err := s.bookings.FindActiveIntervals(ctx, serviceID, start, end)
	if err != nil {
		return nil, err
	}
	return bookingDomain.FindConflict(bookingDomain.Interval{Start: start, End: end}, existing), nil
}

func (s *BookingService) toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	action := bk.NextAction()

	var contactURL string
	if action == bookingDomain.ActionContactAdmin && s.whatsApp != "" {
		msg := fmt.Sprintf("Halo Admin, saya ingin konfirmasi pembayaran untuk booking %s", bk.BookingNumber())
		contactURL = fmt.Sprintf("https://wa.me/%s?text=%s", s.whatsApp, url.QueryEscape(msg))
	}

	return BookingDTO{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		OwnerID:          bk.OwnerID(),
		ServiceID:        bk.ServiceID(),
		Unit:             string(bk.Unit()),
		UnitPrice:        bk.UnitPrice(),
		StartTime:        bk.StartTime(),
		EndTime:          bk.EndTime(),
		TotalPrice:       bk.TotalPrice(),
		TotalPaid:        bk.TotalPaid(),
		RemainingBalance: bk.RemainingBalance(),
		Currency:         domain.CurrencyIDR,
		Status:           string(bk.Status()),
		PaymentStatus:    string(bk.PaymentStatus()),
		NextAction:       string(action),
		ContactAdminURL:  contactURL,
		Customer:         bk.Customer(),
		Notes:            bk.Notes(),
		CancelNote:       bk.CancelNote(),
		CancelledAt:      bk.CancelledAt(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if err := s.publisher.Publish(ctx, topic, eventType, key, data); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
