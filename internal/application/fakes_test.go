package application

import (
	"context"
	"io"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/domain"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/domain/catalog"
	paymentDomain "github.com/nusastay/service-rental/internal/domain/payment"
)

// --- booking repository fake ---

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var owned []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.OwnerID() != nil && *bk.OwnerID() == ownerID {
			owned = append(owned, bk)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt().After(owned[j].CreatedAt())
	})
	return owned, int64(len(owned)), nil
}

func (r *fakeBookingRepo) FindActiveIntervals(_ context.Context, serviceID uuid.UUID, from, to time.Time) ([]bookingDomain.Interval, error) {
	window := bookingDomain.Interval{Start: from, End: to}
	var intervals []bookingDomain.Interval
	for _, bk := range r.bookings {
		if bk.ServiceID() != serviceID || bk.Status() == bookingDomain.StatusCancelled {
			continue
		}
		if bk.Interval().Overlaps(window) {
			intervals = append(intervals, bk.Interval())
		}
	}
	return intervals, nil
}

func (r *fakeBookingRepo) Create(_ context.Context, bk *bookingDomain.Booking, exclusive bool) error {
	if exclusive {
		for _, existing := range r.bookings {
			if existing.ServiceID() != bk.ServiceID() || existing.Status() == bookingDomain.StatusCancelled {
				continue
			}
			if existing.Interval().Overlaps(bk.Interval()) {
				return domain.NewConflictError("the requested range is no longer available")
			}
		}
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, bk)
	}
	return all, int64(len(all)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

// --- service repository fake ---

type fakeServiceRepo struct {
	services map[uuid.UUID]*catalog.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[uuid.UUID]*catalog.Service)}
}

func (r *fakeServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, domain.NewNotFoundError("Service", id.String())
	}
	return svc, nil
}

func (r *fakeServiceRepo) FindBySlug(_ context.Context, slug string) (*catalog.Service, error) {
	for _, svc := range r.services {
		if svc.Slug() == slug {
			return svc, nil
		}
	}
	return nil, domain.NewNotFoundError("Service", slug)
}

func (r *fakeServiceRepo) ListActive(_ context.Context, categoryID *uuid.UUID, page, limit int) ([]*catalog.Service, int64, error) {
	var active []*catalog.Service
	for _, svc := range r.services {
		if !svc.Active() {
			continue
		}
		if categoryID != nil && (svc.CategoryID() == nil || *svc.CategoryID() != *categoryID) {
			continue
		}
		active = append(active, svc)
	}
	return active, int64(len(active)), nil
}

func (r *fakeServiceRepo) Save(_ context.Context, svc *catalog.Service) error {
	r.services[svc.ID()] = svc
	return nil
}

func (r *fakeServiceRepo) Update(_ context.Context, svc *catalog.Service) error {
	if _, ok := r.services[svc.ID()]; !ok {
		return domain.NewNotFoundError("Service", svc.ID().String())
	}
	r.services[svc.ID()] = svc
	return nil
}

// --- payment repository fake ---

type fakePaymentRepo struct {
	payments map[uuid.UUID]*paymentDomain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*paymentDomain.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*paymentDomain.Payment, error) {
	var result []*paymentDomain.Payment
	for _, p := range r.payments {
		if p.BookingID() == bookingID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

func (r *fakePaymentRepo) ListByStatus(_ context.Context, status paymentDomain.PaymentStatus, page, limit int) ([]*paymentDomain.Payment, int64, error) {
	var result []*paymentDomain.Payment
	for _, p := range r.payments {
		if p.Status() == status {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, int64(len(result)), nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *paymentDomain.Payment) error {
	r.payments[p.ID()] = p
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *paymentDomain.Payment) error {
	if _, ok := r.payments[p.ID()]; !ok {
		return domain.NewNotFoundError("Payment", p.ID().String())
	}
	r.payments[p.ID()] = p
	return nil
}

// --- transactor fake ---

// fakeTransactor runs the function directly; the in-memory repositories have
// nothing to roll back.
type fakeTransactor struct{}

func (fakeTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- event publisher fake ---

type publishedEvent struct {
	Topic string
	Type  string
	Key   string
	Data  interface{}
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic, eventType, key string, data interface{}) error {
	p.events = append(p.events, publishedEvent{Topic: topic, Type: eventType, Key: key, Data: data})
	return nil
}

func (p *fakePublisher) typesOn(topic string) []string {
	var types []string
	for _, e := range p.events {
		if e.Topic == topic {
			types = append(types, e.Type)
		}
	}
	return types
}

// --- proof store fake ---

type fakeProofStore struct {
	stored []string
}

func (s *fakeProofStore) Store(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	full := path.Join("receipts", objectPath)
	s.stored = append(s.stored, full)
	return full, nil
}
