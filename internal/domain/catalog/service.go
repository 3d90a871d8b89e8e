package catalog

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/domain"
)

// Unit is the billing granularity of a service.
type Unit string

const (
	UnitPerDay  Unit = "per_day"
	UnitPerHour Unit = "per_hour"
)

// IsValid returns true if the unit is recognized.
func (u Unit) IsValid() bool {
	return u == UnitPerDay || u == UnitPerHour
}

// String returns the string representation of the unit.
func (u Unit) String() string { return string(u) }

// ParseUnit converts a string to a Unit, returning an error if invalid.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid unit: %s", s)
	}
	return u, nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service is the aggregate root for a rental catalog entry. Its price and
// unit are snapshotted into bookings at creation, so later catalog edits
// never change the contract price of an existing booking.
type Service struct {
	id             uuid.UUID
	name           string
	slug           string
	description    string
	price          int64
	unit           Unit
	categoryID     *uuid.UUID
	specifications map[string]string
	images         []string
	active         bool
	createdAt      time.Time
	updatedAt      time.Time
}

// NewService creates a new catalog service.
func NewService(
	name, slug, description string,
	price int64,
	unit Unit,
	categoryID *uuid.UUID,
	specifications map[string]string,
	images []string,
) (*Service, error) {
	if name == "" {
		return nil, domain.NewValidationError("service name is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid slug: %q", slug))
	}
	if price < 0 {
		return nil, domain.NewValidationError("service price cannot be negative")
	}
	if !unit.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid unit: %s", unit))
	}

	now := time.Now().UTC()
	return &Service{
		id:             uuid.New(),
		name:           name,
		slug:           slug,
		description:    description,
		price:          price,
		unit:           unit,
		categoryID:     categoryID,
		specifications: specifications,
		images:         images,
		active:         true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructService rebuilds a Service from persistence data (no validation).
func ReconstructService(
	id uuid.UUID,
	name, slug, description string,
	price int64,
	unit Unit,
	categoryID *uuid.UUID,
	specifications map[string]string,
	images []string,
	active bool,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:             id,
		name:           name,
		slug:           slug,
		description:    description,
		price:          price,
		unit:           unit,
		categoryID:     categoryID,
		specifications: specifications,
		images:         images,
		active:         active,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (s *Service) ID() uuid.UUID                      { return s.id }
func (s *Service) Name() string                       { return s.name }
func (s *Service) Slug() string                       { return s.slug }
func (s *Service) Description() string                { return s.description }
func (s *Service) Price() int64                       { return s.price }
func (s *Service) Unit() Unit                         { return s.unit }
func (s *Service) CategoryID() *uuid.UUID             { return s.categoryID }
func (s *Service) Specifications() map[string]string  { return s.specifications }
func (s *Service) Images() []string                   { return s.images }
func (s *Service) Active() bool                       { return s.active }
func (s *Service) CreatedAt() time.Time               { return s.createdAt }
func (s *Service) UpdatedAt() time.Time               { return s.updatedAt }

// UpdateDetails replaces the editable catalog fields.
func (s *Service) UpdateDetails(name, description string, price int64, specifications map[string]string, images []string) error {
	if name == "" {
		return domain.NewValidationError("service name is required")
	}
	if price < 0 {
		return domain.NewValidationError("service price cannot be negative")
	}
	s.name = name
	s.description = description
	s.price = price
	s.specifications = specifications
	s.images = images
	s.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate hides the service from the public catalog.
func (s *Service) Deactivate() {
	s.active = false
	s.updatedAt = time.Now().UTC()
}

// Activate publishes the service on the public catalog.
func (s *Service) Activate() {
	s.active = true
	s.updatedAt = time.Now().UTC()
}
