package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
	"github.com/nusastay/service-rental/internal/domain/catalog"
)

// ServiceDTO is the response representation of a catalog service.
type ServiceDTO struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description,omitempty"`
	Price          int64             `json:"price"`
	Unit           string            `json:"unit"`
	Currency       string            `json:"currency"`
	CategoryID     *uuid.UUID        `json:"category_id,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Images         []string          `json:"images,omitempty"`
	Active         bool              `json:"active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// UpsertServiceRequest carries the fields an operator can set on a service.
type UpsertServiceRequest struct {
	Name           string            `json:"name" binding:"required"`
	Slug           string            `json:"slug" binding:"required"`
	Description    string            `json:"description"`
	Price          int64             `json:"price" binding:"min=0"`
	Unit           string            `json:"unit" binding:"required,billing_unit"`
	CategoryID     *uuid.UUID        `json:"category_id"`
	Specifications map[string]string `json:"specifications"`
	Images         []string          `json:"images"`
}

// CatalogService serves the public catalog and its admin maintenance.
type CatalogService struct {
	services   catalog.ServiceRepository
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	services catalog.ServiceRepository,
	categories catalog.CategoryRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{services: services, categories: categories, logger: logger}
}

// ListServices returns active services, optionally filtered by category.
func (s *CatalogService) ListServices(ctx context.Context, categoryID *uuid.UUID, page, limit int) (*domain.PaginatedResult[ServiceDTO], error) {
	services, total, err := s.services.ListActive(ctx, categoryID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]ServiceDTO, len(services))
	for i, svc := range services {
		dtos[i] = toServiceDTO(svc)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetServiceBySlug returns one service by its URL slug. Inactive services are
// hidden from the public catalog.
func (s *CatalogService) GetServiceBySlug(ctx context.Context, slug string) (*ServiceDTO, error) {
	svc, err := s.services.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !svc.Active() {
		return nil, domain.NewNotFoundError("Service", slug)
	}
	result := toServiceDTO(svc)
	return &result, nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.ListAll(ctx)
}

// --- Admin methods ---

// CreateService adds a new catalog entry (admin).
func (s *CatalogService) CreateService(ctx context.Context, req UpsertServiceRequest) (*ServiceDTO, error) {
	unit, err := catalog.ParseUnit(req.Unit)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	svc, err := catalog.NewService(
		req.Name,
		req.Slug,
		req.Description,
		req.Price,
		unit,
		req.CategoryID,
		req.Specifications,
		req.Images,
	)
	if err != nil {
		return nil, err
	}

	if err := s.services.Save(ctx, svc); err != nil {
		return nil, err
	}

	s.logger.Info("service created",
		zap.String("service_id", svc.ID().String()),
		zap.String("slug", svc.Slug()),
	)

	result := toServiceDTO(svc)
	return &result, nil
}

// UpdateService edits an existing catalog entry (admin). Price edits never
// touch existing bookings: their rates were snapshotted at creation.
func (s *CatalogService) UpdateService(ctx context.Context, serviceID uuid.UUID, req UpsertServiceRequest) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if err := svc.UpdateDetails(req.Name, req.Description, req.Price, req.Specifications, req.Images); err != nil {
		return nil, err
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}

	result := toServiceDTO(svc)
	return &result, nil
}

// SetServiceActive publishes or hides a catalog entry (admin).
func (s *CatalogService) SetServiceActive(ctx context.Context, serviceID uuid.UUID, active bool) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if active {
		svc.Activate()
	} else {
		svc.Deactivate()
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}

	result := toServiceDTO(svc)
	return &result, nil
}

func toServiceDTO(svc *catalog.Service) ServiceDTO {
	return ServiceDTO{
		ID:             svc.ID(),
		Name:           svc.Name(),
		Slug:           svc.Slug(),
		Description:    svc.Description(),
		Price:          svc.Price(),
		Unit:           string(svc.Unit()),
		Currency:       domain.CurrencyIDR,
		CategoryID:     svc.CategoryID(),
		Specifications: svc.Specifications(),
		Images:         svc.Images(),
		Active:         svc.Active(),
		CreatedAt:      svc.CreatedAt(),
		UpdatedAt:      svc.UpdatedAt(),
	}
}
