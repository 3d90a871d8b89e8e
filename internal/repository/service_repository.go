package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nusastay/service-rental/internal/domain"
	"github.com/nusastay/service-rental/internal/domain/catalog"
)

// ServiceModel is the GORM model for the services table.
type ServiceModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"not null;size:200"`
	Slug           string          `gorm:"uniqueIndex;not null;size:200"`
	Description    string          `gorm:"type:text"`
	Price          int64           `gorm:"not null"`
	Unit           string          `gorm:"not null;size:20"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index"`
	Specifications json.RawMessage `gorm:"type:jsonb"`
	Images         json.RawMessage `gorm:"type:jsonb"`
	Active         bool            `gorm:"not null;default:true;index"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// CategoryModel is the GORM model for the categories table.
type CategoryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;size:100"`
	Slug      string    `gorm:"uniqueIndex;not null;size:100"`
	Icon      string    `gorm:"size:100"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CategoryModel) TableName() string {
	return "categories"
}

// GormServiceRepository is the GORM-based implementation of ServiceRepository.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository.
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID retrieves a service by its unique identifier.
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return toDomainService(&model)
}

// FindBySlug retrieves a service by its URL slug.
func (r *GormServiceRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", slug)
		}
		return nil, fmt.Errorf("failed to find service by slug: %w", err)
	}
	return toDomainService(&model)
}

// ListActive retrieves active services, optionally filtered by category.
func (r *GormServiceRepository) ListActive(ctx context.Context, categoryID *uuid.UUID, page, limit int) ([]*catalog.Service, int64, error) {
	query := r.db.WithContext(ctx).Model(&ServiceModel{}).Where("active = ?", true)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	var models []ServiceModel
	offset := (page - 1) * limit
	if err := query.
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}

	services := make([]*catalog.Service, len(models))
	for i, m := range models {
		svc, err := toDomainService(&m)
		if err != nil {
			return nil, 0, err
		}
		services[i] = svc
	}
	return services, total, nil
}

// Save persists a new service.
func (r *GormServiceRepository) Save(ctx context.Context, svc *catalog.Service) error {
	model, err := toServiceModel(svc)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

// Update persists changes to an existing service.
func (r *GormServiceRepository) Update(ctx context.Context, svc *catalog.Service) error {
	model, err := toServiceModel(svc)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"description":    model.Description,
			"price":          model.Price,
			"specifications": model.Specifications,
			"images":         model.Images,
			"active":         model.Active,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", model.ID.String())
	}
	return nil
}

// GormCategoryRepository is the GORM-based implementation of CategoryRepository.
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository.
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ListAll retrieves all categories ordered by name.
func (r *GormCategoryRepository) ListAll(ctx context.Context) ([]catalog.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]catalog.Category, len(models))
	for i, m := range models {
		categories[i] = catalog.Category{
			ID:        m.ID,
			Name:      m.Name,
			Slug:      m.Slug,
			Icon:      m.Icon,
			CreatedAt: m.CreatedAt,
		}
	}
	return categories, nil
}

// --- Conversion Helpers ---

func toServiceModel(svc *catalog.Service) (*ServiceModel, error) {
	specsJSON, err := json.Marshal(svc.Specifications())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal specifications: %w", err)
	}
	imagesJSON, err := json.Marshal(svc.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}

	return &ServiceModel{
		ID:             svc.ID(),
		Name:           svc.Name(),
		Slug:           svc.Slug(),
		Description:    svc.Description(),
		Price:          svc.Price(),
		Unit:           string(svc.Unit()),
		CategoryID:     svc.CategoryID(),
		Specifications: specsJSON,
		Images:         imagesJSON,
		Active:         svc.Active(),
		CreatedAt:      svc.CreatedAt(),
		UpdatedAt:      svc.UpdatedAt(),
	}, nil
}

func toDomainService(m *ServiceModel) (*catalog.Service, error) {
	var specs map[string]string
	if len(m.Specifications) > 0 {
		if err := json.Unmarshal(m.Specifications, &specs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal specifications: %w", err)
		}
	}

	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}

	unit, err := catalog.ParseUnit(m.Unit)
	if err != nil {
		return nil, err
	}

	return catalog.ReconstructService(
		m.ID,
		m.Name,
		m.Slug,
		m.Description,
		m.Price,
		unit,
		m.CategoryID,
		specs,
		images,
		m.Active,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
