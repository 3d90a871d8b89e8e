package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines the persistence contract for catalog services.
type ServiceRepository interface {
	// FindByID retrieves a service by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)

	// FindBySlug retrieves a service by its URL slug.
	FindBySlug(ctx context.Context, slug string) (*Service, error)

	// ListActive retrieves active services, optionally filtered by category,
	// with pagination.
	ListActive(ctx context.Context, categoryID *uuid.UUID, page, limit int) ([]*Service, int64, error)

	// Save persists a new service.
	Save(ctx context.Context, svc *Service) error

	// Update persists changes to an existing service.
	Update(ctx context.Context, svc *Service) error
}

// CategoryRepository defines the persistence contract for categories.
type CategoryRepository interface {
	ListAll(ctx context.Context) ([]Category, error)
}
