package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/application"
	"github.com/nusastay/service-rental/internal/response"
)

// CatalogHandler handles public catalog requests.
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/api/v1/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:slug", h.GetService)
	}
	r.GET("/api/v1/categories", h.ListCategories)
}

// ListServices handles GET /api/v1/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	page, limit := parsePagination(c)

	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid category ID")
			return
		}
		categoryID = &id
	}

	result, err := h.service.ListServices(c.Request.Context(), categoryID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetService handles GET /api/v1/services/:slug.
func (h *CatalogHandler) GetService(c *gin.Context) {
	result, err := h.service.GetServiceBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCategories handles GET /api/v1/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	result, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
