package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/application"
	"github.com/nusastay/service-rental/internal/auth"
	"github.com/nusastay/service-rental/internal/middleware"
	"github.com/nusastay/service-rental/internal/response"
)

// AdminHandler handles operator-only endpoints: the verification queue,
// booking oversight, ticket scanning and catalog maintenance.
type AdminHandler struct {
	verification *application.VerificationService
	bookings     *application.BookingService
	catalog      *application.CatalogService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	verification *application.VerificationService,
	bookings *application.BookingService,
	catalog *application.CatalogService,
) *AdminHandler {
	return &AdminHandler{
		verification: verification,
		bookings:     bookings,
		catalog:      catalog,
	}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/payments/pending", h.ListPendingPayments)
		admin.POST("/payments/:id/verify", h.VerifyPayment)
		admin.POST("/payments/:id/reject", h.RejectPayment)

		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.BookingStats)
		admin.POST("/bookings", h.CreateGuestBooking)
		admin.POST("/bookings/:id/cancel", h.CancelBooking)

		admin.GET("/tickets/:number", h.CheckTicket)

		admin.POST("/services", h.CreateService)
		admin.PUT("/services/:id", h.UpdateService)
		admin.PATCH("/services/:id/active", h.SetServiceActive)
	}
}

// ListPendingPayments handles GET /api/v1/admin/payments/pending.
func (h *AdminHandler) ListPendingPayments(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.verification.ListPendingPayments(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// VerifyPayment handles POST /api/v1/admin/payments/:id/verify.
func (h *AdminHandler) VerifyPayment(c *gin.Context) {
	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.verification.VerifyPayment(c.Request.Context(), operatorID, paymentID, body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RejectPayment handles POST /api/v1/admin/payments/:id/reject.
func (h *AdminHandler) RejectPayment(c *gin.Context) {
	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.verification.RejectPayment(c.Request.Context(), operatorID, paymentID, body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	result, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateGuestBooking handles POST /api/v1/admin/bookings. Operators book on
// behalf of walk-in or phone customers; such bookings have no owner account.
func (h *AdminHandler) CreateGuestBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), nil, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// CancelBooking handles POST /api/v1/admin/bookings/:id/cancel.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.bookings.CancelBooking(c.Request.Context(), bookingID, operatorID, true, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckTicket handles GET /api/v1/admin/tickets/:number.
func (h *AdminHandler) CheckTicket(c *gin.Context) {
	result, err := h.bookings.CheckTicket(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateService handles POST /api/v1/admin/services.
func (h *AdminHandler) CreateService(c *gin.Context) {
	var req application.UpsertServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.CreateService(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateService handles PUT /api/v1/admin/services/:id.
func (h *AdminHandler) UpdateService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var req application.UpsertServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.UpdateService(c.Request.Context(), serviceID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetServiceActive handles PATCH /api/v1/admin/services/:id/active.
func (h *AdminHandler) SetServiceActive(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.SetServiceActive(c.Request.Context(), serviceID, *body.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
