package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nusastay/service-rental/internal/application"
	"github.com/nusastay/service-rental/internal/auth"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/middleware"
	"github.com/nusastay/service-rental/internal/response"
)

// maxProofSize caps payment proof uploads at 5 MiB.
const maxProofSize = 5 << 20

// PaymentHandler handles payment proof submission and history.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/api/v1/bookings/:id/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager))
	{
		payments.POST("", h.SubmitPayment)
		payments.GET("", h.ListPayments)
	}
}

// SubmitPayment handles POST /api/v1/bookings/:id/payments. The request is
// multipart: an "option" field (full or deposit), a "payment_type" channel
// label (e.g. bca_manual), and a "proof" file.
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	option := bookingDomain.PaymentOption(c.PostForm("option"))
	if !option.IsValid() {
		response.BadRequest(c, "option must be full or deposit")
		return
	}

	paymentType := c.PostForm("payment_type")
	if paymentType == "" {
		response.BadRequest(c, "payment_type is required")
		return
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		response.BadRequest(c, "proof file is required")
		return
	}
	if fileHeader.Size > maxProofSize {
		response.BadRequest(c, "proof file exceeds 5MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read proof file")
		return
	}
	defer file.Close()

	result, err := h.service.SubmitPayment(c.Request.Context(), userID, application.SubmitPaymentRequest{
		BookingID:   bookingID,
		Option:      option,
		PaymentType: paymentType,
		Proof:       file,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPayments handles GET /api/v1/bookings/:id/payments.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.ListBookingPayments(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
