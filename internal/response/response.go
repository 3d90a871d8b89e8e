package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nusastay/service-rental/internal/domain"
)

// Envelope is the uniform response body for all endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Meta carries pagination fields alongside a paginated payload.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta":    Meta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: msg})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Envelope{Success: false, Error: msg})
}

// Error maps a domain error to its HTTP status code. Unknown errors become
// an opaque 500 so internals never leak to clients.
func Error(c *gin.Context, err error) {
	kind, ok := domain.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation, domain.KindInvalidState:
		status = http.StatusUnprocessableEntity
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	}
	c.JSON(status, Envelope{Success: false, Error: err.Error()})
}
