package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadlines/internal/repository"
	"roadlines/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	_ = c.Error(err)
	if code == http.StatusInternalServerError {
		log.Printf("request failed: method=%s path=%s err=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// badRequest sends a 400 with a fixed message.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidTripCode),
		errors.Is(err, service.ErrInvalidVehicleNumber),
		errors.Is(err, service.ErrInvalidLoadingDate),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnloadingBeforeLoading),
		errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPODURL),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidPaymentMode),
		errors.Is(err, service.ErrInvalidTransactionType),
		errors.Is(err, service.ErrInvalidTransactionDate),
		errors.Is(err, service.ErrInvalidExpenseID),
		errors.Is(err, service.ErrInvalidExpense),
		errors.Is(err, service.ErrInvalidMasterKind),
		errors.Is(err, service.ErrInvalidDeviceToken),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized

	// Service unavailable
	case errors.Is(err, service.ErrSnapshotNotReady):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
