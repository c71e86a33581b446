package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
	"roadlines/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest is the HTTP request body for recording a payment.
type RecordPaymentRequest struct {
	TripID          string          `json:"trip_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"payment_type"` // Cash, Bank, UPI, Cheque
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID              string          `json:"id"`
	TripID          string          `json:"trip_id"`
	TripCode        string          `json:"trip_code"`
	VehicleNumber   string          `json:"vehicle_number"`
	LoadingDate     string          `json:"loading_date,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"payment_type"`
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
	FromLocation    string          `json:"from_location,omitempty"`
	ToLocation      string          `json:"to_location,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

// RecordPayment handles POST /v1/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.TripID == "" {
		badRequest(c, "trip_id is required")
		return
	}

	mode, ok := domain.ParsePaymentMode(req.PaymentType)
	if !ok {
		respondError(c, service.ErrInvalidPaymentMode)
		return
	}
	txType, ok := domain.ParseTransactionType(req.TransactionType)
	if !ok {
		respondError(c, service.ErrInvalidTransactionType)
		return
	}
	date, err := parseDate(req.TransactionDate)
	if err != nil {
		respondError(c, err)
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), service.RecordPaymentRequest{
		TripID:          req.TripID,
		Amount:          req.Amount,
		Mode:            mode,
		Type:            txType,
		TransactionDate: date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// ListPayments handles GET /v1/payments
// Query params: q
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"payments": toPaymentResponses(payments),
		"count":    len(payments),
	})
}

// DeletePayment handles DELETE /v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.paymentService.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		TripID:          p.TripID,
		TripCode:        p.TripCode,
		VehicleNumber:   p.VehicleNumber,
		LoadingDate:     domain.FormatDate(p.LoadingDate),
		Amount:          p.Amount,
		PaymentType:     string(p.Mode),
		TransactionType: string(p.Type),
		TransactionDate: domain.FormatDate(p.TransactionDate),
		FromLocation:    p.FromLocation,
		ToLocation:      p.ToLocation,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}
	return response
}
