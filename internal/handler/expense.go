package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
	"roadlines/internal/service"
)

// ExpenseHandler handles HTTP requests for daily expenses.
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest is the HTTP request body for creating or updating an expense.
type ExpenseRequest struct {
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	VehicleNumber string          `json:"vehicle_number"`
	Notes         string          `json:"notes"`
}

// ExpenseResponse is the HTTP response for expense operations.
type ExpenseResponse struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	VehicleNumber string          `json:"vehicle_number,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// CreateExpense handles POST /v1/expenses
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	expense, ok := bindExpense(c)
	if !ok {
		return
	}

	created, err := h.expenseService.CreateExpense(c.Request.Context(), expense)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toExpenseResponse(created))
}

// UpdateExpense handles PUT /v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	expense, ok := bindExpense(c)
	if !ok {
		return
	}

	updated, err := h.expenseService.UpdateExpense(c.Request.Context(), c.Param("id"), expense)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toExpenseResponse(updated))
}

// DeleteExpense handles DELETE /v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListExpenses handles GET /v1/expenses
// Query params: q
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		response = append(response, toExpenseResponse(e))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"expenses": response,
		"count":    len(response),
	})
}

func bindExpense(c *gin.Context) (*domain.Expense, bool) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return nil, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	return &domain.Expense{
		Date:          date,
		Category:      strings.TrimSpace(req.Category),
		Amount:        req.Amount,
		VehicleNumber: strings.TrimSpace(req.VehicleNumber),
		Notes:         req.Notes,
	}, true
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Date:          domain.FormatDate(e.Date),
		Category:      e.Category,
		Amount:        e.Amount,
		VehicleNumber: e.VehicleNumber,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
