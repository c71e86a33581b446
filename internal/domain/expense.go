package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a day-to-day business expense, optionally tied to a vehicle.
type Expense struct {
	ID            string
	Date          time.Time
	Category      string
	Amount        decimal.Decimal
	VehicleNumber string
	Notes         string
	CreatedAt     time.Time
}

// MatchesQuery reports whether q appears in the category, vehicle or notes.
func (e *Expense) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Category), q) ||
		strings.Contains(strings.ToLower(e.VehicleNumber), q) ||
		strings.Contains(strings.ToLower(e.Notes), q)
}
