package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is how money changed hands.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeBank   PaymentMode = "Bank"
	PaymentModeUPI    PaymentMode = "UPI"
	PaymentModeCheque PaymentMode = "Cheque"
)

// ParsePaymentMode matches s case-insensitively.
func ParsePaymentMode(s string) (PaymentMode, bool) {
	for _, m := range []PaymentMode{PaymentModeCash, PaymentModeBank, PaymentModeUPI, PaymentModeCheque} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, true
		}
	}
	return "", false
}

// TransactionType is the direction of a payment relative to the business.
type TransactionType string

const (
	TransactionCredit TransactionType = "Credit"
	TransactionDebit  TransactionType = "Debit"
)

// ParseTransactionType matches s case-insensitively.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit":
		return TransactionCredit, true
	case "debit":
		return TransactionDebit, true
	}
	return "", false
}

// Payment is one entry in a trip's payment history.
// TripCode, VehicleNumber and LoadingDate are copied from the trip when recorded.
type Payment struct {
	ID              string
	TripID          string
	TripCode        string
	VehicleNumber   string
	LoadingDate     time.Time
	Amount          decimal.Decimal
	Mode            PaymentMode
	Type            TransactionType
	TransactionDate time.Time
	IsDeleted       bool
	CreatedAt       time.Time

	// Route of the linked trip, filled on listing.
	FromLocation string
	ToLocation   string
}

// MatchesQuery reports whether q appears in the vehicle, trip code or mode.
func (p *Payment) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.VehicleNumber), q) ||
		strings.Contains(strings.ToLower(p.TripCode), q) ||
		strings.Contains(strings.ToLower(string(p.Mode)), q)
}
