package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSnapshot is the set of KPIs derived from all live trips.
type DashboardSnapshot struct {
	TotalTrips      int
	TotalFreight    decimal.Decimal // party-side freight
	TotalBhada      decimal.Decimal // owner-side freight
	PendingPOD      int
	PendingPayments int
	BalanceDue      decimal.Decimal // party-side balance
	Payable         decimal.Decimal // owner-side balance
	MonthlyProfit   decimal.Decimal
	ComputedAt      time.Time
}
