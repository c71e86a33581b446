package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PODStatus represents whether the proof of delivery for a trip has arrived.
type PODStatus string

const (
	PODStatusPending  PODStatus = "Pending"
	PODStatusReceived PODStatus = "Received"
)

// ParsePODStatus matches s case-insensitively against the known values.
// ok is false for anything unrecognized; the returned status is then Pending.
func ParsePODStatus(s string) (status PODStatus, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "received":
		return PODStatusReceived, true
	case "pending":
		return PODStatusPending, true
	}
	return PODStatusPending, false
}

// NormalizePODStatus decodes a stored value. Unknown values are Pending.
func NormalizePODStatus(s string) PODStatus {
	status, _ := ParsePODStatus(s)
	return status
}

// PaymentStatus represents whether a trip balance has been settled.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// ParsePaymentStatus matches s case-insensitively against the known values.
// ok is false for anything unrecognized; the returned status is then Pending.
func ParsePaymentStatus(s string) (status PaymentStatus, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return PaymentStatusPaid, true
	case "pending":
		return PaymentStatusPending, true
	}
	return PaymentStatusPending, false
}

// NormalizePaymentStatus decodes a stored value. Unknown values are Pending.
func NormalizePaymentStatus(s string) PaymentStatus {
	status, _ := ParsePaymentStatus(s)
	return status
}

// Trip is a single haulage job.
//
// Gaadi* amounts are owner-side (what the business pays the motor owner),
// Party* amounts are what the party is billed. Any amount may be absent.
type Trip struct {
	ID            string
	TripCode      string
	LoadingDate   time.Time
	UnloadingDate time.Time // zero when the trip has not been unloaded
	FromLocation  string
	ToLocation    string

	VehicleNumber    string
	DriverNumber     string
	MotorOwnerName   string
	MotorOwnerNumber string
	PartyName        string
	PartyNumber      string

	GaadiFreight decimal.NullDecimal
	GaadiAdvance decimal.NullDecimal
	GaadiBalance decimal.NullDecimal
	PartyFreight decimal.NullDecimal
	PartyAdvance decimal.NullDecimal
	PartyBalance decimal.NullDecimal
	TDS          decimal.NullDecimal
	Himmali      decimal.NullDecimal
	Profit       decimal.NullDecimal
	Weight       decimal.NullDecimal

	Remark             string
	PODStatus          PODStatus
	PaymentStatus      PaymentStatus
	GaadiBalanceStatus PaymentStatus
	PODURLs            []string
	IsDeleted          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unloaded reports whether an unloading date has been recorded.
func (t *Trip) Unloaded() bool {
	return !t.UnloadingDate.IsZero()
}

// TripFilter narrows trip listings. Empty fields match everything.
type TripFilter struct {
	Query         string
	Vehicle       string
	PaymentStatus PaymentStatus
	PODStatus     PODStatus
}

// Matches applies the filter to a trip. Text matching is case-insensitive.
func (f TripFilter) Matches(t *Trip) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		fields := []string{t.VehicleNumber, t.PartyName, t.MotorOwnerName, t.FromLocation, t.ToLocation, t.TripCode}
		found := false
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if v := strings.ToLower(strings.TrimSpace(f.Vehicle)); v != "" && !strings.Contains(strings.ToLower(t.VehicleNumber), v) {
		return false
	}
	if f.PaymentStatus != "" && t.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.PODStatus != "" && t.PODStatus != f.PODStatus {
		return false
	}
	return true
}
