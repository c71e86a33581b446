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

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService    *service.TripService
	paymentService *service.PaymentService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, paymentService *service.PaymentService) *TripHandler {
	return &TripHandler{
		tripService:    tripService,
		paymentService: paymentService,
	}
}

// TripRequest is the HTTP request body for creating or updating a trip.
// Amounts may be sent as JSON numbers or strings; dates are YYYY-MM-DD.
type TripRequest struct {
	TripCode      string `json:"trip_code"`
	LoadingDate   string `json:"loading_date"`
	UnloadingDate string `json:"unloading_date,omitempty"`
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`

	VehicleNumber    string `json:"vehicle_number"`
	DriverNumber     string `json:"driver_number"`
	MotorOwnerName   string `json:"motor_owner_name"`
	MotorOwnerNumber string `json:"motor_owner_number"`
	PartyName        string `json:"party_name"`
	PartyNumber      string `json:"party_number"`

	GaadiFreight decimal.NullDecimal `json:"gaadi_freight"`
	GaadiAdvance decimal.NullDecimal `json:"gaadi_advance"`
	GaadiBalance decimal.NullDecimal `json:"gaadi_balance"`
	PartyFreight decimal.NullDecimal `json:"party_freight"`
	PartyAdvance decimal.NullDecimal `json:"party_advance"`
	PartyBalance decimal.NullDecimal `json:"party_balance"`
	TDS          decimal.NullDecimal `json:"tds"`
	Himmali      decimal.NullDecimal `json:"himmali"`
	Profit       decimal.NullDecimal `json:"profit"`
	Weight       decimal.NullDecimal `json:"weight"`

	Remark             string `json:"remark"`
	PODStatus          string `json:"pod_status"`
	PaymentStatus      string `json:"payment_status"`
	GaadiBalanceStatus string `json:"gaadi_balance_status"`

	// Only read on create.
	InitialPayment *InitialPaymentRequest `json:"initial_payment,omitempty"`
}

// InitialPaymentRequest is a payment entered together with a new trip.
type InitialPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"payment_type"`
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
}

// AttachPODRequest is the HTTP request body for POD uploads.
type AttachPODRequest struct {
	URLs []string `json:"urls"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID            string `json:"id"`
	TripCode      string `json:"trip_code"`
	LoadingDate   string `json:"loading_date"`
	UnloadingDate string `json:"unloading_date,omitempty"`
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`

	VehicleNumber    string `json:"vehicle_number"`
	DriverNumber     string `json:"driver_number"`
	MotorOwnerName   string `json:"motor_owner_name"`
	MotorOwnerNumber string `json:"motor_owner_number"`
	PartyName        string `json:"party_name"`
	PartyNumber      string `json:"party_number"`

	GaadiFreight decimal.NullDecimal `json:"gaadi_freight"`
	GaadiAdvance decimal.NullDecimal `json:"gaadi_advance"`
	GaadiBalance decimal.NullDecimal `json:"gaadi_balance"`
	PartyFreight decimal.NullDecimal `json:"party_freight"`
	PartyAdvance decimal.NullDecimal `json:"party_advance"`
	PartyBalance decimal.NullDecimal `json:"party_balance"`
	TDS          decimal.NullDecimal `json:"tds"`
	Himmali      decimal.NullDecimal `json:"himmali"`
	Profit       decimal.NullDecimal `json:"profit"`
	Weight       decimal.NullDecimal `json:"weight"`

	Remark             string   `json:"remark"`
	PODStatus          string   `json:"pod_status"`
	PaymentStatus      string   `json:"payment_status"`
	GaadiBalanceStatus string   `json:"gaadi_balance_status"`
	PODURLs            []string `json:"pod_urls"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	Payment *PaymentResponse `json:"payment,omitempty"`
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	trip, err := req.toTrip()
	if err != nil {
		respondError(c, err)
		return
	}

	create := service.CreateTripRequest{Trip: trip}
	if req.InitialPayment != nil {
		initial, err := req.InitialPayment.toInitialPayment()
		if err != nil {
			respondError(c, err)
			return
		}
		create.InitialPayment = initial
	}

	result, err := h.tripService.CreateTrip(c.Request.Context(), create)
	if err != nil {
		respondError(c, err)
		return
	}

	response := toTripResponse(result.Trip)
	if result.Payment != nil {
		payment := toPaymentResponse(result.Payment)
		response.Payment = &payment
	}

	respondJSON(c, http.StatusCreated, response)
}

// UpdateTrip handles PUT /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	changes, err := req.toTrip()
	if err != nil {
		respondError(c, err)
		return
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ListTrips handles GET /v1/trips
// Query params: q, vehicle, payment_status, pod_status
func (h *TripHandler) ListTrips(c *gin.Context) {
	filter := domain.TripFilter{
		Query:   c.Query("q"),
		Vehicle: c.Query("vehicle"),
	}
	if s := c.Query("payment_status"); s != "" {
		status, ok := domain.ParsePaymentStatus(s)
		if !ok {
			respondError(c, service.ErrInvalidStatus)
			return
		}
		filter.PaymentStatus = status
	}
	if s := c.Query("pod_status"); s != "" {
		status, ok := domain.ParsePODStatus(s)
		if !ok {
			respondError(c, service.ErrInvalidStatus)
			return
		}
		filter.PODStatus = status
	}

	trips, err := h.tripService.ListTrips(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"trips": response,
		"count": len(response),
	})
}

// DeleteTrip handles DELETE /v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.tripService.DeleteTrip(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AttachPOD handles POST /v1/trips/:id/pod
func (h *TripHandler) AttachPOD(c *gin.Context) {
	var req AttachPODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	trip, err := h.tripService.AttachPOD(c.Request.Context(), c.Param("id"), req.URLs)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ListTripPayments handles GET /v1/trips/:id/payments
func (h *TripHandler) ListTripPayments(c *gin.Context) {
	payments, err := h.paymentService.ListTripPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"payments": toPaymentResponses(payments),
		"count":    len(payments),
	})
}

func (r *TripRequest) toTrip() (*domain.Trip, error) {
	loading, err := parseDate(r.LoadingDate)
	if err != nil {
		return nil, err
	}
	unloading, err := parseDate(r.UnloadingDate)
	if err != nil {
		return nil, err
	}

	podStatus, err := parseStatus(r.PODStatus, domain.ParsePODStatus)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := parseStatus(r.PaymentStatus, domain.ParsePaymentStatus)
	if err != nil {
		return nil, err
	}
	gaadiBalanceStatus, err := parseStatus(r.GaadiBalanceStatus, domain.ParsePaymentStatus)
	if err != nil {
		return nil, err
	}

	return &domain.Trip{
		TripCode:           strings.TrimSpace(r.TripCode),
		LoadingDate:        loading,
		UnloadingDate:      unloading,
		FromLocation:       strings.TrimSpace(r.FromLocation),
		ToLocation:         strings.TrimSpace(r.ToLocation),
		VehicleNumber:      strings.TrimSpace(r.VehicleNumber),
		DriverNumber:       strings.TrimSpace(r.DriverNumber),
		MotorOwnerName:     strings.TrimSpace(r.MotorOwnerName),
		MotorOwnerNumber:   strings.TrimSpace(r.MotorOwnerNumber),
		PartyName:          strings.TrimSpace(r.PartyName),
		PartyNumber:        strings.TrimSpace(r.PartyNumber),
		GaadiFreight:       r.GaadiFreight,
		GaadiAdvance:       r.GaadiAdvance,
		GaadiBalance:       r.GaadiBalance,
		PartyFreight:       r.PartyFreight,
		PartyAdvance:       r.PartyAdvance,
		PartyBalance:       r.PartyBalance,
		TDS:                r.TDS,
		Himmali:            r.Himmali,
		Profit:             r.Profit,
		Weight:             r.Weight,
		Remark:             r.Remark,
		PODStatus:          podStatus,
		PaymentStatus:      paymentStatus,
		GaadiBalanceStatus: gaadiBalanceStatus,
	}, nil
}

func (r *InitialPaymentRequest) toInitialPayment() (*service.InitialPayment, error) {
	mode, ok := domain.ParsePaymentMode(r.PaymentType)
	if !ok {
		return nil, service.ErrInvalidPaymentMode
	}
	txType, ok := domain.ParseTransactionType(r.TransactionType)
	if !ok {
		return nil, service.ErrInvalidTransactionType
	}
	date, err := parseDate(r.TransactionDate)
	if err != nil {
		return nil, err
	}

	return &service.InitialPayment{
		Amount:          r.Amount,
		Mode:            mode,
		Type:            txType,
		TransactionDate: date,
	}, nil
}

// parseDate parses an optional YYYY-MM-DD value. Empty input is the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, service.ErrInvalidDate
	}
	return t, nil
}

// parseStatus accepts an empty status (the default applies) or a known value.
func parseStatus[S ~string](s string, parse func(string) (S, bool)) (S, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	status, ok := parse(s)
	if !ok {
		return "", service.ErrInvalidStatus
	}
	return status, nil
}

func toTripResponse(t *domain.Trip) TripResponse {
	urls := t.PODURLs
	if urls == nil {
		urls = []string{}
	}

	return TripResponse{
		ID:                 t.ID,
		TripCode:           t.TripCode,
		LoadingDate:        domain.FormatDate(t.LoadingDate),
		UnloadingDate:      domain.FormatDate(t.UnloadingDate),
		FromLocation:       t.FromLocation,
		ToLocation:         t.ToLocation,
		VehicleNumber:      t.VehicleNumber,
		DriverNumber:       t.DriverNumber,
		MotorOwnerName:     t.MotorOwnerName,
		MotorOwnerNumber:   t.MotorOwnerNumber,
		PartyName:          t.PartyName,
		PartyNumber:        t.PartyNumber,
		GaadiFreight:       t.GaadiFreight,
		GaadiAdvance:       t.GaadiAdvance,
		GaadiBalance:       t.GaadiBalance,
		PartyFreight:       t.PartyFreight,
		PartyAdvance:       t.PartyAdvance,
		PartyBalance:       t.PartyBalance,
		TDS:                t.TDS,
		Himmali:            t.Himmali,
		Profit:             t.Profit,
		Weight:             t.Weight,
		Remark:             t.Remark,
		PODStatus:          string(t.PODStatus),
		PaymentStatus:      string(t.PaymentStatus),
		GaadiBalanceStatus: string(t.GaadiBalanceStatus),
		PODURLs:            urls,
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          t.UpdatedAt.Format(time.RFC3339),
	}
}
