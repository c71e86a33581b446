package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// PaymentService handles payment history operations.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	tripRepo    repository.TripRepository
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, tripRepo repository.TripRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		tripRepo:    tripRepo,
		now:         time.Now,
	}
}

// RecordPaymentRequest contains the parameters for recording a payment.
type RecordPaymentRequest struct {
	TripID          string
	Amount          decimal.Decimal
	Mode            domain.PaymentMode
	Type            domain.TransactionType
	TransactionDate time.Time
}

// RecordPayment records a payment against an existing trip. Trip code,
// vehicle and loading date are copied from the trip.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*domain.Payment, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if err := validatePayment(req.Amount, req.Mode, req.Type, req.TransactionDate); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	payment := newPayment(trip, req.Amount, req.Mode, req.Type, req.TransactionDate, s.now().UTC())
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// ListPayments retrieves live payments, most recent first, matching query.
func (s *PaymentService) ListPayments(ctx context.Context, query string) ([]*domain.Payment, error) {
	payments, err := s.paymentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Payment, 0, len(payments))
	for _, p := range payments {
		if p.MatchesQuery(query) {
			matched = append(matched, p)
		}
	}

	return matched, nil
}

// ListTripPayments retrieves the payments of one trip.
func (s *PaymentService) ListTripPayments(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	return s.paymentRepo.ListByTripID(ctx, tripID)
}

// DeletePayment soft-deletes a payment.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	return s.paymentRepo.SoftDelete(ctx, paymentID)
}

func validatePayment(amount decimal.Decimal, mode domain.PaymentMode, txType domain.TransactionType, date time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidPaymentAmount
	}
	if _, ok := domain.ParsePaymentMode(string(mode)); !ok {
		return ErrInvalidPaymentMode
	}
	if _, ok := domain.ParseTransactionType(string(txType)); !ok {
		return ErrInvalidTransactionType
	}
	if date.IsZero() {
		return ErrInvalidTransactionDate
	}
	return nil
}

func newPayment(trip *domain.Trip, amount decimal.Decimal, mode domain.PaymentMode, txType domain.TransactionType, date, now time.Time) *domain.Payment {
	return &domain.Payment{
		ID:              uuid.New().String(),
		TripID:          trip.ID,
		TripCode:        trip.TripCode,
		VehicleNumber:   trip.VehicleNumber,
		LoadingDate:     trip.LoadingDate,
		Amount:          amount,
		Mode:            mode,
		Type:            txType,
		TransactionDate: date,
		CreatedAt:       now,
		FromLocation:    trip.FromLocation,
		ToLocation:      trip.ToLocation,
	}
}
