package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

func newPaymentFixture() (*PaymentService, *MockTripRepository, *MockPaymentRepository) {
	trips := NewMockTripRepository()
	payments := NewMockPaymentRepository()
	trips.AddTrip(&domain.Trip{
		ID:            "trip-1",
		TripCode:      "RL-1001",
		VehicleNumber: "MH12AB1234",
		LoadingDate:   date("2026-10-10"),
		FromLocation:  "Pune",
		ToLocation:    "Surat",
	})

	s := NewPaymentService(payments, trips)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return s, trips, payments
}

func TestPaymentService_RecordPayment(t *testing.T) {
	t.Parallel()

	s, _, payments := newPaymentFixture()

	payment, err := s.RecordPayment(context.Background(), RecordPaymentRequest{
		TripID:          "trip-1",
		Amount:          decimal.RequireFromString("2500.50"),
		Mode:            domain.PaymentModeBank,
		Type:            domain.TransactionDebit,
		TransactionDate: date("2026-10-12"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.TripCode != "RL-1001" || payment.VehicleNumber != "MH12AB1234" || payment.FromLocation != "Pune" {
		t.Errorf("expected trip fields copied, got %+v", payment)
	}
	if payments.CountPayments() != 1 {
		t.Errorf("expected 1 payment, got %d", payments.CountPayments())
	}
}

func TestPaymentService_RecordPaymentValidation(t *testing.T) {
	t.Parallel()

	base := RecordPaymentRequest{
		TripID:          "trip-1",
		Amount:          decimal.NewFromInt(100),
		Mode:            domain.PaymentModeCash,
		Type:            domain.TransactionCredit,
		TransactionDate: date("2026-10-12"),
	}

	tests := []struct {
		name   string
		mutate func(*RecordPaymentRequest)
		want   error
	}{
		{"missing trip", func(r *RecordPaymentRequest) { r.TripID = "" }, ErrInvalidTripID},
		{"zero amount", func(r *RecordPaymentRequest) { r.Amount = decimal.Zero }, ErrInvalidPaymentAmount},
		{"negative amount", func(r *RecordPaymentRequest) { r.Amount = decimal.NewFromInt(-5) }, ErrInvalidPaymentAmount},
		{"unknown mode", func(r *RecordPaymentRequest) { r.Mode = "Crypto" }, ErrInvalidPaymentMode},
		{"unknown type", func(r *RecordPaymentRequest) { r.Type = "Refund" }, ErrInvalidTransactionType},
		{"missing date", func(r *RecordPaymentRequest) { r.TransactionDate = time.Time{} }, ErrInvalidTransactionDate},
		{"unknown trip", func(r *RecordPaymentRequest) { r.TripID = "nope" }, repository.ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newPaymentFixture()
			req := base
			tt.mutate(&req)

			if _, err := s.RecordPayment(context.Background(), req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPaymentService_ListAndDelete(t *testing.T) {
	t.Parallel()

	s, _, _ := newPaymentFixture()
	ctx := context.Background()

	for _, mode := range []domain.PaymentMode{domain.PaymentModeCash, domain.PaymentModeUPI} {
		_, err := s.RecordPayment(ctx, RecordPaymentRequest{
			TripID:          "trip-1",
			Amount:          decimal.NewFromInt(100),
			Mode:            mode,
			Type:            domain.TransactionCredit,
			TransactionDate: date("2026-10-12"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	upi, err := s.ListPayments(ctx, "upi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(upi) != 1 {
		t.Fatalf("expected 1 UPI payment, got %d", len(upi))
	}

	if err := s.DeletePayment(ctx, upi[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remaining, err := s.ListTripPayments(ctx, "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Mode != domain.PaymentModeCash {
		t.Errorf("expected only cash payment left, got %+v", remaining)
	}
}

func TestPaymentService_ListTripPaymentsUnknownTrip(t *testing.T) {
	t.Parallel()

	s, _, _ := newPaymentFixture()

	if _, err := s.ListTripPayments(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
