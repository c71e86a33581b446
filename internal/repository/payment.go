package repository

import (
	"context"

	"roadlines/internal/domain"
)

// PaymentRepository defines the persistence operations for payment history.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// ListActive retrieves all payments that are not soft-deleted, most recent
	// transaction first, with the route of the linked trip.
	ListActive(ctx context.Context) ([]*domain.Payment, error)

	// ListByTripID retrieves the payments recorded against one trip.
	ListByTripID(ctx context.Context, tripID string) ([]*domain.Payment, error)

	// SoftDelete flags a payment as deleted.
	SoftDelete(ctx context.Context, id string) error
}
