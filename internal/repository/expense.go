package repository

import (
	"context"

	"roadlines/internal/domain"
)

// ExpenseRepository defines the persistence operations for daily expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context) ([]*domain.Expense, error)
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
}
