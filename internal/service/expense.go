package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// ExpenseService handles daily expense operations.
type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo repository.ExpenseRepository) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		now:         time.Now,
	}
}

// CreateExpense stores a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	expense.ID = uuid.New().String()
	expense.CreatedAt = s.now().UTC()

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// UpdateExpense replaces an expense's fields.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID string, changes *domain.Expense) (*domain.Expense, error) {
	if expenseID == "" {
		return nil, ErrInvalidExpenseID
	}
	if err := validateExpense(changes); err != nil {
		return nil, err
	}

	existing, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	updated := *changes
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.expenseRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	if expenseID == "" {
		return ErrInvalidExpenseID
	}

	return s.expenseRepo.Delete(ctx, expenseID)
}

// ListExpenses retrieves expenses, newest date first, matching query.
func (s *ExpenseService) ListExpenses(ctx context.Context, query string) ([]*domain.Expense, error) {
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.MatchesQuery(query) {
			matched = append(matched, e)
		}
	}

	return matched, nil
}

func validateExpense(expense *domain.Expense) error {
	if expense == nil || expense.Date.IsZero() || strings.TrimSpace(expense.Category) == "" {
		return ErrInvalidExpense
	}
	if !expense.Amount.IsPositive() {
		return ErrInvalidExpense
	}
	return nil
}
