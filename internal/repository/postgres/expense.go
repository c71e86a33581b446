package postgres

import (
	"context"
	"database/sql"
	"errors"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// ExpenseRepository is a PostgreSQL implementation of repository.ExpenseRepository.
type ExpenseRepository struct {
	q Querier
}

// NewExpenseRepository creates a new PostgreSQL expense repository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{q: db}
}

const expenseColumns = `id, date, category, amount, vehicle_number, notes, created_at`

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var expense domain.Expense
	err := row.Scan(
		&expense.ID,
		&expense.Date,
		&expense.Category,
		&expense.Amount,
		&expense.VehicleNumber,
		&expense.Notes,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// Create persists a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	query := `
		INSERT INTO daily_expenses (id, date, category, amount, vehicle_number, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		expense.ID,
		expense.Date.Format("2006-01-02"),
		expense.Category,
		expense.Amount,
		expense.VehicleNumber,
		expense.Notes,
		expense.CreatedAt,
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM daily_expenses WHERE id = $1`

	expense, err := scanExpense(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return expense, nil
}

// List retrieves all expenses, most recent date first.
func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM daily_expenses ORDER BY date DESC, created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// Update updates an existing expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	query := `
		UPDATE daily_expenses
		SET date = $1, category = $2, amount = $3, vehicle_number = $4, notes = $5
		WHERE id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		expense.Date.Format("2006-01-02"),
		expense.Category,
		expense.Amount,
		expense.VehicleNumber,
		expense.Notes,
		expense.ID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM daily_expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Ensure ExpenseRepository implements repository.ExpenseRepository.
var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)
