package postgres

import (
	"context"
	"database/sql"
	"errors"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `p.id, p.trip_id, p.trip_code, p.vehicle_number, p.loading_date, p.amount,
	p.payment_type, p.transaction_type, p.transaction_date, p.is_deleted, p.created_at,
	COALESCE(t.from_location, ''), COALESCE(t.to_location, '')`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment     domain.Payment
		loadingDate sql.NullTime
		mode        string
		txType      string
	)

	err := row.Scan(
		&payment.ID,
		&payment.TripID,
		&payment.TripCode,
		&payment.VehicleNumber,
		&loadingDate,
		&payment.Amount,
		&mode,
		&txType,
		&payment.TransactionDate,
		&payment.IsDeleted,
		&payment.CreatedAt,
		&payment.FromLocation,
		&payment.ToLocation,
	)
	if err != nil {
		return nil, err
	}

	if loadingDate.Valid {
		payment.LoadingDate = loadingDate.Time
	}

	if m, ok := domain.ParsePaymentMode(mode); ok {
		payment.Mode = m
	} else {
		payment.Mode = domain.PaymentMode(mode)
	}

	if t, ok := domain.ParseTransactionType(txType); ok {
		payment.Type = t
	} else {
		payment.Type = domain.TransactionType(txType)
	}

	return &payment, nil
}

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payment_history (id, trip_id, trip_code, vehicle_number, loading_date, amount,
			payment_type, transaction_type, transaction_date, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TripID,
		payment.TripCode,
		payment.VehicleNumber,
		nullDate(payment.LoadingDate),
		payment.Amount,
		string(payment.Mode),
		string(payment.Type),
		payment.TransactionDate.Format("2006-01-02"),
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_history p LEFT JOIN trips t ON t.id = p.trip_id
		WHERE p.id = $1 AND p.is_deleted = false
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// ListActive retrieves all payments that are not soft-deleted.
func (r *PaymentRepository) ListActive(ctx context.Context) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_history p LEFT JOIN trips t ON t.id = p.trip_id
		WHERE p.is_deleted = false
		ORDER BY p.transaction_date DESC, p.created_at DESC
	`
	return r.queryPayments(ctx, query)
}

// ListByTripID retrieves the payments recorded against one trip.
func (r *PaymentRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_history p LEFT JOIN trips t ON t.id = p.trip_id
		WHERE p.trip_id = $1 AND p.is_deleted = false
		ORDER BY p.transaction_date DESC, p.created_at DESC
	`
	return r.queryPayments(ctx, query, tripID)
}

// SoftDelete flags a payment as deleted.
func (r *PaymentRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE payment_history SET is_deleted = true WHERE id = $1 AND is_deleted = false`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)
