package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, trip_code, loading_date, unloading_date, from_location, to_location,
	vehicle_number, driver_number, motor_owner_name, motor_owner_number, party_name, party_number,
	gaadi_freight, gaadi_advance, gaadi_balance, party_freight, party_advance, party_balance,
	tds, himmali, profit, weight, remark, pod_status, payment_status, gaadi_balance_status,
	pod_path, is_deleted, created_at, updated_at`

// editableArgs returns the values of the columns a trip form may change, in
// the order trip_code .. gaadi_balance_status.
func editableArgs(trip *domain.Trip) []any {
	return []any{
		trip.TripCode,
		trip.LoadingDate.Format("2006-01-02"),
		nullDate(trip.UnloadingDate),
		trip.FromLocation,
		trip.ToLocation,
		trip.VehicleNumber,
		trip.DriverNumber,
		trip.MotorOwnerName,
		trip.MotorOwnerNumber,
		trip.PartyName,
		trip.PartyNumber,
		trip.GaadiFreight,
		trip.GaadiAdvance,
		trip.GaadiBalance,
		trip.PartyFreight,
		trip.PartyAdvance,
		trip.PartyBalance,
		trip.TDS,
		trip.Himmali,
		trip.Profit,
		trip.Weight,
		trip.Remark,
		string(trip.PODStatus),
		string(trip.PaymentStatus),
		string(trip.GaadiBalanceStatus),
	}
}

// scanTrip decodes one row selected with tripColumns. Amount columns are read
// as text so that legacy non-numeric values decode as absent instead of failing.
func scanTrip(row rowScanner) (*domain.Trip, error) {
	var (
		trip               domain.Trip
		unloadingDate      sql.NullTime
		amounts            [10]sql.NullString
		podStatus          string
		paymentStatus      string
		gaadiBalanceStatus string
		podPath            string
	)

	err := row.Scan(
		&trip.ID,
		&trip.TripCode,
		&trip.LoadingDate,
		&unloadingDate,
		&trip.FromLocation,
		&trip.ToLocation,
		&trip.VehicleNumber,
		&trip.DriverNumber,
		&trip.MotorOwnerName,
		&trip.MotorOwnerNumber,
		&trip.PartyName,
		&trip.PartyNumber,
		&amounts[0],
		&amounts[1],
		&amounts[2],
		&amounts[3],
		&amounts[4],
		&amounts[5],
		&amounts[6],
		&amounts[7],
		&amounts[8],
		&amounts[9],
		&trip.Remark,
		&podStatus,
		&paymentStatus,
		&gaadiBalanceStatus,
		&podPath,
		&trip.IsDeleted,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if unloadingDate.Valid {
		trip.UnloadingDate = unloadingDate.Time
	}

	trip.GaadiFreight = domain.ParseAmount(amounts[0].String)
	trip.GaadiAdvance = domain.ParseAmount(amounts[1].String)
	trip.GaadiBalance = domain.ParseAmount(amounts[2].String)
	trip.PartyFreight = domain.ParseAmount(amounts[3].String)
	trip.PartyAdvance = domain.ParseAmount(amounts[4].String)
	trip.PartyBalance = domain.ParseAmount(amounts[5].String)
	trip.TDS = domain.ParseAmount(amounts[6].String)
	trip.Himmali = domain.ParseAmount(amounts[7].String)
	trip.Profit = domain.ParseAmount(amounts[8].String)
	trip.Weight = domain.ParseAmount(amounts[9].String)

	trip.PODStatus = domain.NormalizePODStatus(podStatus)
	trip.PaymentStatus = domain.NormalizePaymentStatus(paymentStatus)
	trip.GaadiBalanceStatus = domain.NormalizePaymentStatus(gaadiBalanceStatus)
	trip.PODURLs = domain.SplitPODURLs(podPath)

	return &trip, nil
}

func (r *TripRepository) queryTrips(ctx context.Context, query string, args ...any) ([]*domain.Trip, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, trip_code, loading_date, unloading_date, from_location, to_location,
			vehicle_number, driver_number, motor_owner_name, motor_owner_number, party_name, party_number,
			gaadi_freight, gaadi_advance, gaadi_balance, party_freight, party_advance, party_balance,
			tds, himmali, profit, weight, remark, pod_status, payment_status, gaadi_balance_status,
			pod_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	args := append([]any{trip.ID}, editableArgs(trip)...)
	args = append(args, domain.JoinPODURLs(trip.PODURLs), trip.CreatedAt, trip.UpdatedAt)

	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND is_deleted = false`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// ListActive retrieves all trips that are not soft-deleted, newest first.
func (r *TripRepository) ListActive(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE is_deleted = false ORDER BY created_at DESC`
	return r.queryTrips(ctx, query)
}

// ListUnloadedOnOrBefore retrieves trips with an unloading date on or before cutoff.
func (r *TripRepository) ListUnloadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE is_deleted = false AND unloading_date IS NOT NULL AND unloading_date <= $1::date
		ORDER BY unloading_date
	`
	return r.queryTrips(ctx, query, cutoff.Format("2006-01-02"))
}

// ListLoadedOnOrBefore retrieves trips with a loading date on or before cutoff.
func (r *TripRepository) ListLoadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE is_deleted = false AND loading_date <= $1::date
		ORDER BY loading_date
	`
	return r.queryTrips(ctx, query, cutoff.Format("2006-01-02"))
}

// Update replaces the editable fields of an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET trip_code = $1, loading_date = $2, unloading_date = $3, from_location = $4, to_location = $5,
			vehicle_number = $6, driver_number = $7, motor_owner_name = $8, motor_owner_number = $9,
			party_name = $10, party_number = $11, gaadi_freight = $12, gaadi_advance = $13, gaadi_balance = $14,
			party_freight = $15, party_advance = $16, party_balance = $17, tds = $18, himmali = $19,
			profit = $20, weight = $21, remark = $22, pod_status = $23, payment_status = $24,
			gaadi_balance_status = $25, updated_at = $26
		WHERE id = $27 AND is_deleted = false
	`

	args := append(editableArgs(trip), trip.UpdatedAt, trip.ID)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// SoftDelete flags a trip as deleted.
func (r *TripRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE trips SET is_deleted = true, updated_at = $1 WHERE id = $2 AND is_deleted = false`

	result, err := r.q.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// AppendPOD appends attachment URLs and marks the POD as received in a single
// statement, so concurrent uploads never overwrite each other's URLs.
func (r *TripRepository) AppendPOD(ctx context.Context, id string, urls []string) (*domain.Trip, error) {
	query := `
		UPDATE trips
		SET pod_path = CASE WHEN pod_path = '' THEN $2 ELSE pod_path || ',' || $2 END,
			pod_status = $3,
			updated_at = $4
		WHERE id = $1 AND is_deleted = false
		RETURNING ` + tripColumns

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query,
		id,
		domain.JoinPODURLs(urls),
		string(domain.PODStatusReceived),
		time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
