package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// TripService handles trip operations.
type TripService struct {
	transactor repository.Transactor
	tripRepo   repository.TripRepository
	now        func() time.Time
}

// NewTripService creates a new TripService.
func NewTripService(transactor repository.Transactor, tripRepo repository.TripRepository) *TripService {
	return &TripService{
		transactor: transactor,
		tripRepo:   tripRepo,
		now:        time.Now,
	}
}

// InitialPayment is a payment entered together with a new trip.
type InitialPayment struct {
	Amount          decimal.Decimal
	Mode            domain.PaymentMode
	Type            domain.TransactionType
	TransactionDate time.Time
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	Trip           *domain.Trip
	InitialPayment *InitialPayment
}

// CreateTripResponse contains the created trip and, if requested, its first payment.
type CreateTripResponse struct {
	Trip    *domain.Trip
	Payment *domain.Payment
}

// CreateTrip stores a new trip. Party and motor owner contacts are added to
// the masters by name, and an initial payment is recorded in the same
// transaction.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*CreateTripResponse, error) {
	trip := req.Trip
	if err := validateTrip(trip); err != nil {
		return nil, err
	}
	if req.InitialPayment != nil {
		if err := validatePayment(req.InitialPayment.Amount, req.InitialPayment.Mode, req.InitialPayment.Type, req.InitialPayment.TransactionDate); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	trip.ID = uuid.New().String()
	trip.PODStatus = domain.NormalizePODStatus(string(trip.PODStatus))
	trip.PaymentStatus = domain.NormalizePaymentStatus(string(trip.PaymentStatus))
	trip.GaadiBalanceStatus = domain.NormalizePaymentStatus(string(trip.GaadiBalanceStatus))
	trip.IsDeleted = false
	trip.CreatedAt = now
	trip.UpdatedAt = now

	var payment *domain.Payment
	err := s.transactor.WithinTx(ctx, func(repos repository.TxRepositories) error {
		if err := ensureMasters(ctx, repos.Masters, trip, now); err != nil {
			return err
		}

		if err := repos.Trips.Create(ctx, trip); err != nil {
			return err
		}

		if req.InitialPayment != nil {
			payment = newPayment(trip, req.InitialPayment.Amount, req.InitialPayment.Mode, req.InitialPayment.Type, req.InitialPayment.TransactionDate, now)
			if err := repos.Payments.Create(ctx, payment); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateTripResponse{Trip: trip, Payment: payment}, nil
}

// UpdateTrip replaces the editable fields of a trip. POD attachments are
// only changed through AttachPOD, and a status left empty keeps its stored value.
func (s *TripService) UpdateTrip(ctx context.Context, tripID string, changes *domain.Trip) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if err := validateTrip(changes); err != nil {
		return nil, err
	}

	existing, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updated := *changes
	updated.ID = existing.ID
	updated.PODURLs = existing.PODURLs
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = now
	if updated.PODStatus == "" {
		updated.PODStatus = existing.PODStatus
	}
	if updated.PaymentStatus == "" {
		updated.PaymentStatus = existing.PaymentStatus
	}
	if updated.GaadiBalanceStatus == "" {
		updated.GaadiBalanceStatus = existing.GaadiBalanceStatus
	}
	updated.PODStatus = domain.NormalizePODStatus(string(updated.PODStatus))
	updated.PaymentStatus = domain.NormalizePaymentStatus(string(updated.PaymentStatus))
	updated.GaadiBalanceStatus = domain.NormalizePaymentStatus(string(updated.GaadiBalanceStatus))

	err = s.transactor.WithinTx(ctx, func(repos repository.TxRepositories) error {
		if err := ensureMasters(ctx, repos.Masters, &updated, now); err != nil {
			return err
		}
		return repos.Trips.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, tripID)
}

// ListTrips retrieves live trips, newest first, narrowed by filter.
func (s *TripService) ListTrips(ctx context.Context, filter domain.TripFilter) ([]*domain.Trip, error) {
	trips, err := s.tripRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Trip, 0, len(trips))
	for _, trip := range trips {
		if filter.Matches(trip) {
			matched = append(matched, trip)
		}
	}

	return matched, nil
}

// DeleteTrip soft-deletes a trip.
func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	if tripID == "" {
		return ErrInvalidTripID
	}

	return s.tripRepo.SoftDelete(ctx, tripID)
}

// AttachPOD appends POD attachment URLs to a trip and marks the POD received.
func (s *TripService) AttachPOD(ctx context.Context, tripID string, urls []string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var cleaned []string
	for _, u := range urls {
		// Commas separate URLs in storage.
		cleaned = append(cleaned, domain.SplitPODURLs(u)...)
	}
	if len(cleaned) == 0 {
		return nil, ErrInvalidPODURL
	}

	return s.tripRepo.AppendPOD(ctx, tripID, cleaned)
}

func validateTrip(trip *domain.Trip) error {
	if trip == nil || strings.TrimSpace(trip.TripCode) == "" {
		return ErrInvalidTripCode
	}
	if strings.TrimSpace(trip.VehicleNumber) == "" {
		return ErrInvalidVehicleNumber
	}
	if trip.LoadingDate.IsZero() {
		return ErrInvalidLoadingDate
	}
	if trip.Unloaded() && trip.UnloadingDate.Before(trip.LoadingDate) {
		return ErrUnloadingBeforeLoading
	}

	// Profit may legitimately be negative.
	amounts := []decimal.NullDecimal{
		trip.GaadiFreight, trip.GaadiAdvance, trip.GaadiBalance,
		trip.PartyFreight, trip.PartyAdvance, trip.PartyBalance,
		trip.TDS, trip.Himmali, trip.Weight,
	}
	for _, a := range amounts {
		if a.Valid && a.Decimal.IsNegative() {
			return ErrNegativeAmount
		}
	}

	return nil
}

func ensureMasters(ctx context.Context, masters repository.MasterRepository, trip *domain.Trip, now time.Time) error {
	contacts := []domain.Master{
		{Kind: domain.MasterParty, Name: strings.TrimSpace(trip.PartyName), Mobile: strings.TrimSpace(trip.PartyNumber)},
		{Kind: domain.MasterMotorOwner, Name: strings.TrimSpace(trip.MotorOwnerName), Mobile: strings.TrimSpace(trip.MotorOwnerNumber)},
	}

	for i := range contacts {
		if contacts[i].Name == "" {
			continue
		}
		contacts[i].ID = uuid.New().String()
		contacts[i].CreatedAt = now
		if err := masters.EnsureExists(ctx, &contacts[i]); err != nil {
			return err
		}
	}

	return nil
}
