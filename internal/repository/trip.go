package repository

import (
	"context"
	"time"

	"roadlines/internal/domain"
)

// TripRepository defines the persistence operations for trips.
// Soft-deleted trips are invisible to every read.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// ListActive retrieves all trips that are not soft-deleted, newest first.
	ListActive(ctx context.Context) ([]*domain.Trip, error)

	// ListUnloadedOnOrBefore retrieves trips with an unloading date on or before cutoff.
	ListUnloadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error)

	// ListLoadedOnOrBefore retrieves trips with a loading date on or before cutoff.
	ListLoadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error)

	// Update replaces the editable fields of an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// SoftDelete flags a trip as deleted.
	SoftDelete(ctx context.Context, id string) error

	// AppendPOD appends attachment URLs and marks the POD as received.
	// The returned trip reflects the stored state after the append.
	AppendPOD(ctx context.Context, id string, urls []string) (*domain.Trip, error)
}
