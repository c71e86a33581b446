package repository

import (
	"context"

	"roadlines/internal/domain"
)

// MasterRepository defines the persistence operations for parties and motor owners.
type MasterRepository interface {
	// EnsureExists creates the contact unless one with the same name exists.
	EnsureExists(ctx context.Context, master *domain.Master) error

	// List retrieves all contacts of a kind ordered by name.
	List(ctx context.Context, kind domain.MasterKind) ([]*domain.Master, error)
}
