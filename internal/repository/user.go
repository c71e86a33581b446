package repository

import (
	"context"

	"roadlines/internal/domain"
)

// UserRepository defines the persistence operations for back-office users.
type UserRepository interface {
	// Create adds a new user. Returns ErrConflict if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces a user's password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
