package repository

import (
	"context"

	"roadlines/internal/domain"
)

// DeviceTokenRepository defines the persistence operations for push tokens.
type DeviceTokenRepository interface {
	// Upsert stores the token, or refreshes last_updated if the user already registered it.
	// created reports whether a new row was inserted.
	Upsert(ctx context.Context, token *domain.DeviceToken) (created bool, err error)

	// ListTokens returns every registered token string.
	ListTokens(ctx context.Context) ([]string, error)

	// DeleteTokens removes tokens the push service rejected as unregistered
	// and returns how many rows were deleted.
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
}
