package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// DeviceTokenRepository is a PostgreSQL implementation of repository.DeviceTokenRepository.
type DeviceTokenRepository struct {
	q Querier
}

// NewDeviceTokenRepository creates a new PostgreSQL device token repository.
func NewDeviceTokenRepository(db *sql.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{q: db}
}

// Upsert stores the token, or refreshes last_updated if the user already registered it.
func (r *DeviceTokenRepository) Upsert(ctx context.Context, token *domain.DeviceToken) (bool, error) {
	// xmax is 0 only for freshly inserted rows.
	query := `
		INSERT INTO fcm_tokens (id, user_id, token, device_type, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, token) DO UPDATE SET last_updated = EXCLUDED.last_updated
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.q.QueryRowContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.DeviceType,
		token.LastUpdated,
	).Scan(&created)

	return created, err
}

// ListTokens returns every registered token string.
func (r *DeviceTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT token FROM fcm_tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

// DeleteTokens removes every registration of the given tokens.
func (r *DeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}

	result, err := r.q.ExecContext(ctx, `DELETE FROM fcm_tokens WHERE token = ANY($1)`, pq.Array(tokens))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Ensure DeviceTokenRepository implements repository.DeviceTokenRepository.
var _ repository.DeviceTokenRepository = (*DeviceTokenRepository)(nil)
