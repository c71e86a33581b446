package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// MasterRepository is a PostgreSQL implementation of repository.MasterRepository.
type MasterRepository struct {
	q Querier
}

// NewMasterRepository creates a new PostgreSQL master repository.
func NewMasterRepository(db *sql.DB) *MasterRepository {
	return &MasterRepository{q: db}
}

// NewMasterRepositoryWithTx creates a master repository using a transaction.
func NewMasterRepositoryWithTx(tx *sql.Tx) *MasterRepository {
	return &MasterRepository{q: tx}
}

func masterTable(kind domain.MasterKind) (string, error) {
	switch kind {
	case domain.MasterParty:
		return "parties", nil
	case domain.MasterMotorOwner:
		return "motor_owners", nil
	}
	return "", fmt.Errorf("unknown master kind %q", kind)
}

// EnsureExists creates the contact unless one with the same name exists.
func (r *MasterRepository) EnsureExists(ctx context.Context, master *domain.Master) error {
	table, err := masterTable(master.Kind)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (id, name, mobile, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (name) DO NOTHING`

	_, err = r.q.ExecContext(ctx, query, master.ID, master.Name, master.Mobile, master.CreatedAt)
	return err
}

// List retrieves all contacts of a kind ordered by name.
func (r *MasterRepository) List(ctx context.Context, kind domain.MasterKind) ([]*domain.Master, error) {
	table, err := masterTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, `SELECT id, name, mobile, created_at FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var masters []*domain.Master
	for rows.Next() {
		master := domain.Master{Kind: kind}
		if err := rows.Scan(&master.ID, &master.Name, &master.Mobile, &master.CreatedAt); err != nil {
			return nil, err
		}
		masters = append(masters, &master)
	}

	return masters, rows.Err()
}

// Ensure MasterRepository implements repository.MasterRepository.
var _ repository.MasterRepository = (*MasterRepository)(nil)
