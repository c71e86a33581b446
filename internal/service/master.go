package service

import (
	"context"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// MasterService lists the party and motor owner directories.
type MasterService struct {
	masterRepo repository.MasterRepository
}

// NewMasterService creates a new MasterService.
func NewMasterService(masterRepo repository.MasterRepository) *MasterService {
	return &MasterService{masterRepo: masterRepo}
}

// ListMasters retrieves the contacts of a kind, ordered by name, matching query.
func (s *MasterService) ListMasters(ctx context.Context, kind domain.MasterKind, query string) ([]*domain.Master, error) {
	if kind != domain.MasterParty && kind != domain.MasterMotorOwner {
		return nil, ErrInvalidMasterKind
	}

	masters, err := s.masterRepo.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Master, 0, len(masters))
	for _, m := range masters {
		if m.MatchesQuery(query) {
			matched = append(matched, m)
		}
	}

	return matched, nil
}
