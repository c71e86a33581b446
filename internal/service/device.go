package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// DeviceService handles push token registration.
type DeviceService struct {
	tokenRepo repository.DeviceTokenRepository
	now       func() time.Time
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(tokenRepo repository.DeviceTokenRepository) *DeviceService {
	return &DeviceService{
		tokenRepo: tokenRepo,
		now:       time.Now,
	}
}

// RegisterDevice stores a push token for userID. Registering the same token
// again only refreshes its timestamp. created reports whether it was new.
func (s *DeviceService) RegisterDevice(ctx context.Context, userID, token, deviceType string) (*domain.DeviceToken, bool, error) {
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return nil, false, ErrInvalidDeviceToken
	}
	if deviceType == "" {
		deviceType = "web"
	}

	device := &domain.DeviceToken{
		ID:          uuid.New().String(),
		UserID:      userID,
		Token:       token,
		DeviceType:  deviceType,
		LastUpdated: s.now().UTC(),
	}

	created, err := s.tokenRepo.Upsert(ctx, device)
	if err != nil {
		return nil, false, err
	}

	if created {
		log.Printf("registered %s device for user=%s", deviceType, userID)
	}

	return device, created, nil
}
