package redis

import (
	"context"
	"time"

	"roadlines/internal/domain"
)

// SnapshotStoreInterface defines the interface for dashboard snapshot mirroring.
type SnapshotStoreInterface interface {
	GetDashboard(ctx context.Context) (*domain.DashboardSnapshot, error)
	SetDashboard(ctx context.Context, snapshot *domain.DashboardSnapshot) error
}

// NotificationLedgerInterface defines the interface for reminder deduplication.
type NotificationLedgerInterface interface {
	Claim(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) (bool, error)
	Release(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) error
}

// Ensure concrete types implement interfaces.
var (
	_ SnapshotStoreInterface      = (*SnapshotStore)(nil)
	_ NotificationLedgerInterface = (*NotificationLedger)(nil)
)
