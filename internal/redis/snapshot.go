package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"roadlines/internal/domain"
)

const (
	dashboardSnapshotKey = "cache:dashboard:snapshot"

	// DashboardSnapshotTTL bounds how stale a warm-start snapshot can be.
	DashboardSnapshotTTL = 24 * time.Hour
)

// SnapshotStore mirrors the latest dashboard snapshot so a restarted
// server can serve it before its first recompute finishes.
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// CachedDashboard is the stored form of a snapshot. Amounts are kept as
// strings to avoid float rounding.
type CachedDashboard struct {
	TotalTrips      int       `json:"total_trips"`
	TotalFreight    string    `json:"total_freight"`
	TotalBhada      string    `json:"total_bhada"`
	PendingPOD      int       `json:"pending_pod"`
	PendingPayments int       `json:"pending_payments"`
	BalanceDue      string    `json:"balance_due"`
	Payable         string    `json:"payable"`
	MonthlyProfit   string    `json:"monthly_profit"`
	ComputedAt      time.Time `json:"computed_at"`
}

func toCachedDashboard(s *domain.DashboardSnapshot) CachedDashboard {
	return CachedDashboard{
		TotalTrips:      s.TotalTrips,
		TotalFreight:    s.TotalFreight.String(),
		TotalBhada:      s.TotalBhada.String(),
		PendingPOD:      s.PendingPOD,
		PendingPayments: s.PendingPayments,
		BalanceDue:      s.BalanceDue.String(),
		Payable:         s.Payable.String(),
		MonthlyProfit:   s.MonthlyProfit.String(),
		ComputedAt:      s.ComputedAt,
	}
}

func (c CachedDashboard) toSnapshot() (*domain.DashboardSnapshot, error) {
	amounts := []string{c.TotalFreight, c.TotalBhada, c.BalanceDue, c.Payable, c.MonthlyProfit}
	parsed := make([]decimal.Decimal, len(amounts))
	for i, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return nil, err
		}
		parsed[i] = d
	}

	return &domain.DashboardSnapshot{
		TotalTrips:      c.TotalTrips,
		TotalFreight:    parsed[0],
		TotalBhada:      parsed[1],
		PendingPOD:      c.PendingPOD,
		PendingPayments: c.PendingPayments,
		BalanceDue:      parsed[2],
		Payable:         parsed[3],
		MonthlyProfit:   parsed[4],
		ComputedAt:      c.ComputedAt,
	}, nil
}

// GetDashboard returns the stored snapshot, or nil on a cache miss.
func (s *SnapshotStore) GetDashboard(ctx context.Context) (*domain.DashboardSnapshot, error) {
	data, err := s.client.Get(ctx, dashboardSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedDashboard
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return cached.toSnapshot()
}

// SetDashboard stores snapshot.
func (s *SnapshotStore) SetDashboard(ctx context.Context, snapshot *domain.DashboardSnapshot) error {
	data, err := json.Marshal(toCachedDashboard(snapshot))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, dashboardSnapshotKey, data, DashboardSnapshotTTL).Err()
}
