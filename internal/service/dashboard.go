package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"

	"roadlines/internal/changefeed"
	"roadlines/internal/domain"
	"roadlines/internal/redis"
	"roadlines/internal/repository"
)

// ComputeDashboard derives the KPI snapshot from trips in a single pass.
// The result does not depend on the order of trips. Monthly profit covers
// trips loaded in the calendar month of now, as seen in loc.
func ComputeDashboard(trips []*domain.Trip, now time.Time, loc *time.Location) *domain.DashboardSnapshot {
	if loc == nil {
		loc = time.UTC
	}
	year, month, _ := now.In(loc).Date()

	snapshot := &domain.DashboardSnapshot{
		TotalFreight:  decimal.Zero,
		TotalBhada:    decimal.Zero,
		BalanceDue:    decimal.Zero,
		Payable:       decimal.Zero,
		MonthlyProfit: decimal.Zero,
		ComputedAt:    now,
	}

	for _, trip := range trips {
		if trip == nil || trip.IsDeleted {
			continue
		}

		snapshot.TotalTrips++
		snapshot.TotalFreight = snapshot.TotalFreight.Add(domain.AmountOrZero(trip.PartyFreight))
		snapshot.TotalBhada = snapshot.TotalBhada.Add(domain.AmountOrZero(trip.GaadiFreight))
		snapshot.BalanceDue = snapshot.BalanceDue.Add(domain.AmountOrZero(trip.PartyBalance))
		snapshot.Payable = snapshot.Payable.Add(domain.AmountOrZero(trip.GaadiBalance))

		if trip.PODStatus != domain.PODStatusReceived {
			snapshot.PendingPOD++
		}
		if trip.PaymentStatus != domain.PaymentStatusPaid {
			snapshot.PendingPayments++
		}

		// Loading dates are calendar dates stored as midnight UTC.
		if y, m, _ := trip.LoadingDate.Date(); y == year && m == month {
			snapshot.MonthlyProfit = snapshot.MonthlyProfit.Add(domain.AmountOrZero(trip.Profit))
		}
	}

	return snapshot
}

// DashboardService keeps the current dashboard snapshot. Run is the only
// writer; readers load the snapshot without locking.
type DashboardService struct {
	tripRepo repository.TripRepository
	cache    redis.SnapshotStoreInterface
	nrApp    *newrelic.Application
	loc      *time.Location
	now      func() time.Time

	current atomic.Pointer[domain.DashboardSnapshot]
	hub     *snapshotHub
}

// NewDashboardService creates a new DashboardService. cache and nrApp may be nil.
func NewDashboardService(
	tripRepo repository.TripRepository,
	cache redis.SnapshotStoreInterface,
	nrApp *newrelic.Application,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		tripRepo: tripRepo,
		cache:    cache,
		nrApp:    nrApp,
		loc:      loc,
		now:      time.Now,
		hub:      newSnapshotHub(),
	}
}

// Current returns the latest snapshot.
func (s *DashboardService) Current() (*domain.DashboardSnapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, ErrSnapshotNotReady
	}
	return snapshot, nil
}

// WarmStart loads the last mirrored snapshot, if any, so it can be served
// before the first recompute. It never replaces a computed snapshot.
func (s *DashboardService) WarmStart(ctx context.Context) {
	if s.cache == nil {
		return
	}

	cached, err := s.cache.GetDashboard(ctx)
	if err != nil {
		log.Printf("dashboard: warm start failed: %v", err)
		return
	}
	if cached == nil {
		return
	}

	if s.current.CompareAndSwap(nil, cached) {
		log.Printf("dashboard: warm start from snapshot computed_at=%s", cached.ComputedAt.Format(time.RFC3339))
	}
}

// Refresh recomputes the snapshot from all live trips. On a read failure the
// previous snapshot stays in place and the error is returned.
func (s *DashboardService) Refresh(ctx context.Context) error {
	if s.nrApp != nil {
		txn := s.nrApp.StartTransaction("dashboard.refresh")
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	trips, err := s.tripRepo.ListActive(ctx)
	if err != nil {
		if txn := newrelic.FromContext(ctx); txn != nil {
			txn.NoticeError(err)
		}
		log.Printf("dashboard: refresh failed, keeping previous snapshot: %v", err)
		return fmt.Errorf("list trips: %w", err)
	}

	s.publish(ctx, ComputeDashboard(trips, s.now(), s.loc))
	return nil
}

func (s *DashboardService) publish(ctx context.Context, snapshot *domain.DashboardSnapshot) {
	s.current.Store(snapshot)
	s.hub.broadcast(snapshot)

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, snapshot); err != nil {
			log.Printf("dashboard: failed to mirror snapshot: %v", err)
		}
	}
}

// Run recomputes the snapshot once, then again after every change event,
// until ctx is cancelled. Events that queue up during a recompute are folded
// into the next one.
func (s *DashboardService) Run(ctx context.Context, feed changefeed.Feed) error {
	events, err := feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to change feed: %w", err)
	}

	// Refresh logs its own failures and keeps the previous snapshot.
	s.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("change feed closed")
			}

			coalesced := drain(events)
			if ev.Op == changefeed.OpResync {
				log.Println("dashboard: change feed resynced")
			}
			if coalesced > 0 {
				log.Printf("dashboard: coalesced %d queued changes", coalesced)
			}

			s.Refresh(ctx)
		}
	}
}

// drain discards events already queued on ch and returns how many it took.
func drain(ch <-chan changefeed.Event) int {
	n := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Subscribe registers for published snapshots. The channel holds only the
// newest snapshot; a slow reader skips intermediate ones. Call cancel to
// unsubscribe.
func (s *DashboardService) Subscribe() (<-chan *domain.DashboardSnapshot, func()) {
	return s.hub.subscribe()
}

type snapshotHub struct {
	mu   sync.Mutex
	subs map[chan *domain.DashboardSnapshot]struct{}
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{subs: make(map[chan *domain.DashboardSnapshot]struct{})}
}

func (h *snapshotHub) subscribe() (<-chan *domain.DashboardSnapshot, func()) {
	ch := make(chan *domain.DashboardSnapshot, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *snapshotHub) broadcast(snapshot *domain.DashboardSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- snapshot:
		default:
			// Replace the unread snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
