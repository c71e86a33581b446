// Package tests holds end-to-end scenarios that drive several services
// against shared in-memory stores.
package tests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"roadlines/internal/changefeed"
	"roadlines/internal/domain"
	"roadlines/internal/push"
	"roadlines/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is an in-memory TripRepository. Every write is
// announced on the attached feed, the way the trips trigger does.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip
	feed  *MockFeed
}

// NewMockTripRepository creates a new mock trip repository. feed may be nil.
func NewMockTripRepository(feed *MockFeed) *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
		feed:  feed,
	}
}

func (m *MockTripRepository) notify(op changefeed.Op, id string) {
	if m.feed != nil {
		m.feed.Publish(changefeed.Event{Op: op, TripID: id})
	}
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	copy := *trip
	m.trips[trip.ID] = &copy
	m.mu.Unlock()
	m.notify(changefeed.OpInsert, trip.ID)
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok || trip.IsDeleted {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) list(keep func(*domain.Trip) bool) []*domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Trip
	for _, trip := range m.trips {
		if !trip.IsDeleted && keep(trip) {
			copy := *trip
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MockTripRepository) ListActive(ctx context.Context) ([]*domain.Trip, error) {
	return m.list(func(*domain.Trip) bool { return true }), nil
}

func (m *MockTripRepository) ListUnloadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	return m.list(func(t *domain.Trip) bool {
		return t.Unloaded() && !t.UnloadingDate.After(cutoff)
	}), nil
}

func (m *MockTripRepository) ListLoadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	return m.list(func(t *domain.Trip) bool {
		return !t.LoadingDate.After(cutoff)
	}), nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	existing, ok := m.trips[trip.ID]
	if !ok || existing.IsDeleted {
		m.mu.Unlock()
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	m.mu.Unlock()
	m.notify(changefeed.OpUpdate, trip.ID)
	return nil
}

func (m *MockTripRepository) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	trip, ok := m.trips[id]
	if !ok || trip.IsDeleted {
		m.mu.Unlock()
		return repository.ErrNotFound
	}
	trip.IsDeleted = true
	m.mu.Unlock()
	m.notify(changefeed.OpUpdate, id)
	return nil
}

func (m *MockTripRepository) AppendPOD(ctx context.Context, id string, urls []string) (*domain.Trip, error) {
	m.mu.Lock()
	trip, ok := m.trips[id]
	if !ok || trip.IsDeleted {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	trip.PODURLs = append(trip.PODURLs, urls...)
	trip.PODStatus = domain.PODStatusReceived
	copy := *trip
	m.mu.Unlock()
	m.notify(changefeed.OpUpdate, id)
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT / MASTER REPOSITORIES
// ──────────────────────────────────────────────

// MockPaymentRepository is an in-memory PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments []*domain.Payment
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments = append(m.payments, &copy)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id && !p.IsDeleted {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) ListActive(ctx context.Context) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	all, _ := m.ListActive(ctx)
	var out []*domain.Payment
	for _, p := range all {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id && !p.IsDeleted {
			p.IsDeleted = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// MockMasterRepository keeps contacts by kind and name.
type MockMasterRepository struct {
	mu      sync.Mutex
	masters map[string]*domain.Master
}

func NewMockMasterRepository() *MockMasterRepository {
	return &MockMasterRepository{masters: make(map[string]*domain.Master)}
}

func (m *MockMasterRepository) EnsureExists(ctx context.Context, master *domain.Master) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(master.Kind) + "/" + master.Name
	if _, ok := m.masters[key]; !ok {
		copy := *master
		m.masters[key] = &copy
	}
	return nil
}

func (m *MockMasterRepository) List(ctx context.Context, kind domain.MasterKind) ([]*domain.Master, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Master
	for _, master := range m.masters {
		if master.Kind == kind {
			out = append(out, master)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MockTransactor runs fn directly against the in-memory repositories.
type MockTransactor struct {
	Repos repository.TxRepositories
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK DEVICE TOKENS / PUSH / LEDGER
// ──────────────────────────────────────────────

// MockDeviceTokenRepository stores bare token strings.
type MockDeviceTokenRepository struct {
	mu     sync.Mutex
	tokens []string
}

func NewMockDeviceTokenRepository(tokens ...string) *MockDeviceTokenRepository {
	return &MockDeviceTokenRepository{tokens: tokens}
}

func (m *MockDeviceTokenRepository) Upsert(ctx context.Context, token *domain.DeviceToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t == token.Token {
			return false, nil
		}
	}
	m.tokens = append(m.tokens, token.Token)
	return true, nil
}

func (m *MockDeviceTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...), nil
}

func (m *MockDeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		drop[t] = true
	}
	kept := m.tokens[:0]
	var removed int64
	for _, t := range m.tokens {
		if drop[t] {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.tokens = kept
	return removed, nil
}

// MockSender records every multicast and delivers to every token.
type MockSender struct {
	mu       sync.Mutex
	messages []push.MulticastMessage
}

func (m *MockSender) SendMulticast(ctx context.Context, msg push.MulticastMessage) (*push.BatchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	resp := &push.BatchResponse{}
	for _, token := range msg.Tokens {
		resp.Responses = append(resp.Responses, push.SendResponse{Token: token, Success: true, MessageID: "msg-" + token})
		resp.SuccessCount++
	}
	return resp, nil
}

func (m *MockSender) Enabled() bool { return true }

// Reset forgets recorded messages and returns what was recorded.
func (m *MockSender) Reset() []push.MulticastMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.messages
	m.messages = nil
	return out
}

// MockLedger is an in-memory notification ledger.
type MockLedger struct {
	mu     sync.Mutex
	claims map[string]bool
}

func NewMockLedger() *MockLedger {
	return &MockLedger{claims: make(map[string]bool)}
}

func (m *MockLedger) Claim(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%s/%s", tripID, kind, domain.FormatDate(day))
	if m.claims[key] {
		return false, nil
	}
	m.claims[key] = true
	return true, nil
}

func (m *MockLedger) Release(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, fmt.Sprintf("%s/%s/%s", tripID, kind, domain.FormatDate(day)))
	return nil
}

// ──────────────────────────────────────────────
// MOCK CHANGE FEED
// ──────────────────────────────────────────────

// MockFeed fans published events out to a single subscriber.
type MockFeed struct {
	events chan changefeed.Event
}

func NewMockFeed() *MockFeed {
	return &MockFeed{events: make(chan changefeed.Event, 64)}
}

func (m *MockFeed) Subscribe(ctx context.Context) (<-chan changefeed.Event, error) {
	return m.events, nil
}

// Publish queues an event without blocking; a full buffer drops it, since
// the aggregator recomputes from scratch on the next one anyway.
func (m *MockFeed) Publish(ev changefeed.Event) {
	select {
	case m.events <- ev:
	default:
	}
}
