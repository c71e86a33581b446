package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"roadlines/internal/changefeed"
	"roadlines/internal/domain"
	"roadlines/internal/push"
	"roadlines/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
// Soft-deleted trips stay in the map but are hidden from reads.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	ListActiveCallCount int32
	UpdateCallCount     int32

	// Error injection
	CreateError     error
	ListActiveError error
	UnloadedError   error
	LoadedError     error
	UpdateError     error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
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

func (m *MockTripRepository) live(keep func(*domain.Trip) bool) []*domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var trips []*domain.Trip
	for _, trip := range m.trips {
		if trip.IsDeleted || !keep(trip) {
			continue
		}
		copy := *trip
		trips = append(trips, &copy)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].CreatedAt.After(trips[j].CreatedAt) })
	return trips
}

func (m *MockTripRepository) ListActive(ctx context.Context) ([]*domain.Trip, error) {
	atomic.AddInt32(&m.ListActiveCallCount, 1)
	if m.ListActiveError != nil {
		return nil, m.ListActiveError
	}
	return m.live(func(*domain.Trip) bool { return true }), nil
}

func (m *MockTripRepository) ListUnloadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	if m.UnloadedError != nil {
		return nil, m.UnloadedError
	}
	return m.live(func(t *domain.Trip) bool { return t.Unloaded() && !t.UnloadingDate.After(cutoff) }), nil
}

func (m *MockTripRepository) ListLoadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	if m.LoadedError != nil {
		return nil, m.LoadedError
	}
	return m.live(func(t *domain.Trip) bool { return !t.LoadingDate.After(cutoff) }), nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.trips[trip.ID]
	if !ok || existing.IsDeleted {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok || trip.IsDeleted {
		return repository.ErrNotFound
	}
	trip.IsDeleted = true
	return nil
}

func (m *MockTripRepository) AppendPOD(ctx context.Context, id string, urls []string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok || trip.IsDeleted {
		return nil, repository.ErrNotFound
	}
	trip.PODURLs = append(trip.PODURLs, urls...)
	trip.PODStatus = domain.PODStatusReceived
	copy := *trip
	return &copy, nil
}

// GetTrip returns the stored trip, including soft-deleted ones.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments []*domain.Payment

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments = append(m.payments, &copy)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ID == id && !p.IsDeleted {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) list(keep func(*domain.Payment) bool) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.Payment
	for _, p := range m.payments {
		if !p.IsDeleted && keep(p) {
			copy := *p
			payments = append(payments, &copy)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].TransactionDate.After(payments[j].TransactionDate)
	})
	return payments
}

func (m *MockPaymentRepository) ListActive(ctx context.Context) ([]*domain.Payment, error) {
	return m.list(func(*domain.Payment) bool { return true }), nil
}

func (m *MockPaymentRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	return m.list(func(p *domain.Payment) bool { return p.TripID == tripID }), nil
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

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK MASTER REPOSITORY
// ──────────────────────────────────────────────

// MockMasterRepository is a mock implementation of MasterRepository.
type MockMasterRepository struct {
	mu      sync.RWMutex
	masters map[domain.MasterKind]map[string]*domain.Master

	// Error injection
	EnsureError error
}

// NewMockMasterRepository creates a new mock master repository.
func NewMockMasterRepository() *MockMasterRepository {
	return &MockMasterRepository{
		masters: make(map[domain.MasterKind]map[string]*domain.Master),
	}
}

func (m *MockMasterRepository) EnsureExists(ctx context.Context, master *domain.Master) error {
	if m.EnsureError != nil {
		return m.EnsureError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byName, ok := m.masters[master.Kind]
	if !ok {
		byName = make(map[string]*domain.Master)
		m.masters[master.Kind] = byName
	}
	if _, exists := byName[master.Name]; !exists {
		copy := *master
		byName[master.Name] = &copy
	}
	return nil
}

func (m *MockMasterRepository) List(ctx context.Context, kind domain.MasterKind) ([]*domain.Master, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var masters []*domain.Master
	for _, master := range m.masters[kind] {
		copy := *master
		masters = append(masters, &copy)
	}
	sort.Slice(masters, func(i, j int) bool { return masters[i].Name < masters[j].Name })
	return masters, nil
}

// Count returns the number of contacts of a kind.
func (m *MockMasterRepository) Count(kind domain.MasterKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.masters[kind])
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs fn against the plain mock repositories. It cannot roll
// back, so tests that exercise failures inspect Committed instead.
type MockTransactor struct {
	Trips    *MockTripRepository
	Payments *MockPaymentRepository
	Masters  *MockMasterRepository

	Committed  int32
	RolledBack int32
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	err := fn(repository.TxRepositories{
		Trips:    m.Trips,
		Payments: m.Payments,
		Masters:  m.Masters,
	})
	if err != nil {
		atomic.AddInt32(&m.RolledBack, 1)
		return err
	}
	atomic.AddInt32(&m.Committed, 1)
	return nil
}

// ──────────────────────────────────────────────
// MOCK DEVICE TOKEN REPOSITORY
// ──────────────────────────────────────────────

// MockDeviceTokenRepository is a mock implementation of DeviceTokenRepository.
type MockDeviceTokenRepository struct {
	mu     sync.RWMutex
	tokens map[[2]string]*domain.DeviceToken

	// Error injection
	ListError error

	Deleted []string
}

// NewMockDeviceTokenRepository creates a new mock device token repository.
func NewMockDeviceTokenRepository(tokens ...string) *MockDeviceTokenRepository {
	m := &MockDeviceTokenRepository{tokens: make(map[[2]string]*domain.DeviceToken)}
	for _, t := range tokens {
		m.tokens[[2]string{"admin", t}] = &domain.DeviceToken{UserID: "admin", Token: t}
	}
	return m
}

func (m *MockDeviceTokenRepository) Upsert(ctx context.Context, token *domain.DeviceToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{token.UserID, token.Token}
	if existing, ok := m.tokens[key]; ok {
		existing.LastUpdated = token.LastUpdated
		return false, nil
	}
	copy := *token
	m.tokens[key] = &copy
	return true, nil
}

func (m *MockDeviceTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tokens []string
	for _, t := range m.tokens {
		tokens = append(tokens, t.Token)
	}
	sort.Strings(tokens)
	return tokens, nil
}

func (m *MockDeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for _, token := range tokens {
		m.Deleted = append(m.Deleted, token)
		for key := range m.tokens {
			if key[1] == token {
				delete(m.tokens, key)
				deleted++
			}
		}
	}
	return deleted, nil
}

// ──────────────────────────────────────────────
// MOCK PUSH SENDER
// ──────────────────────────────────────────────

// MockSender records every multicast it is asked to send.
type MockSender struct {
	mu       sync.Mutex
	messages []push.MulticastMessage

	Disabled bool

	// FailTrips makes sends for these trip IDs return an error.
	FailTrips map[string]error

	// UnregisteredTokens are reported as rejected by the push service.
	UnregisteredTokens map[string]bool
}

// NewMockSender creates a new mock sender.
func NewMockSender() *MockSender {
	return &MockSender{
		FailTrips:          make(map[string]error),
		UnregisteredTokens: make(map[string]bool),
	}
}

func (m *MockSender) SendMulticast(ctx context.Context, msg push.MulticastMessage) (*push.BatchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)

	if err := m.FailTrips[msg.Data["tripId"]]; err != nil {
		return nil, err
	}

	batch := &push.BatchResponse{}
	for _, token := range msg.Tokens {
		if m.UnregisteredTokens[token] {
			batch.FailureCount++
			batch.Responses = append(batch.Responses, push.SendResponse{Token: token, Unregistered: true, Error: "not found"})
			continue
		}
		batch.SuccessCount++
		batch.Responses = append(batch.Responses, push.SendResponse{Token: token, Success: true})
	}
	return batch, nil
}

func (m *MockSender) Enabled() bool {
	return !m.Disabled
}

// Messages returns the multicasts sent so far.
func (m *MockSender) Messages() []push.MulticastMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]push.MulticastMessage(nil), m.messages...)
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION LEDGER
// ──────────────────────────────────────────────

// MockLedger is an in-memory notification ledger.
type MockLedger struct {
	mu     sync.Mutex
	claims map[string]bool

	// Error injection
	ClaimError error
}

// NewMockLedger creates a new mock ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{claims: make(map[string]bool)}
}

func ledgerKey(tripID string, kind domain.NotificationType, day time.Time) string {
	return tripID + "|" + string(kind) + "|" + domain.FormatDate(day)
}

func (m *MockLedger) Claim(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) (bool, error) {
	if m.ClaimError != nil {
		return false, m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledgerKey(tripID, kind, day)
	if m.claims[key] {
		return false, nil
	}
	m.claims[key] = true
	return true, nil
}

func (m *MockLedger) Release(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, ledgerKey(tripID, kind, day))
	return nil
}

// IsClaimed reports whether the reminder is recorded as sent.
func (m *MockLedger) IsClaimed(tripID string, kind domain.NotificationType, day time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[ledgerKey(tripID, kind, day)]
}

// ──────────────────────────────────────────────
// MOCK SNAPSHOT STORE
// ──────────────────────────────────────────────

// MockSnapshotStore is an in-memory dashboard snapshot mirror.
type MockSnapshotStore struct {
	mu       sync.Mutex
	snapshot *domain.DashboardSnapshot

	// Error injection
	SetError error

	SetCallCount int32
}

func (m *MockSnapshotStore) GetDashboard(ctx context.Context) (*domain.DashboardSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot, nil
}

func (m *MockSnapshotStore) SetDashboard(ctx context.Context, snapshot *domain.DashboardSnapshot) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	return nil
}

// ──────────────────────────────────────────────
// MOCK CHANGE FEED
// ──────────────────────────────────────────────

// MockFeed hands out a channel the test writes events into.
type MockFeed struct {
	Events chan changefeed.Event

	SubscribeError error
}

// NewMockFeed creates a feed with a buffered event channel.
func NewMockFeed() *MockFeed {
	return &MockFeed{Events: make(chan changefeed.Event, 16)}
}

func (m *MockFeed) Subscribe(ctx context.Context) (<-chan changefeed.Event, error) {
	if m.SubscribeError != nil {
		return nil, m.SubscribeError
	}
	return m.Events, nil
}

// ──────────────────────────────────────────────
// MOCK EXPENSE AND USER REPOSITORIES
// ──────────────────────────────────────────────

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.Expense
}

// NewMockExpenseRepository creates a new mock expense repository.
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{expenses: make(map[string]*domain.Expense)}
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *expense
	m.expenses[expense.ID] = &copy
	return nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expense, ok := m.expenses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *expense
	return &copy, nil
}

func (m *MockExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var expenses []*domain.Expense
	for _, e := range m.expenses {
		copy := *e
		expenses = append(expenses, &copy)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
	return expenses, nil
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[expense.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *expense
	m.expenses[expense.ID] = &copy
	return nil
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrConflict
	}
	copy := *user
	m.users[user.Email] = &copy
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrNotFound
}

// Ensure mocks implement their interfaces.
var (
	_ repository.TripRepository        = (*MockTripRepository)(nil)
	_ repository.PaymentRepository     = (*MockPaymentRepository)(nil)
	_ repository.MasterRepository      = (*MockMasterRepository)(nil)
	_ repository.DeviceTokenRepository = (*MockDeviceTokenRepository)(nil)
	_ repository.ExpenseRepository     = (*MockExpenseRepository)(nil)
	_ repository.UserRepository        = (*MockUserRepository)(nil)
	_ repository.Transactor            = (*MockTransactor)(nil)
	_ push.Sender                      = (*MockSender)(nil)
	_ changefeed.Feed                  = (*MockFeed)(nil)
)
