package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"roadlines/internal/domain"
	"roadlines/internal/repository"
)

// ──────────────────────────────────────────────
// IN-MEMORY REPOSITORIES
// ──────────────────────────────────────────────

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[string]*domain.Trip
}

func newFakeTripRepo(trips ...*domain.Trip) *fakeTripRepo {
	r := &fakeTripRepo{trips: make(map[string]*domain.Trip)}
	for _, t := range trips {
		r.trips[t.ID] = t
	}
	return r
}

func (r *fakeTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *trip
	r.trips[trip.ID] = &copy
	return nil
}

func (r *fakeTripRepo) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok || t.IsDeleted {
		return nil, repository.ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (r *fakeTripRepo) ListActive(ctx context.Context) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Trip
	for _, t := range r.trips {
		if !t.IsDeleted {
			copy := *t
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTripRepo) ListUnloadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	return nil, nil
}

func (r *fakeTripRepo) ListLoadedOnOrBefore(ctx context.Context, cutoff time.Time) ([]*domain.Trip, error) {
	return nil, nil
}

func (r *fakeTripRepo) Update(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	r.trips[trip.ID] = &copy
	return nil
}

func (r *fakeTripRepo) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok || t.IsDeleted {
		return repository.ErrNotFound
	}
	t.IsDeleted = true
	return nil
}

func (r *fakeTripRepo) AppendPOD(ctx context.Context, id string, urls []string) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok || t.IsDeleted {
		return nil, repository.ErrNotFound
	}
	t.PODURLs = append(t.PODURLs, urls...)
	t.PODStatus = domain.PODStatusReceived
	copy := *t
	return &copy, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*domain.Payment
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *payment
	r.payments = append(r.payments, &copy)
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id && !p.IsDeleted {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePaymentRepo) ListActive(ctx context.Context) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListByTripID(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	all, _ := r.ListActive(ctx)
	var out []*domain.Payment
	for _, p := range all {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id && !p.IsDeleted {
			p.IsDeleted = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMasterRepo struct{}

func (fakeMasterRepo) EnsureExists(ctx context.Context, master *domain.Master) error { return nil }

func (fakeMasterRepo) List(ctx context.Context, kind domain.MasterKind) ([]*domain.Master, error) {
	return nil, nil
}

type fakeTransactor struct {
	repos repository.TxRepositories
}

func (t fakeTransactor) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	return fn(t.repos)
}

type fakeTokenRepo struct {
	tokens  []string
	listErr error
}

func (r *fakeTokenRepo) Upsert(ctx context.Context, token *domain.DeviceToken) (bool, error) {
	return true, nil
}

func (r *fakeTokenRepo) ListTokens(ctx context.Context) ([]string, error) {
	return r.tokens, r.listErr
}

func (r *fakeTokenRepo) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	return int64(len(tokens)), nil
}
