package memory

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) live(now time.Time) bool { return now.Before(e.expiresAt) }

// UIStateRepository is an in-process repository.UIStateRepository for
// single-instance deployments without Redis.
type UIStateRepository struct {
	mu     sync.Mutex
	ttl    repository.TTLs
	now    func() time.Time
	flash  map[string]entry[[]domain.Flash]
	stash  map[string]entry[[]domain.ID]
	orders map[string]entry[[]domain.Order]
}

// NewUIStateRepository creates an empty in-memory repository.
func NewUIStateRepository(ttl repository.TTLs) *UIStateRepository {
	return &UIStateRepository{
		ttl:    ttl,
		now:    time.Now,
		flash:  make(map[string]entry[[]domain.Flash]),
		stash:  make(map[string]entry[[]domain.ID]),
		orders: make(map[string]entry[[]domain.Order]),
	}
}

func (r *UIStateRepository) PushFlash(_ context.Context, visitorID string, f domain.Flash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	e := r.flash[visitorID]
	if !e.live(now) {
		e.value = nil
	}
	e.value = append(e.value, f)
	e.expiresAt = now.Add(r.ttl.Flash)
	r.flash[visitorID] = e
	return nil
}

func (r *UIStateRepository) PopFlashes(_ context.Context, visitorID string) ([]domain.Flash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.flash[visitorID]
	delete(r.flash, visitorID)
	if !ok || !e.live(r.now()) {
		return []domain.Flash{}, nil
	}
	return e.value, nil
}

func (r *UIStateRepository) Stash(_ context.Context, visitorID string, ids []domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]domain.ID(nil), ids...)
	r.stash[visitorID] = entry[[]domain.ID]{value: cp, expiresAt: r.now().Add(r.ttl.Stash)}
	return nil
}

func (r *UIStateRepository) TakeStash(_ context.Context, visitorID string) ([]domain.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.stash[visitorID]
	delete(r.stash, visitorID)
	if !ok || !e.live(r.now()) {
		return nil, nil
	}
	return e.value, nil
}

func (r *UIStateRepository) PutOrders(_ context.Context, visitorID string, orders []domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]domain.Order(nil), orders...)
	r.orders[visitorID] = entry[[]domain.Order]{value: cp, expiresAt: r.now().Add(r.ttl.Orders)}
	return nil
}

func (r *UIStateRepository) Orders(_ context.Context, visitorID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.orders[visitorID]
	if !ok || !e.live(r.now()) {
		delete(r.orders, visitorID)
		return nil, apperrors.NotFound("orders cache", visitorID)
	}
	return append([]domain.Order(nil), e.value...), nil
}

func (r *UIStateRepository) DropOrders(_ context.Context, visitorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, visitorID)
	return nil
}

// Sweep drops expired entries. Callers run it periodically.
func (r *UIStateRepository) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, e := range r.flash {
		if !e.live(now) {
			delete(r.flash, k)
		}
	}
	for k, e := range r.stash {
		if !e.live(now) {
			delete(r.stash, k)
		}
	}
	for k, e := range r.orders {
		if !e.live(now) {
			delete(r.orders, k)
		}
	}
}

var _ repository.UIStateRepository = (*UIStateRepository)(nil)
