package repository

import (
	"context"
	"time"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// UIStateRepository keeps per-visitor state that outlives a single request.
type UIStateRepository interface {
	// PushFlash queues a notification for the visitor's next page.
	PushFlash(ctx context.Context, visitorID string, f domain.Flash) error

	// PopFlashes returns and clears every queued notification, oldest first.
	PopFlashes(ctx context.Context, visitorID string) ([]domain.Flash, error)

	// Stash stores the product ids picked for checkout, replacing any earlier stash.
	Stash(ctx context.Context, visitorID string, ids []domain.ID) error

	// TakeStash returns the stashed ids and deletes them in the same step.
	// A missing stash yields nil and no error.
	TakeStash(ctx context.Context, visitorID string) ([]domain.ID, error)

	// PutOrders caches the visitor's order list.
	PutOrders(ctx context.Context, visitorID string, orders []domain.Order) error

	// Orders returns the cached order list or a not-found error.
	Orders(ctx context.Context, visitorID string) ([]domain.Order, error)

	// DropOrders evicts the cached order list.
	DropOrders(ctx context.Context, visitorID string) error
}

// TTLs bounds how long each kind of UI state lives.
type TTLs struct {
	Flash  time.Duration
	Stash  time.Duration
	Orders time.Duration
}

// DefaultTTLs returns the lifetimes used when none are configured.
func DefaultTTLs() TTLs {
	return TTLs{
		Flash:  time.Minute,
		Stash:  10 * time.Minute,
		Orders: 5 * time.Minute,
	}
}
