package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

const (
	flashPrefix  = "storefront:flash:"
	stashPrefix  = "storefront:stash:"
	ordersPrefix = "storefront:orders:"
)

// UIStateRepository implements repository.UIStateRepository using Redis.
type UIStateRepository struct {
	client redis.UniversalClient
	ttl    repository.TTLs
}

// NewUIStateRepository creates a new Redis-backed UI state repository.
func NewUIStateRepository(client redis.UniversalClient, ttl repository.TTLs) *UIStateRepository {
	return &UIStateRepository{
		client: client,
		ttl:    ttl,
	}
}

// PushFlash appends a notification and refreshes the list expiry.
func (r *UIStateRepository) PushFlash(ctx context.Context, visitorID string, f domain.Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}

	key := flashPrefix + visitorID
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, data)
		p.Expire(ctx, key, r.ttl.Flash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push flash: %w", err)
	}
	return nil
}

// PopFlashes reads and deletes the notification list atomically.
func (r *UIStateRepository) PopFlashes(ctx context.Context, visitorID string) ([]domain.Flash, error) {
	key := flashPrefix + visitorID

	var lrange *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		lrange = p.LRange(ctx, key, 0, -1)
		p.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis pop flashes: %w", err)
	}

	raw := lrange.Val()
	flashes := make([]domain.Flash, 0, len(raw))
	for _, item := range raw {
		var f domain.Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

// Stash stores the checkout selection.
func (r *UIStateRepository) Stash(ctx context.Context, visitorID string, ids []domain.ID) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal stash: %w", err)
	}
	if err := r.client.Set(ctx, stashPrefix+visitorID, data, r.ttl.Stash).Err(); err != nil {
		return fmt.Errorf("redis set stash: %w", err)
	}
	return nil
}

// TakeStash consumes the checkout selection with GETDEL.
func (r *UIStateRepository) TakeStash(ctx context.Context, visitorID string) ([]domain.ID, error) {
	data, err := r.client.GetDel(ctx, stashPrefix+visitorID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis getdel stash: %w", err)
	}

	var ids []domain.ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal stash: %w", err)
	}
	return ids, nil
}

// PutOrders caches the order list.
func (r *UIStateRepository) PutOrders(ctx context.Context, visitorID string, orders []domain.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}
	if err := r.client.Set(ctx, ordersPrefix+visitorID, data, r.ttl.Orders).Err(); err != nil {
		return fmt.Errorf("redis set orders: %w", err)
	}
	return nil
}

// Orders returns the cached order list.
func (r *UIStateRepository) Orders(ctx context.Context, visitorID string) ([]domain.Order, error) {
	data, err := r.client.Get(ctx, ordersPrefix+visitorID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("orders cache", visitorID)
		}
		return nil, fmt.Errorf("redis get orders: %w", err)
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return orders, nil
}

// DropOrders evicts the cached order list.
func (r *UIStateRepository) DropOrders(ctx context.Context, visitorID string) error {
	if err := r.client.Del(ctx, ordersPrefix+visitorID).Err(); err != nil {
		return fmt.Errorf("redis del orders: %w", err)
	}
	return nil
}
