package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// OrderBackend is the part of the backend the orders pages use.
type OrderBackend interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

// FilterOrders keeps orders whose id contains term, ignoring case. An empty
// term keeps everything.
func FilterOrders(orders []domain.Order, term string) []domain.Order {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return orders
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.OrderID.String()), term) {
			out = append(out, o)
		}
	}
	return out
}

// OrdersOwner names whose order list is cached: the visitor alone for a
// guest, the visitor and user together once someone is logged in.
func OrdersOwner(visitorID string, sess *domain.Session) string {
	if !sess.Authenticated() {
		return visitorID
	}
	return visitorID + "/" + sess.UserID
}

// OrderService implements the orders pages.
type OrderService struct {
	state  repository.UIStateRepository
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(state repository.UIStateRepository, logger *slog.Logger) *OrderService {
	return &OrderService{state: state, logger: logger}
}

// List returns owner's orders filtered by term. A plain visit (empty term)
// always fetches and refreshes the cache; a filtered visit reuses the cache
// and fetches only on a miss.
func (s *OrderService) List(ctx context.Context, b OrderBackend, owner, term string) ([]domain.Order, error) {
	if strings.TrimSpace(term) != "" {
		cached, err := s.state.Orders(ctx, owner)
		if err == nil {
			return FilterOrders(cached, term), nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read orders cache", slog.String("error", err.Error()))
		}
	}

	orders, err := b.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := s.state.PutOrders(ctx, owner, orders); err != nil {
		s.logger.WarnContext(ctx, "failed to cache orders", slog.String("error", err.Error()))
	}
	return FilterOrders(orders, term), nil
}

// Get fetches one order.
func (s *OrderService) Get(ctx context.Context, b OrderBackend, id string) (*domain.Order, error) {
	o, err := b.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}
