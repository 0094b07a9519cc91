package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// CartBackend is the part of the backend the cart page uses.
type CartBackend interface {
	GetCart(ctx context.Context) ([]domain.CartItem, error)
	AddToCart(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, productID string) error
}

// Selection is the set of checked cart rows carried by a form post or
// redirect. When Explicit is false the backend's selected flags apply.
type Selection struct {
	Explicit bool
	IDs      []domain.ID
}

func (s Selection) has(id domain.ID) bool {
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// CartRow is one rendered cart line.
type CartRow struct {
	domain.CartItem
	Checked bool
}

// CartView is the cart page model. Everything is derived from the checked
// rows.
type CartView struct {
	Rows        []CartRow
	Total       domain.Amount
	Checked     int
	AllSelected bool
}

// AnySelected reports whether at least one row is checked.
func (v *CartView) AnySelected() bool { return v.Checked > 0 }

// SelectedIDs lists the checked product ids in cart order.
func (v *CartView) SelectedIDs() []domain.ID {
	ids := make([]domain.ID, 0, v.Checked)
	for _, r := range v.Rows {
		if r.Checked {
			ids = append(ids, r.ProductID)
		}
	}
	return ids
}

// BuildCartView applies sel to items and derives totals.
func BuildCartView(items []domain.CartItem, sel Selection) *CartView {
	v := &CartView{Rows: make([]CartRow, 0, len(items))}
	for _, it := range items {
		checked := it.Selected
		if sel.Explicit {
			checked = sel.has(it.ProductID)
		}
		v.Rows = append(v.Rows, CartRow{CartItem: it, Checked: checked})
		if checked {
			v.Checked++
			v.Total += it.Subtotal()
		}
	}
	v.AllSelected = len(v.Rows) > 0 && v.Checked == len(v.Rows)
	return v
}

// BadgeCount is the header cart badge: the sum of quantities.
func BadgeCount(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		q := it.Quantity
		if q < 1 {
			q = 1
		}
		n += q
	}
	return n
}

// NextQuantity applies a stepper delta, never going below 1.
func NextQuantity(current, delta int) int {
	if q := current + delta; q > 1 {
		return q
	}
	return 1
}

// BulkResult reports a sequential multi-row delete.
type BulkResult struct {
	Removed int
	Failed  []domain.ID
}

// CartService implements the cart page actions.
type CartService struct {
	state  repository.UIStateRepository
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(state repository.UIStateRepository, logger *slog.Logger) *CartService {
	return &CartService{state: state, logger: logger}
}

// Load fetches the cart and applies the selection.
func (s *CartService) Load(ctx context.Context, b CartBackend, sel Selection) (*CartView, error) {
	items, err := b.GetCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return BuildCartView(items, sel), nil
}

// Badge returns the badge count, or 0 when the cart cannot be read.
func (s *CartService) Badge(ctx context.Context, b CartBackend) int {
	items, err := b.GetCart(ctx)
	if err != nil {
		return 0
	}
	return BadgeCount(items)
}

// Add puts one unit of a product in the cart.
func (s *CartService) Add(ctx context.Context, b CartBackend, productID string) error {
	if err := b.AddToCart(ctx, productID, 1); err != nil {
		return fmt.Errorf("add %s to cart: %w", productID, err)
	}
	return nil
}

// Step changes a row quantity by delta.
func (s *CartService) Step(ctx context.Context, b CartBackend, productID string, current, delta int) error {
	qty := NextQuantity(current, delta)
	if err := b.UpdateCartItem(ctx, productID, qty); err != nil {
		return fmt.Errorf("update cart item %s: %w", productID, err)
	}
	return nil
}

// Remove deletes one row.
func (s *CartService) Remove(ctx context.Context, b CartBackend, productID string) error {
	if err := b.RemoveCartItem(ctx, productID); err != nil {
		return fmt.Errorf("remove cart item %s: %w", productID, err)
	}
	return nil
}

// RemoveMany deletes rows one at a time. A failure does not stop the rest.
func (s *CartService) RemoveMany(ctx context.Context, b CartBackend, ids []domain.ID) BulkResult {
	var res BulkResult
	for _, id := range ids {
		if ctx.Err() != nil {
			res.Failed = append(res.Failed, id)
			continue
		}
		if err := b.RemoveCartItem(ctx, id.String()); err != nil {
			s.logger.WarnContext(ctx, "bulk delete item failed",
				slog.String("product_id", id.String()),
				slog.String("error", err.Error()),
			)
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Removed++
	}
	return res
}

// StashForCheckout hands the selected ids to the checkout page.
func (s *CartService) StashForCheckout(ctx context.Context, visitorID string, ids []domain.ID) error {
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	if err := s.state.Stash(ctx, visitorID, ids); err != nil {
		return fmt.Errorf("stash checkout selection: %w", err)
	}
	return nil
}
