package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// CheckoutBackend is the part of the backend the checkout page uses.
type CheckoutBackend interface {
	GetCart(ctx context.Context) ([]domain.CartItem, error)
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	AddAddress(ctx context.Context, a domain.NewAddress) error
	DeleteAddress(ctx context.Context, id string) error
	Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error)
}

// CheckoutView is the checkout page model.
type CheckoutView struct {
	Items      []domain.CartItem
	Total      domain.Amount
	ProductIDs []domain.ID

	Addresses       []domain.Address
	AddressesFailed bool
	SelectedAddress domain.ID
}

// NoAddresses reports whether the address list loaded and is empty.
func (v *CheckoutView) NoAddresses() bool {
	return !v.AddressesFailed && len(v.Addresses) == 0
}

// Selected returns the chosen address, if it is in the list.
func (v *CheckoutView) Selected() (domain.Address, bool) {
	for _, a := range v.Addresses {
		if a.ID == v.SelectedAddress {
			return a, true
		}
	}
	return domain.Address{}, false
}

// FilterItems keeps the items whose product id is in ids. An empty ids
// keeps everything.
func FilterItems(items []domain.CartItem, ids []domain.ID) []domain.CartItem {
	if len(ids) == 0 {
		return items
	}
	want := make(map[domain.ID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.CartItem, 0, len(ids))
	for _, it := range items {
		if _, ok := want[it.ProductID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// SumItems is Σ price×quantity.
func SumItems(items []domain.CartItem) domain.Amount {
	var total domain.Amount
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// DefaultAddress returns the id of the default address, else "".
func DefaultAddress(addrs []domain.Address) domain.ID {
	for _, a := range addrs {
		if a.IsDefault {
			return a.ID
		}
	}
	return ""
}

// CheckoutService implements the checkout page.
type CheckoutService struct {
	state  repository.UIStateRepository
	logger *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(state repository.UIStateRepository, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{state: state, logger: logger}
}

// TakeSelection consumes the ids stashed by the cart page. It returns nil
// when there is nothing stashed or the stash cannot be read.
func (s *CheckoutService) TakeSelection(ctx context.Context, visitorID string) []domain.ID {
	ids, err := s.state.TakeStash(ctx, visitorID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read checkout stash", slog.String("error", err.Error()))
		return nil
	}
	return ids
}

// Prepare loads the cart filtered to ids and the address list. An unknown
// or empty selection falls back to the default address only when
// pickDefault is set. A failed address load is reported on the view, not as
// an error.
func (s *CheckoutService) Prepare(ctx context.Context, b CheckoutBackend, ids []domain.ID, selected domain.ID, pickDefault bool) (*CheckoutView, error) {
	items, err := b.GetCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	items = FilterItems(items, ids)

	v := &CheckoutView{
		Items:      items,
		Total:      SumItems(items),
		ProductIDs: ids,
	}

	addrs, err := b.ListAddresses(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load addresses", slog.String("error", err.Error()))
		v.AddressesFailed = true
		return v, nil
	}
	v.Addresses = addrs

	v.SelectedAddress = selected
	if _, ok := v.Selected(); !ok {
		v.SelectedAddress = ""
		if pickDefault {
			v.SelectedAddress = DefaultAddress(addrs)
		}
	}
	return v, nil
}

// AddAddress validates and saves a new address. Validation failures come
// back as *validator.ValidationError.
func (s *CheckoutService) AddAddress(ctx context.Context, b CheckoutBackend, a domain.NewAddress) error {
	if err := validator.Validate(a); err != nil {
		return err
	}
	if err := b.AddAddress(ctx, a); err != nil {
		return fmt.Errorf("add address: %w", err)
	}
	return nil
}

// DeleteAddress removes an address.
func (s *CheckoutService) DeleteAddress(ctx context.Context, b CheckoutBackend, id domain.ID) error {
	if id == "" {
		return ErrNothingSelected
	}
	if err := b.DeleteAddress(ctx, id.String()); err != nil {
		return fmt.Errorf("delete address %s: %w", id, err)
	}
	return nil
}

// Confirm places the order. Without an address it returns ErrNoAddress and
// makes no backend call. A successful checkout evicts owner's cached order
// list.
func (s *CheckoutService) Confirm(ctx context.Context, b CheckoutBackend, owner string, addressID domain.ID, ids []domain.ID) (*domain.CheckoutResult, error) {
	if addressID == "" {
		return nil, ErrNoAddress
	}

	res, err := b.Checkout(ctx, domain.CheckoutRequest{AddressID: addressID, ProductIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if err := s.state.DropOrders(ctx, owner); err != nil {
		s.logger.WarnContext(ctx, "failed to evict orders cache", slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("order_id", res.OrderID.String()),
		slog.Int("items", len(ids)),
	)
	return res, nil
}
