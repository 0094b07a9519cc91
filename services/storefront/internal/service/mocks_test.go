package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/EcommerceGo/pkg/pagination"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testState() *memory.UIStateRepository {
	return memory.NewUIStateRepository(repository.DefaultTTLs())
}

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListProducts(ctx context.Context, p api.ListParams) (pagination.Page[domain.Product], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(pagination.Page[domain.Product]), args.Error(1)
}

func (m *mockBackend) SearchProducts(ctx context.Context, p api.ListParams) (pagination.Page[domain.Product], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(pagination.Page[domain.Product]), args.Error(1)
}

func (m *mockBackend) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockBackend) GetCart(ctx context.Context) ([]domain.CartItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *mockBackend) AddToCart(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockBackend) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockBackend) RemoveCartItem(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockBackend) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockBackend) AddAddress(ctx context.Context, a domain.NewAddress) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockBackend) DeleteAddress(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutResult), args.Error(1)
}

func (m *mockBackend) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockBackend) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockBackend) Me(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockBackend) Signup(ctx context.Context, creds domain.Credentials) error {
	return m.Called(ctx, creds).Error(0)
}

func (m *mockBackend) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ ProductSource   = (*mockBackend)(nil)
	_ CartBackend     = (*mockBackend)(nil)
	_ CheckoutBackend = (*mockBackend)(nil)
	_ OrderBackend    = (*mockBackend)(nil)
	_ AuthBackend     = (*mockBackend)(nil)
)

func products(n int, prefix string) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{ID: domain.ID(prefix + string(rune('a'+i%26))), Name: "P"}
	}
	return out
}

func productPage(n int) pagination.Page[domain.Product] {
	return pagination.Page[domain.Product]{Items: products(n, "p")}
}
