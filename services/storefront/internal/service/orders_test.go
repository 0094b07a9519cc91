package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

func sampleOrders() []domain.Order {
	return []domain.Order{
		{OrderID: "ORD-ABC-1", Status: domain.StatusPending},
		{OrderID: "ord-xyz-2", Status: domain.StatusPaid},
		{OrderID: "INV-3", Status: domain.StatusDelivered},
	}
}

func TestFilterOrders(t *testing.T) {
	assert.Len(t, FilterOrders(sampleOrders(), ""), 3)
	assert.Len(t, FilterOrders(sampleOrders(), "ord"), 2)
	assert.Len(t, FilterOrders(sampleOrders(), " XYZ "), 1)
	assert.Empty(t, FilterOrders(sampleOrders(), "nope"))
}

func TestOrdersOwner(t *testing.T) {
	assert.Equal(t, "v1", OrdersOwner("v1", nil))
	assert.Equal(t, "v1", OrdersOwner("v1", &domain.Session{}))
	assert.Equal(t, "v1/u1", OrdersOwner("v1", &domain.Session{UserID: "u1"}))
	assert.NotEqual(t,
		OrdersOwner("v1", &domain.Session{UserID: "alice"}),
		OrdersOwner("v1", &domain.Session{UserID: "bob"}))
}

func TestOrders_CacheIsPerOwner(t *testing.T) {
	alice := []domain.Order{{OrderID: "ORD-ALICE"}}
	bob := []domain.Order{{OrderID: "ORD-BOB"}}
	b := new(mockBackend)
	b.On("ListOrders", mock.Anything).Return(alice, nil).Once()
	b.On("ListOrders", mock.Anything).Return(bob, nil).Once()

	svc := NewOrderService(testState(), testLogger())
	ctx := context.Background()

	_, err := svc.List(ctx, b, "v1/alice", "")
	require.NoError(t, err)

	got, err := svc.List(ctx, b, "v1/bob", "ord")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ID("ORD-BOB"), got[0].OrderID)
	b.AssertNumberOfCalls(t, "ListOrders", 2)
}

func TestOrders_PlainVisitFetchesAndCaches(t *testing.T) {
	b := new(mockBackend)
	b.On("ListOrders", mock.Anything).Return(sampleOrders(), nil).Once()

	state := testState()
	svc := NewOrderService(state, testLogger())
	ctx := context.Background()

	got, err := svc.List(ctx, b, "v1", "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	filtered, err := svc.List(ctx, b, "v1", "inv")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, domain.ID("INV-3"), filtered[0].OrderID)

	b.AssertNumberOfCalls(t, "ListOrders", 1)
}

func TestOrders_FilterOnCacheMissFetchesOnce(t *testing.T) {
	b := new(mockBackend)
	b.On("ListOrders", mock.Anything).Return(sampleOrders(), nil).Once()

	svc := NewOrderService(testState(), testLogger())
	ctx := context.Background()

	got, err := svc.List(ctx, b, "v1", "abc")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(ctx, b, "v1", "xyz")
	require.NoError(t, err)
	b.AssertNumberOfCalls(t, "ListOrders", 1)
}

func TestOrders_ListFailure(t *testing.T) {
	b := new(mockBackend)
	b.On("ListOrders", mock.Anything).Return(nil, errors.New("down"))

	svc := NewOrderService(testState(), testLogger())
	_, err := svc.List(context.Background(), b, "v1", "")
	assert.Error(t, err)
}

func TestOrders_Get(t *testing.T) {
	b := new(mockBackend)
	b.On("GetOrder", mock.Anything, "ORD-1").Return(&domain.Order{OrderID: "ORD-1"}, nil)
	b.On("GetOrder", mock.Anything, "ORD-2").Return(nil, errors.New("not found"))

	svc := NewOrderService(testState(), testLogger())
	o, err := svc.Get(context.Background(), b, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("ORD-1"), o.OrderID)

	_, err = svc.Get(context.Background(), b, "ORD-2")
	assert.Error(t, err)
}
