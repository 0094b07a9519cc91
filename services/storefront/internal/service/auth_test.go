package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

func TestAuth_Session(t *testing.T) {
	svc := NewAuthService(testState(), testLogger())
	ctx := context.Background()

	in := new(mockBackend)
	in.On("Me", mock.Anything).Return(&domain.Session{UserID: "u1", Email: "a@b.c"}, nil)
	assert.Equal(t, "u1", svc.Session(ctx, in).UserID)

	out := new(mockBackend)
	out.On("Me", mock.Anything).Return(nil, nil)
	assert.Nil(t, svc.Session(ctx, out))

	noID := new(mockBackend)
	noID.On("Me", mock.Anything).Return(&domain.Session{Email: "a@b.c"}, nil)
	assert.Nil(t, svc.Session(ctx, noID))

	failing := new(mockBackend)
	failing.On("Me", mock.Anything).Return(nil, errors.New("down"))
	assert.Nil(t, svc.Session(ctx, failing))
	failing.AssertNumberOfCalls(t, "Me", 1)
}

func TestAuth_Login(t *testing.T) {
	creds := domain.Credentials{Email: "a@b.c", Password: "rahasia"}
	b := new(mockBackend)
	b.On("Login", mock.Anything, creds).Return(&domain.Session{UserID: "u1"}, nil)

	svc := NewAuthService(testState(), testLogger())
	sess, err := svc.Login(context.Background(), b, "v1", creds)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)

	_, err = svc.Login(context.Background(), b, "v1", domain.Credentials{Email: "a@b.c"})
	var verr *validator.ValidationError
	assert.ErrorAs(t, err, &verr)
	b.AssertNumberOfCalls(t, "Login", 1)
}

func TestAuth_RegisterPasswordMismatchMakesNoCall(t *testing.T) {
	b := new(mockBackend)
	svc := NewAuthService(testState(), testLogger())

	err := svc.Register(context.Background(), b, SignupForm{Email: "a@b.c", Password: "x1", PasswordConfirm: "x2"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, b.Calls)
}

func TestAuth_Register(t *testing.T) {
	b := new(mockBackend)
	b.On("Signup", mock.Anything, domain.Credentials{Email: "a@b.c", Password: "x1"}).Return(nil)

	svc := NewAuthService(testState(), testLogger())
	require.NoError(t, svc.Register(context.Background(), b, SignupForm{Email: "a@b.c", Password: "x1", PasswordConfirm: "x1"}))
	b.AssertExpectations(t)
}

func TestAuth_LogoutDropsOrders(t *testing.T) {
	state := testState()
	ctx := context.Background()
	require.NoError(t, state.PutOrders(ctx, "v1", sampleOrders()))

	b := new(mockBackend)
	b.On("Logout", mock.Anything).Return(nil)

	require.NoError(t, state.PutOrders(ctx, "v1/u1", sampleOrders()))

	svc := NewAuthService(state, testLogger())
	require.NoError(t, svc.Logout(ctx, b, "v1", "v1/u1"))

	_, err := state.Orders(ctx, "v1")
	assert.Error(t, err)
	_, err = state.Orders(ctx, "v1/u1")
	assert.Error(t, err)
}

func TestAuth_LoginDropsOrders(t *testing.T) {
	state := testState()
	ctx := context.Background()
	require.NoError(t, state.PutOrders(ctx, "v1", sampleOrders()))
	require.NoError(t, state.PutOrders(ctx, "v1/u2", sampleOrders()))
	require.NoError(t, state.PutOrders(ctx, "v1/u1", sampleOrders()))

	creds := domain.Credentials{Email: "b@b.c", Password: "rahasia"}
	b := new(mockBackend)
	b.On("Login", mock.Anything, creds).Return(&domain.Session{UserID: "u2"}, nil)

	svc := NewAuthService(state, testLogger())
	_, err := svc.Login(ctx, b, "v1", creds)
	require.NoError(t, err)

	_, err = state.Orders(ctx, "v1")
	assert.Error(t, err)
	_, err = state.Orders(ctx, "v1/u2")
	assert.Error(t, err)
	_, err = state.Orders(ctx, "v1/u1")
	assert.NoError(t, err, "another user's entry is left to expire")
}

func TestAuth_LogoutFailure(t *testing.T) {
	b := new(mockBackend)
	b.On("Logout", mock.Anything).Return(errors.New("down"))

	svc := NewAuthService(testState(), testLogger())
	assert.Error(t, svc.Logout(context.Background(), b, "v1", "v1"))
}
