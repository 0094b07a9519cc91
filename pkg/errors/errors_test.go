package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden,
		ErrInternal, ErrConflict, ErrGone, ErrServiceUnavail,
		ErrUpstream, ErrMalformedResponse,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("dial tcp: refused")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: dial tcp: refused", withInner.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "order not found"}
	assert.Equal(t, "NOT_FOUND: order not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "p-1"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid", InvalidInput("bad quantity"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("login required"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("nope"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("dup"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"gone", Gone("expired"), "GONE", http.StatusGone, ErrGone},
		{"unavailable", Unavailable("backend down", nil), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
		{"upstream", Upstream(500, "", "boom"), "UPSTREAM_ERROR", http.StatusBadGateway, ErrUpstream},
		{"malformed", Malformed("cart", fmt.Errorf("eof")), "MALFORMED_RESPONSE", http.StatusBadGateway, ErrMalformedResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.Status)
			assert.True(t, errors.Is(tc.err, tc.sentinel))
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("order", "ORD-9")
	assert.Equal(t, "order with id ORD-9 not found", err.Message)
}

func TestUnavailable_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("circuit open")
	err := Unavailable("backend down", cause)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrServiceUnavail))
}

func TestInternal_WrapsOriginal(t *testing.T) {
	inner := fmt.Errorf("template exec")
	err := Internal(inner)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	cases := map[error]int{
		Wrap(ErrNotFound, "get order"):          http.StatusNotFound,
		Wrap(ErrUnauthorized, "get cart"):       http.StatusUnauthorized,
		Wrap(ErrMalformedResponse, "list"):      http.StatusBadGateway,
		Wrap(ErrServiceUnavail, "checkout"):     http.StatusServiceUnavailable,
		fmt.Errorf("something else entirely"):   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsUnauthorized(Unauthorized("x")))
	assert.True(t, IsUnauthorized(Wrap(ErrUnauthorized, "me")))
	assert.False(t, IsUnauthorized(NotFound("cart", "1")))
	assert.True(t, IsNotFound(NotFound("cart", "1")))
	assert.False(t, IsNotFound(nil))
}
