package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBreaker(name string) *Breaker {
	return NewBreaker(New(DefaultConfig()), BreakerConfig{
		Name:         name,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}, testLogger())
}

func get(ctx context.Context, b *Breaker, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	return b.Do(ctx, req)
}

func TestBreaker_ClosedState_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	cb := testBreaker("cb-closed")

	resp, err := get(context.Background(), cb, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreaker_5xxBecomesParsedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"SEARCH_ERROR","message":"index down"}}`))
	}))
	defer server.Close()

	cb := testBreaker("cb-parse")

	_, err := get(context.Background(), cb, server.URL)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "SEARCH_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "index down")
}

func TestBreaker_4xxPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cb := testBreaker("cb-4xx")

	for i := 0; i < 5; i++ {
		resp, err := get(context.Background(), cb, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreaker_TripsAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := testBreaker("cb-trip")

	for i := 0; i < 3; i++ {
		_, err := get(context.Background(), cb, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := get(context.Background(), cb, server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	healthy.Store(true)
	time.Sleep(80 * time.Millisecond)

	resp, err := get(context.Background(), cb, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreaker_CanceledRequestsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := testBreaker("cb-cancel")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := get(ctx, cb, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestStateValue(t *testing.T) {
	assert.Equal(t, 0.0, stateValue(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateValue(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateValue(gobreaker.StateOpen))
}

func TestBreaker_StateGauge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cb := testBreaker("cb-gauge")
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("cb-gauge")))

	for i := 0; i < 3; i++ {
		_, _ = get(context.Background(), cb, server.URL)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues("cb-gauge")))
}
