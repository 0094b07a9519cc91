package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readiness(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("backend", func(ctx context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler_NoCheckers(t *testing.T) {
	code, resp := readiness(t, NewHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestReadinessHandler_Outcomes(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("unreachable") }

	cases := []struct {
		name        string
		backend     Checker
		redis       Checker
		wantCode    int
		wantOverall Status
	}{
		{"all up", ok, ok, http.StatusOK, StatusUp},
		{"redis down degrades", ok, fail, http.StatusOK, StatusDegraded},
		{"backend down", fail, ok, http.StatusServiceUnavailable, StatusDown},
		{"both down", fail, fail, http.StatusServiceUnavailable, StatusDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler()
			h.RegisterCritical("backend", tc.backend)
			h.RegisterNonCritical("redis", tc.redis)

			code, resp := readiness(t, h)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantOverall, resp.Status)
			assert.True(t, resp.Checks["backend"].Critical)
			assert.False(t, resp.Checks["redis"].Critical)
		})
	}
}

func TestReadinessHandler_ReportsError(t *testing.T) {
	h := NewHandler()
	h.RegisterNonCritical("redis", func(context.Context) error { return errors.New("dial tcp: refused") })

	_, resp := readiness(t, h)
	assert.Equal(t, StatusDown, resp.Checks["redis"].Status)
	assert.Equal(t, "dial tcp: refused", resp.Checks["redis"].Error)
	assert.NotEmpty(t, resp.Checks["redis"].Latency)
}

func TestRegister_IsCriticalAndOverwrites(t *testing.T) {
	h := NewHandler()
	h.Register("backend", func(context.Context) error { return errors.New("fail") })
	h.Register("backend", func(context.Context) error { return nil })

	code, resp := readiness(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Checks, 1)
	assert.True(t, resp.Checks["backend"].Critical)
}

func TestReadinessHandler_ChecksHonourTimeout(t *testing.T) {
	h := NewHandler()
	h.timeout = 20 * time.Millisecond
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	code, resp := readiness(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline")
}
