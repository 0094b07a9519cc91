package api

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

const (
	outcomeOK          = "ok"
	outcomeClientError = "client_error"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
	outcomeCanceled    = "canceled"
)

var backendCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "storefront_backend_request_duration_seconds",
		Help:    "Duration of storefront calls to the REST backend",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "outcome"},
)

func observeBackendCall(endpoint, outcome string, d time.Duration) {
	backendCallDuration.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, context.Canceled) {
		return outcomeCanceled
	}
	if errors.Is(err, apperrors.ErrServiceUnavail) {
		return outcomeUnavailable
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status >= 400 && appErr.Status < 500 {
		return outcomeClientError
	}
	return outcomeError
}
