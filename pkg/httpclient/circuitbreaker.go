package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// breakerWindow is how often closed-state counts reset.
const breakerWindow = time.Minute

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open).",
	},
	[]string{"name"},
)

// BreakerConfig tunes when the breaker opens. It opens once MinRequests
// calls inside one window have failed at FailureRatio or worse, and tries a
// single call again after Timeout.
type BreakerConfig struct {
	Name         string
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Breaker guards a Client. Transport errors and 5xx replies count as
// failures; 4xx replies and canceled requests do not.
type Breaker struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[*http.Response]
	name   string
}

// NewBreaker wraps client.
func NewBreaker(client *Client, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	b := &Breaker{client: client, name: cfg.Name}
	b.cb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    breakerWindow,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	breakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))
	return b
}

// Do sends req unless the breaker is open. A 5xx reply is returned as the
// error parsed from its body, never as a response.
func (b *Breaker) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp, b.name)
		}
		return resp, nil
	})
}

// State is the breaker's current state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
