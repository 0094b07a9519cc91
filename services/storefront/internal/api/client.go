package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// maxBodyBytes caps how much of a backend reply is read.
const maxBodyBytes = 4 << 20

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.Breaker satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the ShopEasy REST backend.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

// New creates a backend client rooted at baseURL.
func New(baseURL string, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Forward returns a Conn that sends the given browser cookies with every
// backend call and records the cookies the backend sets in return.
func (c *Client) Forward(cookies []*http.Cookie) *Conn {
	conn := &Conn{client: c}
	for _, ck := range cookies {
		conn.cookies = append(conn.cookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return conn
}

// Conn is a backend session scoped to one browser request. It is safe for
// concurrent use.
type Conn struct {
	client *Client

	mu         sync.Mutex
	cookies    []*http.Cookie
	setCookies []string
}

// SetCookies returns the raw Set-Cookie values the backend sent during this
// request, in order, for relaying to the browser.
func (c *Conn) SetCookies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.setCookies))
	copy(out, c.setCookies)
	return out
}

func (c *Conn) forwardedCookies() []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*http.Cookie, len(c.cookies))
	copy(out, c.cookies)
	return out
}

// absorb records Set-Cookie headers and updates the forwarded cookies so
// later calls in the same request see a fresh login or logout.
func (c *Conn) absorb(resp *http.Response) {
	raw := resp.Header.Values("Set-Cookie")
	if len(raw) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCookies = append(c.setCookies, raw...)

	for _, set := range resp.Cookies() {
		kept := c.cookies[:0]
		for _, ck := range c.cookies {
			if ck.Name != set.Name {
				kept = append(kept, ck)
			}
		}
		c.cookies = kept
		if set.MaxAge >= 0 && set.Value != "" && (set.Expires.IsZero() || set.Expires.After(time.Now())) {
			c.cookies = append(c.cookies, &http.Cookie{Name: set.Name, Value: set.Value})
		}
	}
}

// call describes one backend request. endpoint is the metric label.
type call struct {
	endpoint string
	method   string
	path     string
	body     any
}

// do sends the call and returns the raw 2xx body.
func (c *Conn) do(ctx context.Context, cl call) ([]byte, error) {
	start := time.Now()
	body, err := c.roundTrip(ctx, cl)
	outcome := outcomeOf(err)
	observeBackendCall(cl.endpoint, outcome, time.Since(start))

	if err != nil && outcome != outcomeCanceled {
		logger.WithContext(ctx, c.client.logger).WarnContext(ctx, "backend call failed",
			slog.String("endpoint", cl.endpoint),
			slog.Int("status", apperrors.HTTPStatus(err)),
			slog.String("error", err.Error()),
		)
	}
	return body, err
}

func (c *Conn) roundTrip(ctx context.Context, cl call) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", cl.endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.client.baseURL+cl.path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", cl.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	for _, ck := range c.forwardedCookies() {
		req.AddCookie(ck)
	}

	resp, err := c.client.http.Do(ctx, req)
	if err != nil {
		return nil, transportError(ctx, cl.endpoint, err)
	}
	defer resp.Body.Close()

	c.absorb(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, "backend")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Malformed(cl.endpoint, err)
	}
	return body, nil
}

func transportError(ctx context.Context, endpoint string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case ctx.Err() != nil:
		return fmt.Errorf("call backend %s: %w", endpoint, ctx.Err())
	case errors.Is(err, httpclient.ErrCircuitOpen):
		return apperrors.Unavailable("backend is temporarily unavailable", err)
	default:
		return apperrors.Unavailable("backend unreachable", err)
	}
}
