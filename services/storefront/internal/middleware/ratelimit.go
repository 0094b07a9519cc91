package middleware

import (
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// client tracks a rate limiter per client IP.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientStore manages per-IP rate limiters and evicts idle ones.
type clientStore struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     int
	burst   int
	ttl     time.Duration
	nowFunc func() time.Time
}

func newClientStore(rps, burst int, ttl time.Duration) *clientStore {
	return &clientStore{
		clients: make(map[string]*client),
		rps:     rps,
		burst:   burst,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (s *clientStore) limiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.clients[ip] = c
	}
	c.lastSeen = s.nowFunc()
	return c.limiter
}

func (s *clientStore) cleanupLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-stop:
			return
		}
	}
}

func (s *clientStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for ip, c := range s.clients {
		if now.Sub(c.lastSeen) > s.ttl {
			delete(s.clients, ip)
		}
	}
}

func (s *clientStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

var tooManyPage = template.Must(template.New("429").Parse(`<!doctype html>
<html lang="id"><head><meta charset="utf-8"><title>Terlalu banyak permintaan</title></head>
<body><h1>Terlalu banyak permintaan</h1><p>Coba lagi sebentar lagi.</p><p><a href="{{.}}">Kembali</a></p></body></html>`))

// RateLimiter enforces per-IP token bucket limits on state-changing
// requests. Safe methods (GET, HEAD, OPTIONS) are never limited.
type RateLimiter struct {
	store  *clientStore
	logger *slog.Logger
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter starts a limiter allowing rps requests per second with the
// given burst. Call Close to stop its cleanup goroutine.
func NewRateLimiter(rps, burst int, logger *slog.Logger) *RateLimiter {
	const cleanupInterval = 3 * time.Minute
	rl := &RateLimiter{
		store:  newClientStore(rps, burst, cleanupInterval),
		logger: logger,
		stop:   make(chan struct{}),
	}
	go rl.store.cleanupLoop(rl.stop)
	return rl
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// Handler returns the middleware. Limited requests get a 429 HTML page.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.store.limiter(ip).Allow() {
			rl.logger.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			back := backLink(r.Referer(), r.Host)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = tooManyPage.Execute(w, back)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// backLink returns ref when it points at this site, else "/".
func backLink(ref, host string) string {
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return ref
	}
	if sameHost(ref, host) {
		return ref
	}
	return "/"
}

func sameHost(rawURL, host string) bool {
	rest, ok := strings.CutPrefix(rawURL, "http://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "https://")
	}
	if !ok {
		return false
	}
	h, _, _ := strings.Cut(rest, "/")
	return h == host
}

// clientIP extracts the client IP address from the request. It checks
// X-Forwarded-For and X-Real-IP before falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
