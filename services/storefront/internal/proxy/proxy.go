package proxy

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
)

var proxyErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_proxy_errors_total",
		Help: "Requests the backend pass-through proxy could not complete.",
	},
	[]string{"route"},
)

var badGatewayPage = template.Must(template.New("502").Parse(`<!doctype html>
<html lang="id"><head><meta charset="utf-8"><title>Layanan tidak tersedia</title></head>
<body><h1>Layanan tidak tersedia</h1><p>Server sedang tidak dapat dihubungi. Silakan coba lagi.</p><p><a href="{{.}}">Kembali</a></p></body></html>`))

// BackendProxy passes browser navigations straight through to the REST
// backend. Redirects and Set-Cookie headers from the backend reach the
// browser unchanged.
type BackendProxy struct {
	target *url.URL
	local  []string
	proxy  *httputil.ReverseProxy
	logger *slog.Logger
}

// New creates a proxy to the backend at rawURL. Cookies named in local are
// stripped before the request leaves. A nil transport means
// http.DefaultTransport.
func New(rawURL string, transport http.RoundTripper, logger *slog.Logger, local ...string) (*BackendProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute, got %q", rawURL)
	}

	bp := &BackendProxy{target: target, local: local, logger: logger}
	bp.proxy = &httputil.ReverseProxy{
		Rewrite:      bp.rewrite,
		Transport:    transport,
		ErrorHandler: bp.errorHandler,
	}

	logger.Info("registered backend proxy", slog.String("target", target.String()))
	return bp, nil
}

func (bp *BackendProxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(bp.target)
	pr.SetXForwarded()
	pr.Out.Host = bp.target.Host

	cookies := api.ForwardableCookies(pr.In.Cookies(), bp.local...)
	pr.Out.Header.Del("Cookie")
	for _, ck := range cookies {
		pr.Out.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
}

// Handler returns the proxy. route labels its error metric.
func (bp *BackendProxy) Handler(route string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(withRoute(r.Context(), route))
		bp.proxy.ServeHTTP(w, r)
	})
}

func (bp *BackendProxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	route := routeFrom(r.Context())
	proxyErrors.WithLabelValues(route).Inc()
	bp.logger.ErrorContext(r.Context(), "proxy error",
		slog.String("route", route),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	back := "/"
	if strings.HasPrefix(r.URL.Path, "/api/pay/") {
		back = "/orders/" + url.PathEscape(strings.TrimPrefix(r.URL.Path, "/api/pay/"))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_ = badGatewayPage.Execute(w, back)
}
