package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/pkg/health"
	pkgmiddleware "github.com/utafrali/EcommerceGo/pkg/middleware"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/config"
	sfmiddleware "github.com/utafrali/EcommerceGo/services/storefront/internal/middleware"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/proxy"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

const serviceName = "storefront"

// staticMaxAge is the browser cache lifetime of /static assets, in seconds.
const staticMaxAge = 24 * 60 * 60

// quietPaths are only logged and traced when something goes wrong.
var quietPaths = []string{"/health", "/metrics", "/static", "/debug"}

// Handlers groups the page handlers mounted by NewRouter.
type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Auth     *AuthHandler
	Theme    *ThemeHandler
}

// NewRouter creates the chi router with the global middleware, the
// operational endpoints, static assets, the pay proxy and every page.
func NewRouter(
	cfg *config.Config,
	pages *Pages,
	h Handlers,
	pay *proxy.BackendProxy,
	healthHandler *health.Handler,
	limiter *sfmiddleware.RateLimiter,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout(cfg)))
	r.Use(pkgmiddleware.RequestLogging(logger, quietPaths...))
	r.Use(pkgmiddleware.PrometheusMetrics(serviceName))
	r.Use(pkgmiddleware.Tracing(serviceName, quietPaths...))

	// Health check endpoints.
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	// Metrics endpoint with IP allowlist protection.
	r.With(pkgmiddleware.IPAllowlist(cfg.MetricsAllowedCIDRs, logger)).Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	pkgmiddleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.With(pkgmiddleware.CacheControl(staticMaxAge)).Handle("/static/*", http.StripPrefix("/static/", view.Static()))

	r.Group(func(r chi.Router) {
		r.Use(sfmiddleware.Visitor(sfmiddleware.VisitorConfig{
			Secret: cfg.VisitorSecret,
			Secure: cfg.CookieSecure,
		}, logger))
		r.Use(pkgmiddleware.RequestLogger(logger))
		r.Use(limiter.Handler)
		r.Use(pkgmiddleware.NoStore)

		r.NotFound(pages.NotFound)

		// Payment is a browser navigation straight to the backend.
		r.Handle("/api/pay/{id}", pay.Handler("pay"))

		r.Get("/", pages.Handle(h.Catalog.Home))
		r.Get("/products", pages.Handle(h.Catalog.Products))
		r.Get("/products/{id}", pages.Handle(h.Catalog.Detail))
		r.Post("/products/{id}/cart", pages.Handle(h.Catalog.AddToCart))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", pages.Handle(h.Cart.Show))
			r.Post("/items/{id}/quantity", pages.Handle(h.Cart.Quantity))
			r.Post("/items/{id}/remove", pages.Handle(h.Cart.Remove))
			r.Post("/selection", pages.Handle(h.Cart.Selection))
			r.Post("/delete", pages.Handle(h.Cart.DeleteSelected))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", pages.Handle(h.Checkout.Show))
			r.Post("/", pages.Handle(h.Checkout.Confirm))
			r.Post("/addresses", pages.Handle(h.Checkout.AddAddress))
			r.Post("/addresses/delete", pages.Handle(h.Checkout.DeleteAddress))
		})

		r.Get("/orders", pages.Handle(h.Orders.List))
		r.Get("/orders/{id}", pages.Handle(h.Orders.Detail))

		r.Get("/login", pages.Handle(h.Auth.LoginForm))
		r.Post("/login", pages.Handle(h.Auth.Login))
		r.Get("/register", pages.Handle(h.Auth.RegisterForm))
		r.Post("/register", pages.Handle(h.Auth.Register))
		r.Post("/logout", pages.Handle(h.Auth.Logout))

		r.Post("/theme", pages.Handle(h.Theme.Toggle))
	})

	return r
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return cfg.RequestTimeout
}
