package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/pkg/database"
	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/pagination"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/activity"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/config"
	handler "github.com/utafrali/EcommerceGo/services/storefront/internal/handler/http"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/middleware"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/proxy"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	memoryrepo "github.com/utafrali/EcommerceGo/services/storefront/internal/repository/memory"
	redisrepo "github.com/utafrali/EcommerceGo/services/storefront/internal/repository/redis"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"

	// sweepInterval is how often the in-process UI state drops expired entries.
	sweepInterval = time.Minute
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	memory         *memoryrepo.UIStateRepository
	limiter        *middleware.RateLimiter
	tracker        *activity.Tracker
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	stop           chan struct{}
	stopOnce       sync.Once
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Exporter:       cfg.OTELExporter,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
		stop:           make(chan struct{}),
	}

	healthHandler := health.NewHandler()

	// UI state: Redis when configured, otherwise in-process.
	ttl := repository.TTLs{Flash: cfg.FlashTTL, Stash: cfg.StashTTL, Orders: cfg.OrdersTTL}
	state, err := a.initState(ctx, ttl, healthHandler)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	// Backend client: traced transport, no retries, circuit breaker on top.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.BackendTimeout
	httpCfg.WrapTransport = tracing.Transport
	breaker := httpclient.NewBreaker(httpclient.New(httpCfg), httpclient.BreakerConfig{
		Name:         "backend",
		Timeout:      cfg.BreakerTimeout,
		FailureRatio: cfg.BreakerFailureRatio,
		MinRequests:  cfg.BreakerMinRequests,
	}, logger)
	client := api.New(cfg.BackendURL, breaker, logger)

	healthHandler.RegisterCritical("backend", backendChecker(cfg.BackendURL))

	payProxy, err := proxy.New(cfg.BackendURL, tracing.Transport(http.DefaultTransport.(*http.Transport).Clone()), logger, handler.LocalCookies...)
	if err != nil {
		a.closeState()
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("init pay proxy: %w", err)
	}

	renderer, err := view.New(templateFS(cfg), cfg.TemplateReload, logger)
	if err != nil {
		a.closeState()
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	a.tracker = a.initActivity(healthHandler)

	// Build the dependency graph.
	authService := service.NewAuthService(state, logger)
	cartService := service.NewCartService(state, logger)
	catalogService := service.NewCatalogService(pagination.DefaultLimit, cfg.HomeMaxPages, logger)
	checkoutService := service.NewCheckoutService(state, logger)
	orderService := service.NewOrderService(state, logger)

	pages := handler.NewPages(client, state, authService, cartService, renderer, a.tracker, logger)
	handlers := handler.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, cartService, cfg.Brands),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Orders:   handler.NewOrdersHandler(orderService),
		Auth:     handler.NewAuthHandler(authService),
		Theme:    handler.NewThemeHandler(cfg.CookieSecure),
	}

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	router := handler.NewRouter(cfg, pages, handlers, payProxy, healthHandler, a.limiter, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) initState(ctx context.Context, ttl repository.TTLs, h *health.Handler) (repository.UIStateRepository, error) {
	if a.cfg.RedisAddr == "" {
		a.memory = memoryrepo.NewUIStateRepository(ttl)
		a.logger.Info("using in-process UI state store")
		return a.memory, nil
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = a.cfg.RedisAddr
	redisCfg.Password = a.cfg.RedisPass
	redisCfg.DB = a.cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	if err := prometheus.Register(database.NewPoolStatsCollector(rdb, serviceName)); err != nil {
		a.logger.Warn("failed to register redis pool metrics", slog.String("error", err.Error()))
	}
	h.RegisterNonCritical("redis", database.RedisChecker(rdb))

	return redisrepo.NewUIStateRepository(rdb, ttl), nil
}

// initActivity publishes activity events to Kafka when brokers are
// configured. Without them the tracker drops events.
func (a *App) initActivity(h *health.Handler) *activity.Tracker {
	if len(a.cfg.KafkaBrokers) == 0 {
		a.logger.Info("activity events disabled")
		return nil
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(a.cfg.KafkaBrokers, a.cfg.KafkaTopic), a.logger)
	h.RegisterNonCritical("kafka", producer.Ping)
	a.logger.Info("publishing activity events",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.String("topic", producer.Topic()),
	)
	return activity.New(producer, a.logger)
}

func (a *App) closeState() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// templateFS serves templates from disk while reloading, so edits show up
// without a rebuild.
func templateFS(cfg *config.Config) fs.FS {
	if cfg.TemplateReload {
		return os.DirFS(cfg.TemplateDir)
	}
	return view.Templates()
}

// backendChecker reports whether the backend accepts TCP connections.
func backendChecker(rawURL string) health.Checker {
	return func(ctx context.Context) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("parse backend URL: %w", err)
		}
		host := u.Host
		if u.Port() == "" {
			port := "80"
			if u.Scheme == "https" {
				port = "443"
			}
			host = net.JoinHostPort(u.Hostname(), port)
		}
		d := net.Dialer{Timeout: 2 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}
		_ = conn.Close()
		return nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.memory != nil {
		go a.sweep()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("backend", a.cfg.BackendURL),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

func (a *App) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.memory.Sweep()
		}
	}
}

// Shutdown gracefully stops the HTTP server in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Background loops and Redis
// 3. Activity publisher
// 4. Tracer (flush pending spans from drained requests)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Stop the cleanup loops and close Redis.
	a.stopOnce.Do(func() { close(a.stop) })
	a.limiter.Close()
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Flush queued activity events.
	if err := a.tracker.Close(); err != nil {
		a.logger.Error("activity publisher close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 4. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
