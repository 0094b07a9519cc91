package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/EcommerceGo/pkg/config"
)

// DefaultVisitorSecret is the development-only signing key for visitor tokens.
const DefaultVisitorSecret = "storefront-dev-secret-change-me"

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server
	HTTPPort       int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8000"`
	RequestTimeout time.Duration `env:"STOREFRONT_REQUEST_TIMEOUT" envDefault:"30s"`

	// REST backend
	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:5000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	// Circuit breaker around the backend
	BreakerTimeout      time.Duration `env:"BACKEND_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"BACKEND_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests  uint32        `env:"BACKEND_BREAKER_MIN_REQUESTS" envDefault:"10"`

	// Redis for flash messages, the checkout stash and the orders cache.
	// Empty means an in-process store.
	RedisAddr string `env:"REDIS_ADDR" envDefault:""`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// UI state lifetimes
	FlashTTL     time.Duration `env:"FLASH_TTL" envDefault:"1m"`
	StashTTL     time.Duration `env:"STASH_TTL" envDefault:"10m"`
	OrdersTTL    time.Duration `env:"ORDERS_CACHE_TTL" envDefault:"5m"`
	HomeMaxPages int           `env:"HOME_MAX_PAGES" envDefault:"10"`

	// Brand filter buttons on the home page
	Brands []string `env:"STOREFRONT_BRANDS" envSeparator:"," envDefault:"Eiger"`

	// Visitor cookie
	VisitorSecret string `env:"VISITOR_SECRET" envDefault:"storefront-dev-secret-change-me"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// Rate limiting of form posts
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Activity events. No brokers means events are dropped.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_ACTIVITY_TOPIC" envDefault:"storefront.activity"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporter   string  `env:"OTEL_EXPORTER" envDefault:"otlp"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Operational endpoints
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,10.0.0.0/8" envSeparator:","`
	PprofAllowedCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8" envSeparator:","`

	// Re-parse templates from TemplateDir on every render (local development only).
	TemplateReload bool   `env:"TEMPLATE_RELOAD" envDefault:"false"`
	TemplateDir    string `env:"TEMPLATE_DIR" envDefault:"services/storefront/internal/view"`
}

// Load reads configuration from environment variables.
func Load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}
	if !c.IsDevelopment() && c.VisitorSecret == DefaultVisitorSecret {
		return fmt.Errorf("VISITOR_SECRET must be changed from default value in %s environment", c.Environment)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("BACKEND_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.BreakerFailureRatio)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_ACTIVITY_TOPIC must be set when KAFKA_BROKERS is")
	}
	if c.HomeMaxPages < 1 {
		return fmt.Errorf("HOME_MAX_PAGES must be positive, got %d", c.HomeMaxPages)
	}
	return nil
}
