package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Option customizes how environment variables are mapped onto a struct.
type Option func(*env.Options)

// WithPrefix makes every `env` tag resolve against PREFIX + tag, so two
// instances of the same config struct can be loaded side by side.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// WithEnvironment replaces the process environment with the given map.
// Tests use it to load a config without touching os.Environ.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port       int    `env:"HTTP_PORT" envDefault:"8080"`
//	    BackendURL string `env:"BACKEND_URL,required"`
//	}
func Load(cfg any, opts ...Option) error {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	if err := env.ParseWithOptions(cfg, o); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
