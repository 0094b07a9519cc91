package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port       int      `env:"TEST_CFG_PORT" envDefault:"8080"`
	BackendURL string   `env:"TEST_CFG_BACKEND_URL" envDefault:"http://localhost:5000"`
	LogLevel   string   `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Secure     bool     `env:"TEST_CFG_SECURE" envDefault:"false"`
	CIDRs      []string `env:"TEST_CFG_CIDRS" envDefault:"127.0.0.1/32,10.0.0.0/8" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Secure)
	assert.Equal(t, []string{"127.0.0.1/32", "10.0.0.0/8"}, cfg.CIDRs)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BACKEND_URL", "http://api:5000")
	t.Setenv("TEST_CFG_LOG_LEVEL", "debug")
	t.Setenv("TEST_CFG_SECURE", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://api:5000", cfg.BackendURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Secure)
}

func TestLoad_WithPrefix(t *testing.T) {
	t.Setenv("EDGE_TEST_CFG_PORT", "7070")

	var cfg testConfig
	err := Load(&cfg, WithPrefix("EDGE_"))

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoad_WithEnvironment(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg, WithEnvironment(map[string]string{
		"TEST_CFG_PORT": "6060",
	}))

	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg, WithEnvironment(map[string]string{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("TEST_CFG_SECRET", "secret-123")

	var cfg requiredConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "secret-123", cfg.Secret)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
