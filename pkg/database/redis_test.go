package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisConfig_Options_HostPort(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "cache:6380"
	cfg.Password = "secret"
	cfg.DB = 2

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}

func TestRedisConfig_Options_URL(t *testing.T) {
	cfg := RedisConfig{Addr: "redis://:pw@cache:6379/3", Password: "ignored", DB: 9}

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

func TestRedisConfig_Options_BadURL(t *testing.T) {
	_, err := RedisConfig{Addr: "redis://cache:6379/notadb"}.Options()
	require.Error(t, err)
}

func TestNewRedisClient_Pings(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, RedisChecker(client)(context.Background()))

	mr.Close()
	assert.Error(t, RedisChecker(client)(context.Background()))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultRedisConfig()
	cfg.Addr = addr
	cfg.DialTimeout = 100 * time.Millisecond
	_, err := NewRedisClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestPoolStatsCollector(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	c := NewPoolStatsCollector(client, "storefront")
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	assert.Equal(t, 6, testutil.CollectAndCount(c))
}
