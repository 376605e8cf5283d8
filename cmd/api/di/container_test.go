package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-table-service/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Setenv("APP_ENV", "test")
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "users.db")
	cfg.Storage.SeedSampleData = true
	return cfg
}

func TestNewContainer_SQLiteWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	cfg.Storage.CacheEnabled = true
	cfg.RateLimit.Enabled = true

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, 2, c.Table.Count())
	assert.NotNil(t, c.DB)
	assert.NotNil(t, c.RateLimiter)
	assert.NotNil(t, c.TokenBucket)

	checks := c.healthChecks()
	require.Contains(t, checks, "redis")
	require.Contains(t, checks, "database")
	for name, ping := range checks {
		assert.NoError(t, ping(context.Background()), name)
	}

	// seeding wrote through the cached store, which drops the entry
	assert.False(t, mr.Exists("cache:users-crud-v1"))
}

func TestNewContainer_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Storage.Driver = config.StorageRedis
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.DB)
	assert.Equal(t, 2, c.Table.Count())
	assert.True(t, mr.Exists("users-crud-v1"))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = config.StorageRedis // without REDIS_ENABLED

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestNewContainer_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	mr.Close()

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, c)
}
