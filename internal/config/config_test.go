package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, 5, cfg.App.PageSize)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "users-crud-v1", cfg.Storage.Key)
	assert.Equal(t, "https://randomuser.me/api/", cfg.Sync.URL)
	assert.Equal(t, 5, cfg.Sync.BatchSize)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "REDIS")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("PAGE_SIZE", "10")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 10, cfg.App.PageSize)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := "HTTP_PORT=9090\nSTORAGE_KEY=custom-key\nSEED_SAMPLE_DATA=true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.Equal(t, "custom-key", cfg.Storage.Key)
	assert.True(t, cfg.Storage.SeedSampleData)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	t.Run("redis storage needs redis", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Driver = StorageRedis
		assert.ErrorContains(t, cfg.Validate(), "REDIS_ENABLED")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Driver = "mongo"
		assert.ErrorContains(t, cfg.Validate(), "unknown STORAGE_DRIVER")
	})

	t.Run("cache needs redis", func(t *testing.T) {
		cfg := base()
		cfg.Storage.CacheEnabled = true
		assert.ErrorContains(t, cfg.Validate(), "CACHE_ENABLED")
	})

	t.Run("page size must be positive", func(t *testing.T) {
		cfg := base()
		cfg.App.PageSize = 0
		assert.ErrorContains(t, cfg.Validate(), "PAGE_SIZE")
	})
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable", db.DSN())
}
