package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.OpenRouter.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Matching.AlternativesLimit)
	assert.Equal(t, 8, cfg.Recommend.Limit)
	assert.InDelta(t, 0.6, cfg.Recommend.MinRelevance, 1e-9)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test-123456789")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=app dbname=shop")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("APP_BATCH_WORKERS", "2")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123456789", cfg.OpenRouter.APIKey)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app dbname=shop", cfg.Database.DSN)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 2, cfg.Batch.Workers)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg, err := load(viper.New())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache backend"},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }, "unknown database driver"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "invalid retry max attempts"},
		{"relevance out of range", func(c *Config) { c.Recommend.MinRelevance = 1.5 }, "min relevance"},
		{"no batch workers", func(c *Config) { c.Batch.Workers = 0 }, "invalid batch workers"},
		{"rate limit without requests", func(c *Config) { c.RateLimit.Requests = 0 }, "invalid rate limit"},
		{"no request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "invalid server request timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-t...6789", MaskAPIKey("sk-test-123456789"))
}
