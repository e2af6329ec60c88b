package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("GOVDASH_BACKEND_URL", "")
	t.Setenv("GOVDASH_POLL_INTERVAL", "")
	t.Setenv("REDIS_URL", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 300*time.Millisecond, cfg.Upload.ProgressTick)
	assert.Empty(t, cfg.Redis.URL)
	assert.NotEmpty(t, cfg.Auth.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GOVDASH_ADDR", ":9090")
	t.Setenv("GOVDASH_BACKEND_URL", "http://backend:8000")
	t.Setenv("GOVDASH_POLL_INTERVAL", "2s")
	t.Setenv("GOVDASH_UPLOAD_MAX_BYTES", "1024")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://backend:8000", cfg.Backend.URL)
	assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("GOVDASH_ALLOWED_ORIGINS", "")
	assert.Nil(t, FromEnv().Server.AllowedOrigins)

	t.Setenv("GOVDASH_ALLOWED_ORIGINS", " https://dash.gov.in ,http://localhost:3000,")
	assert.Equal(t, []string{"https://dash.gov.in", "http://localhost:3000"}, FromEnv().Server.AllowedOrigins)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("GOVDASH_POLL_INTERVAL", "soon")
	assert.Equal(t, 5*time.Second, FromEnv().Polling.Interval)

	t.Setenv("GOVDASH_POLL_INTERVAL", "-1s")
	assert.Equal(t, 5*time.Second, FromEnv().Polling.Interval)
}
