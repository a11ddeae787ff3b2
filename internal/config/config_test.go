package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENVIRONMENT", "LOG_LEVEL", "LOG_FILE", "STORE_BACKEND", "REDIS_URL", "SESSION_TTL", "CATALOG_FILE", "CONTENT_RATING", "MAX_MEDIA_BYTES"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "R", cfg.ContentRating)
	assert.Equal(t, int64(10<<20), cfg.MaxMediaBytes)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("MAX_MEDIA_BYTES", "2048")
	t.Setenv("CONTENT_RATING", "PG13")

	cfg := Load()
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(2048), cfg.MaxMediaBytes)
	assert.Equal(t, "PG13", cfg.ContentRating)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("MAX_MEDIA_BYTES", "-1")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxMediaBytes)

	err := cfg.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "SESSION_TTL")
		assert.Contains(t, err.Error(), "MAX_MEDIA_BYTES")
		assert.Contains(t, err.Error(), `STORE_BACKEND "postgres"`)
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("Warning"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("chatty"))
}
