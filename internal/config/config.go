package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	defaultSessionTTL    = time.Hour
	defaultMaxMediaBytes = 10 << 20
)

type Config struct {
	Environment   string
	LogLevel      slog.Level
	LogFile       string
	StoreBackend  string
	RedisURL      string
	SessionTTL    time.Duration
	CatalogFile   string
	ContentRating string
	MaxMediaBytes int64

	// problems found while parsing; reported by Validate
	problems []string
}

func Load() *Config {
	cfg := &Config{
		Environment:   envOr("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(envOr("LOG_LEVEL", "info")),
		LogFile:       envOr("LOG_FILE", ""),
		StoreBackend:  strings.ToLower(envOr("STORE_BACKEND", BackendMemory)),
		RedisURL:      envOr("REDIS_URL", "localhost:6379"),
		CatalogFile:   envOr("CATALOG_FILE", ""),
		ContentRating: envOr("CONTENT_RATING", "R"),
	}

	cfg.SessionTTL = defaultSessionTTL
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			cfg.problems = append(cfg.problems, fmt.Sprintf("SESSION_TTL %q is not a positive duration", v))
		} else {
			cfg.SessionTTL = d
		}
	}

	cfg.MaxMediaBytes = defaultMaxMediaBytes
	if v := os.Getenv("MAX_MEDIA_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			cfg.problems = append(cfg.problems, fmt.Sprintf("MAX_MEDIA_BYTES %q is not a positive integer", v))
		} else {
			cfg.MaxMediaBytes = n
		}
	}

	return cfg
}

// Validate reports settings that were rejected during Load. Rejected values
// have already fallen back to their defaults.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.problems...)
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND %q must be %q or %q", c.StoreBackend, BackendMemory, BackendRedis))
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}

// parseLogLevel accepts slog's level names in any case, plus "warning".
// Anything else falls back to info.
func parseLogLevel(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// envOr returns the trimmed value of key, or fallback when it is unset or
// blank.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
