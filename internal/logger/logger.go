package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/abandoned-sites/internal/config"
)

const service = "abandoned-sites"

// Setup builds the process logger for w and installs it as the slog default.
// Production gets JSON lines; everything else gets logfmt-style text.
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	log := slog.New(newHandler(cfg, w)).With("service", service)
	slog.SetDefault(log)
	return log
}

func newHandler(cfg *config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Environment == "production" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetupFile is Setup for the console, which owns stdout. With no LOG_FILE
// configured, logs are discarded. The returned close func is never nil.
func SetupFile(cfg *config.Config) (*slog.Logger, func() error, error) {
	if cfg.LogFile == "" {
		return Setup(cfg, io.Discard), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return Setup(cfg, f), f.Close, nil
}

// WithSession tags every record with the browsing session.
func WithSession(log *slog.Logger, sessionID string) *slog.Logger {
	return log.With("session_id", sessionID)
}

// ErrorAttr is the "error" attribute, empty for a nil error.
func ErrorAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
