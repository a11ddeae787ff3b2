package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestCatalog_Health(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name       string
		setup      func(t *testing.T) *Catalog
		wantStatus string
		wantStore  string
		wantCat    string
		wantCount  int
	}{
		{
			name: "all healthy",
			setup: func(t *testing.T) *Catalog {
				c, _ := newTestCatalog(t)
				return c
			},
			wantStatus: StatusHealthy,
			wantStore:  StatusHealthy,
			wantCat:    StatusHealthy,
			wantCount:  5,
		},
		{
			name: "storage down",
			setup: func(t *testing.T) *Catalog {
				c, s := newTestCatalog(t)
				s.SetPingError(errors.New("connection failed"))
				return c
			},
			wantStatus: StatusDegraded,
			wantStore:  StatusUnhealthy,
			wantCat:    StatusUnhealthy,
		},
		{
			name: "empty catalog",
			setup: func(t *testing.T) *Catalog {
				return NewCatalog(storage.NewMemoryStorage(), uuid.New(), logger)
			},
			wantStatus: StatusDegraded,
			wantStore:  StatusHealthy,
			wantCat:    "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := tt.setup(t).Health(context.Background())
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantStore, report.Components["storage"])
			assert.Equal(t, tt.wantCat, report.Components["catalog"])
			assert.Equal(t, tt.wantCount, report.Locations)
			assert.Equal(t, "abandoned-sites", report.Service)
		})
	}
}
