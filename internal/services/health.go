package services

import (
	"context"
	"time"

	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type HealthReport struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Locations  int               `json:"locations"`
	Components map[string]string `json:"components"`
}

// Health pings storage and checks that the catalog is loaded.
func (c *Catalog) Health(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	report := HealthReport{
		Status:     StatusHealthy,
		Timestamp:  c.now(),
		Service:    "abandoned-sites",
		Components: make(map[string]string),
	}

	if err := c.storage.Ping(ctx); err != nil {
		c.logger.Warn("Storage health check failed", "error", err)
		report.Components["storage"] = StatusUnhealthy
		report.Components["catalog"] = StatusUnhealthy
		report.Status = StatusDegraded
		return report
	}
	report.Components["storage"] = StatusHealthy

	locs, err := c.storage.ListLocations(ctx, catalog.Filter{})
	switch {
	case err != nil:
		c.logger.Warn("Catalog health check failed", "error", err)
		report.Components["catalog"] = StatusUnhealthy
		report.Status = StatusDegraded
	case len(locs) == 0:
		report.Components["catalog"] = "empty"
		report.Status = StatusDegraded
	default:
		report.Components["catalog"] = StatusHealthy
		report.Locations = len(locs)
	}
	return report
}
