package main

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/abandoned-sites/internal/config"
	"github.com/jwebster45206/abandoned-sites/internal/logger"
	"github.com/jwebster45206/abandoned-sites/internal/services"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check storage and catalog, printing a JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			a, err := openApp(cmd.Context(), cfg, logger.Setup(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			report := a.catalog.Health(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to encode health report: %w", err)
			}
			if report.Status != services.StatusHealthy {
				return fmt.Errorf("catalog is %s", report.Status)
			}
			return nil
		},
	}
}
