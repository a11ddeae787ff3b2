package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/abandoned-sites/internal/config"
	"github.com/jwebster45206/abandoned-sites/internal/console"
	"github.com/jwebster45206/abandoned-sites/internal/logger"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive catalog browser",
		Args:  cobra.NoArgs,
		RunE:  runBrowse,
	}
}

// runBrowse owns the terminal, so logs go to LOG_FILE instead of stderr.
func runBrowse(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log, closeLog, err := logger.SetupFile(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()

	a, err := openApp(cmd.Context(), cfg, log)
	if err != nil {
		log.Error("Failed to start browser", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("Failed to close storage", logger.ErrorAttr(err))
		}
	}()

	opts := console.DefaultOptions()
	opts.MaxMediaBytes = cfg.MaxMediaBytes

	log.Info("Starting browser", "environment", cfg.Environment, "backend", cfg.StoreBackend, "session_id", a.catalog.Session().String())
	p := tea.NewProgram(console.New(a.catalog, a.logger, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}
