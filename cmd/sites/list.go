package main

import (
	"fmt"
	"io"

	"github.com/jwebster45206/abandoned-sites/internal/config"
	"github.com/jwebster45206/abandoned-sites/internal/logger"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var difficulty, locationType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog, optionally filtered",
		Long: `Prints one line per location in catalog order.

Example:
  sites list --difficulty easy --type amusement`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := catalog.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			t, err := catalog.ParseLocationType(locationType)
			if err != nil {
				return err
			}

			cfg := config.Load()
			a, err := openApp(cmd.Context(), cfg, logger.Setup(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			locs, err := a.catalog.Locations(cmd.Context(), catalog.Filter{Difficulty: d, Type: t})
			if err != nil {
				return err
			}
			writeList(cmd.OutOrStdout(), locs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "all", "easy, medium, hard, extreme or all")
	cmd.Flags().StringVarP(&locationType, "type", "t", "all", "industrial, hospital, amusement, residential, military or all")
	return cmd
}

func writeList(w io.Writer, locs []catalog.Location) {
	if len(locs) == 0 {
		fmt.Fprintln(w, "No locations found. Try changing the filters.")
		return
	}
	for _, l := range locs {
		rating := "unrated"
		if l.RatingsCount > 0 {
			rating = fmt.Sprintf("%.1f (%d votes)", l.Rating, l.RatingsCount)
		}
		fmt.Fprintf(w, "%3d  %-34s %-4s %-8s %-12s danger %2d/%d  %s\n",
			l.ID, l.Title, l.Year, l.Difficulty.Label(), l.Type.Label(), l.Danger, catalog.MaxDanger, rating)
	}
}
