package main

import (
	"fmt"

	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Strictly validate a catalog file",
		Long: `Checks that a catalog file only uses known fields, that ids are unique
and that difficulty, type, danger and rating values are in range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Validating %s...\n", args[0])
			locs, err := catalog.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog is valid: %d locations\n", len(locs))
			return nil
		},
	}
}
