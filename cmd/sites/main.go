package main

import (
	"os"

	"github.com/spf13/cobra"
)

// catalogFile overrides CATALOG_FILE when set.
var catalogFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sites",
		Short: "Browse a catalog of abandoned places",
		Long: `sites is a terminal catalog of abandoned locations for urban explorers.

Filter sites by difficulty and type, read their history, rate them once per
session and share your own stories.

Run without arguments to start the interactive browser.`,
		SilenceUsage: true,
		RunE:         runBrowse,
	}
	root.PersistentFlags().StringVar(&catalogFile, "catalog", "", "YAML catalog to load instead of the built-in one")

	root.AddCommand(
		newBrowseCmd(),
		newListCmd(),
		newShowCmd(),
		newValidateCmd(),
		newHealthCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
