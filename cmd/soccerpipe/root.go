package main

import (
	"soccerpipe/internal/config"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "soccerpipe",
		Short: "Youth soccer match and standings ingestion pipeline",
	}

	root.AddCommand(
		newWorkerCmd(),
		newScrapeCmd(),
		newPromoteCmd(),
		newInferLinksCmd(),
		newRebuildCmd(),
		newValidateRebuildCmd(),
		newSwapCmd(),
		newRefreshViewsCmd(),
		newReconcileCmd(),
		newMigrateCmd(),
	)

	return root
}

// loadConfig is the single place every subcommand gets its configuration
// from, so a bad environment fails the same way regardless of which
// subcommand is invoked.
func loadConfig() *config.Config {
	return config.MustLoad()
}
