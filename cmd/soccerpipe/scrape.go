package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newScrapeCmd() *cobra.Command {
	var adapterID, eventID string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one adapter's scrape, staging matches for later promotion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			src, ok := a.registry.Get(adapterID)
			if !ok {
				return fmt.Errorf("scrape: unknown adapter %q", adapterID)
			}

			stats, err := a.engine.Run(cmd.Context(), src, eventID)
			if err != nil {
				return fmt.Errorf("scrape: %w", err)
			}

			log.Info().
				Str("adapter", adapterID).
				Int("events_attempted", stats.EventsAttempted).
				Int("events_skipped", stats.EventsSkipped).
				Int("events_failed", stats.EventsFailed).
				Int("matches_staged", stats.MatchesStaged).
				Msg("scrape: complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&adapterID, "adapter", "", "registered adapter id to run (required)")
	cmd.Flags().StringVar(&eventID, "event", "", "limit the run to a single source event id")
	_ = cmd.MarkFlagRequired("adapter")

	return cmd
}
