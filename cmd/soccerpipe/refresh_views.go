package main

import (
	"fmt"

	"soccerpipe/internal/views"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRefreshViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-views",
		Short: "Refresh the standings and derived-stat materialized views",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := views.RefreshAll(cmd.Context(), a.db.Pool); err != nil {
				return fmt.Errorf("refresh-views: %w", err)
			}

			log.Info().Msg("refresh-views: complete")
			return nil
		},
	}
}
