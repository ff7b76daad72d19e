package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Resolve staged rows into canonical teams and matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.promoter.Promote(cmd.Context())
			if err != nil {
				return fmt.Errorf("promote: %w", err)
			}

			log.Info().
				Int("iterations", stats.Iterations).
				Int("rows_seen", stats.RowsSeen).
				Int("rows_dropped", stats.RowsDropped).
				Int("rows_upserted", stats.RowsUpserted).
				Msg("promote: complete")

			standingsStats, err := a.promoter.PromoteStandings(cmd.Context())
			if err != nil {
				return fmt.Errorf("promote: standings: %w", err)
			}

			log.Info().
				Int("iterations", standingsStats.Iterations).
				Int("rows_seen", standingsStats.RowsSeen).
				Int("rows_dropped", standingsStats.RowsDropped).
				Int("rows_upserted", standingsStats.RowsUpserted).
				Msg("promote: standings complete")
			return nil
		},
	}
}

func newInferLinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "infer-links",
		Short: "Infer league/tournament linkage for matches promoted without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.linker.Infer(cmd.Context())
			if err != nil {
				return fmt.Errorf("infer-links: %w", err)
			}

			log.Info().
				Int("considered", stats.MatchesConsidered).
				Int("linked", stats.MatchesLinked).
				Msg("infer-links: complete")
			return nil
		},
	}
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Fuzzy-match rank-only teams against teams with match history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.reconciler.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}

			log.Info().
				Int("considered", stats.TeamsConsidered).
				Int("aliases_learned", stats.AliasesLearned).
				Int("unmatched", stats.Unmatched).
				Msg("reconcile: complete")
			return nil
		},
	}
}
