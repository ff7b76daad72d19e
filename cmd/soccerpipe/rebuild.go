package main

import (
	"fmt"

	"soccerpipe/internal/rebuild"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Stream the full staging history into shadow tables for a rebuild",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := rebuild.PrepareShadowTables(cmd.Context(), a.db.Pool); err != nil {
				return fmt.Errorf("rebuild: %w", err)
			}

			promoter := rebuild.NewShadowPromoter(a.promoter, a.db.Pool)
			stats, err := rebuild.RebuildFromStaging(cmd.Context(), a.db.Staging, promoter)
			if err != nil {
				return fmt.Errorf("rebuild: %w", err)
			}

			log.Info().
				Int("rows_streamed", stats.RowsStreamed).
				Int("rows_applied", stats.RowsApplied).
				Int("rows_skipped", stats.RowsSkipped).
				Msg("rebuild: shadow tables populated")
			return nil
		},
	}
}

func newValidateRebuildCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate-rebuild",
		Short: "Check shadow-table coverage ratios against production before a swap",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := rebuild.Validate(cmd.Context(), a.db.Pool, rebuild.CoverageThresholds{
				TeamCoverageMin:  cfg.RebuildTeamCoverageMin,
				MatchCoverageMin: cfg.RebuildMatchCoverageMin,
				KeyCoverageMin:   cfg.RebuildKeyCoverageMin,
				Strict:           strict,
			})
			if err != nil {
				return fmt.Errorf("validate-rebuild: %w", err)
			}

			log.Info().
				Float64("team_coverage", report.TeamCoverage).
				Float64("match_coverage", report.MatchCoverage).
				Float64("key_coverage", report.KeyCoverage).
				Float64("birth_year_null_rate", report.RebuildBirthYearNullRate).
				Float64("gender_unknown_rate", report.RebuildGenderUnknownRate).
				Bool("passed", report.Passed).
				Strs("failures", report.Failures).
				Strs("warnings", report.Warnings).
				Msg("validate-rebuild: complete")

			if !report.Passed {
				return fmt.Errorf("validate-rebuild: coverage thresholds not met: %v", report.Failures)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on any NULL-rate regression instead of only logging a warning")
	return cmd
}

func newSwapCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap validated shadow tables into production, or roll back",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var swapMode rebuild.SwapMode
			switch mode {
			case "dry-run":
				swapMode = rebuild.SwapDryRun
			case "execute":
				swapMode = rebuild.SwapExecute
			case "rollback":
				swapMode = rebuild.SwapRollback
			default:
				return fmt.Errorf("swap: unknown mode %q (want dry-run, execute, or rollback)", mode)
			}

			thresholds := rebuild.CoverageThresholds{
				TeamCoverageMin:  cfg.RebuildTeamCoverageMin,
				MatchCoverageMin: cfg.RebuildMatchCoverageMin,
				KeyCoverageMin:   cfg.RebuildKeyCoverageMin,
			}
			if err := rebuild.ExecuteSwap(cmd.Context(), a.db.Pool, swapMode, thresholds); err != nil {
				return fmt.Errorf("swap: %w", err)
			}

			log.Info().Str("mode", mode).Msg("swap: complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "dry-run", "dry-run, execute, or rollback")
	return cmd
}
