// Package rebuild builds shadow tables from the full staging history,
// validates them against production coverage thresholds, and swaps them in
// behind a single transaction.
package rebuild

import (
	"context"
	"fmt"

	"soccerpipe/internal/metrics"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"
	"soccerpipe/internal/writeguard"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const shadowDDL = `
CREATE TABLE IF NOT EXISTS teams_v2_rebuild (LIKE teams_v2 INCLUDING ALL EXCLUDING INDEXES);
CREATE TABLE IF NOT EXISTS matches_v2_rebuild (LIKE matches_v2 INCLUDING ALL EXCLUDING INDEXES);
TRUNCATE teams_v2_rebuild, matches_v2_rebuild;
`

// PrepareShadowTables creates (or truncates) the shadow tables rebuild_from_staging
// streams into.
func PrepareShadowTables(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, shadowDDL); err != nil {
		return fmt.Errorf("rebuild: prepare shadow tables: %w", err)
	}
	return nil
}

// RowPromoter is the subset of the promotion pipeline's behavior the rebuild
// walker depends on: resolving and validating one staging row into a
// shadow-table insert. Implemented by an adapter over promotion.Pipeline
// configured to target the *_rebuild tables.
type RowPromoter interface {
	PromoteIntoShadow(ctx context.Context, row *models.StagingGame) error
}

// Stats summarizes one rebuild_from_staging() run.
type Stats struct {
	RowsStreamed int
	RowsApplied  int
	RowsSkipped  int
}

// RebuildFromStaging streams every staging row, processed or not, through
// promoter into the shadow tables.
func RebuildFromStaging(ctx context.Context, staging *repository.StagingRepository, promoter RowPromoter) (Stats, error) {
	var stats Stats

	err := staging.StreamAll(ctx, func(row *models.StagingGame) error {
		stats.RowsStreamed++
		if err := promoter.PromoteIntoShadow(ctx, row); err != nil {
			stats.RowsSkipped++
			log.Warn().Err(err).Int64("staging_id", row.ID).Msg("rebuild: row skipped")
			return nil
		}
		stats.RowsApplied++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("rebuild: stream staging rows: %w", err)
	}

	return stats, nil
}

// SwapMode selects execute_swap's operating mode.
type SwapMode string

const (
	SwapDryRun  SwapMode = "dry-run"
	SwapExecute SwapMode = "execute"
	SwapRollback SwapMode = "rollback"
)

const swapDDL = `
ALTER TABLE matches_v2 DROP CONSTRAINT IF EXISTS matches_v2_home_team_id_fkey;
ALTER TABLE matches_v2 DROP CONSTRAINT IF EXISTS matches_v2_away_team_id_fkey;

ALTER TABLE teams_v2 RENAME TO teams_v2_backup;
ALTER TABLE matches_v2 RENAME TO matches_v2_backup;

ALTER TABLE teams_v2_rebuild RENAME TO teams_v2;
ALTER TABLE matches_v2_rebuild RENAME TO matches_v2;

ALTER TABLE matches_v2 ADD CONSTRAINT matches_v2_home_team_id_fkey FOREIGN KEY (home_team_id) REFERENCES teams_v2(id);
ALTER TABLE matches_v2 ADD CONSTRAINT matches_v2_away_team_id_fkey FOREIGN KEY (away_team_id) REFERENCES teams_v2(id);
ALTER TABLE matches_v2 ADD CONSTRAINT matches_v2_source_match_key_key UNIQUE (source_match_key);
`

const rollbackDDL = `
ALTER TABLE matches_v2 RENAME TO matches_v2_failed_swap;
ALTER TABLE teams_v2 RENAME TO teams_v2_failed_swap;

ALTER TABLE matches_v2_backup RENAME TO matches_v2;
ALTER TABLE teams_v2_backup RENAME TO teams_v2;
`

// ExecuteSwap implements execute_swap(): everything happens inside one
// transaction so a failure at any step leaves production untouched. An
// execute swap first re-runs Validate against thresholds and refuses to
// proceed on a failing report, so a rebuild that was never explicitly
// validated (or whose coverage regressed between validate-rebuild and swap)
// can't slip through.
func ExecuteSwap(ctx context.Context, pool *pgxpool.Pool, mode SwapMode, thresholds CoverageThresholds) error {
	if mode == SwapDryRun {
		log.Info().Msg("swap dry-run: would rename teams_v2/matches_v2 to *_backup and promote *_rebuild")
		return nil
	}

	if mode == SwapExecute {
		report, err := Validate(ctx, pool, thresholds)
		if err != nil {
			return fmt.Errorf("execute_swap: pre-swap validation: %w", err)
		}
		if !report.Passed {
			metrics.SwapOperationsTotal.WithLabelValues("validation_failed").Inc()
			return fmt.Errorf("execute_swap: refusing to swap, coverage validation failed: %v", report.Failures)
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("execute_swap: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeguard.Authorize(ctx, tx); err != nil {
		metrics.SwapOperationsTotal.WithLabelValues("error").Inc()
		return err
	}

	ddl := swapDDL
	if mode == SwapRollback {
		ddl = rollbackDDL
	}

	if _, err := tx.Exec(ctx, ddl); err != nil {
		metrics.SwapOperationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("execute_swap: %s: %w", mode, err)
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM matches_v2").Scan(&count); err != nil {
		metrics.SwapOperationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("execute_swap: post-swap verification: %w", err)
	}
	if count == 0 {
		metrics.SwapOperationsTotal.WithLabelValues("empty_result_rollback").Inc()
		return fmt.Errorf("execute_swap: matches_v2 empty after %s, rolling back", mode)
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.SwapOperationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("execute_swap: commit: %w", err)
	}

	metrics.SwapOperationsTotal.WithLabelValues(string(mode)).Inc()
	return nil
}
