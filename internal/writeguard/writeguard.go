// Package writeguard implements the session side of the Write-Protection
// Gate (component J): production tables carry triggers that reject writes
// unless the current session has called authorize_pipeline_write() within
// the same transaction. This package wraps that call so every pipeline
// writer goes through one place.
package writeguard

import (
	"context"
	"fmt"

	"soccerpipe/internal/metrics"
	"soccerpipe/internal/pipelineerr"

	"github.com/jackc/pgx/v5"
)

// Authorize marks tx as permitted to write production tables for its
// lifetime. Callers must invoke this as the first statement of any
// transaction that writes matches_v2 or league_standings (the two tables
// whose row-level triggers enforce it) or that runs the rebuild/swap DDL.
func Authorize(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `SELECT authorize_pipeline_write()`); err != nil {
		metrics.WriteGateDenialsTotal.Inc()
		return pipelineerr.New(pipelineerr.KindWriteProtectionDeny, "writeguard",
			fmt.Errorf("authorize_pipeline_write: %w", err))
	}
	return nil
}

// WithAuthorizedTx runs fn inside a transaction that has already called
// authorize_pipeline_write(), committing on success and rolling back on any
// error (including one returned by fn itself).
func WithAuthorizedTx(ctx context.Context, pool interface {
	Begin(context.Context) (pgx.Tx, error)
}, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("writeguard: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := Authorize(ctx, tx); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
