package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"
	"soccerpipe/internal/writeguard"

	"github.com/jackc/pgx/v5"
)

// StandingRepository handles league_standings, the production counterpart of
// staging_standings.
type StandingRepository struct {
	db *Database
}

// UpsertBatch bulk-upserts standings rows keyed on (league_id, team_id),
// mirroring MatchRepository.UpsertBatch's transaction/write-gate discipline.
func (r *StandingRepository) UpsertBatch(ctx context.Context, rows []*models.LeagueStanding) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin standings upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeguard.Authorize(ctx, tx); err != nil {
		return err
	}

	const query = `
		INSERT INTO league_standings (league_id, team_id, division, wins, losses, draws, points, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (league_id, team_id) DO UPDATE SET
			division = EXCLUDED.division,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			points = EXCLUDED.points,
			rank = EXCLUDED.rank
	`

	batch := &pgx.Batch{}
	for _, s := range rows {
		batch.Queue(query, s.LeagueID, s.TeamID, s.Division, s.Wins, s.Losses, s.Draws, s.Points, s.Rank)
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to upsert league standing: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close standings upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit standings upsert: %w", err)
	}

	return nil
}

// ListForLeague returns every standings row for a league, ordered by rank.
func (r *StandingRepository) ListForLeague(ctx context.Context, leagueID int64) ([]*models.LeagueStanding, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, league_id, team_id, division, wins, losses, draws, points, rank
		FROM league_standings WHERE league_id = $1 ORDER BY rank
	`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league standings: %w", err)
	}
	defer rows.Close()

	var out []*models.LeagueStanding
	for rows.Next() {
		var s models.LeagueStanding
		if err := rows.Scan(&s.ID, &s.LeagueID, &s.TeamID, &s.Division, &s.Wins, &s.Losses, &s.Draws, &s.Points, &s.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan league standing: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
