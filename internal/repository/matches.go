package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"
	"soccerpipe/internal/writeguard"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository handles matches_v2 database operations.
type MatchRepository struct {
	db *Database
}

const matchColumns = `
	id, match_date, match_time, home_team_id, away_team_id, home_score,
	away_score, league_id, tournament_id, venue, source_platform,
	source_match_key, deleted_at, created_at, updated_at
`

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.MatchDate, &m.MatchTime, &m.HomeTeamID, &m.AwayTeamID,
		&m.HomeScore, &m.AwayScore, &m.LeagueID, &m.TournamentID, &m.Venue,
		&m.SourcePlatform, &m.SourceMatchKey, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

// UpsertBatch bulk-upserts matches keyed on source_match_key, per the
// promotion pipeline's step 5. Rows whose deleted_at is set in the existing
// row are left alone (a soft delete is never resurrected by a later scrape).
func (r *MatchRepository) UpsertBatch(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin match upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeguard.Authorize(ctx, tx); err != nil {
		return err
	}

	const query = `
		INSERT INTO matches_v2 (
			match_date, match_time, home_team_id, away_team_id, home_score,
			away_score, league_id, tournament_id, venue, source_platform,
			source_match_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source_match_key) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			match_date = EXCLUDED.match_date,
			match_time = EXCLUDED.match_time,
			venue = EXCLUDED.venue,
			league_id = COALESCE(matches_v2.league_id, EXCLUDED.league_id),
			tournament_id = COALESCE(matches_v2.tournament_id, EXCLUDED.tournament_id),
			updated_at = NOW()
		WHERE matches_v2.deleted_at IS NULL
	`

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(query,
			m.MatchDate, m.MatchTime, m.HomeTeamID, m.AwayTeamID, m.HomeScore,
			m.AwayScore, m.LeagueID, m.TournamentID, m.Venue, m.SourcePlatform,
			m.SourceMatchKey,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range matches {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to upsert match: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close match upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit match upsert: %w", err)
	}

	log.Debug().Int("count", len(matches)).Msg("matches upserted")
	return nil
}

// ListUnlinked returns matches with both teams resolved but no event,
// feeding the Event-Linkage Inferrer (component H).
func (r *MatchRepository) ListUnlinked(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches_v2
		WHERE league_id IS NULL AND tournament_id IS NULL AND deleted_at IS NULL
		ORDER BY match_date
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked matches: %w", err)
	}
	defer rows.Close()

	var out []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// EventHistoryEntry is one (kind, event id, date window) tuple derived from
// a team's already-linked matches.
type EventHistoryEntry struct {
	Kind    models.EventKind
	EventID int64
	MinDate string
	MaxDate string
	Count   int
}

// EventHistoryForTeam returns the distinct events a team has already been
// linked to, with the date span of matches linked to each.
func (r *MatchRepository) EventHistoryForTeam(ctx context.Context, teamID int64) ([]EventHistoryEntry, error) {
	query := `
		SELECT
			CASE WHEN league_id IS NOT NULL THEN 'league' ELSE 'tournament' END AS kind,
			COALESCE(league_id, tournament_id) AS event_id,
			MIN(match_date)::text, MAX(match_date)::text, COUNT(*)
		FROM matches_v2
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND (league_id IS NOT NULL OR tournament_id IS NOT NULL)
		  AND deleted_at IS NULL
		GROUP BY kind, event_id
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team event history: %w", err)
	}
	defer rows.Close()

	var out []EventHistoryEntry
	for rows.Next() {
		var e EventHistoryEntry
		if err := rows.Scan(&e.Kind, &e.EventID, &e.MinDate, &e.MaxDate, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan event history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LinkToEvent assigns a resolved event to a match, used by the linkage inferrer.
func (r *MatchRepository) LinkToEvent(ctx context.Context, matchID int64, kind models.EventKind, eventID int64) error {
	var query string
	if kind == models.EventKindLeague {
		query = `UPDATE matches_v2 SET league_id = $1, updated_at = NOW() WHERE id = $2`
	} else {
		query = `UPDATE matches_v2 SET tournament_id = $1, updated_at = NOW() WHERE id = $2`
	}

	return writeguard.WithAuthorizedTx(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, eventID, matchID); err != nil {
			return fmt.Errorf("failed to link match to event: %w", err)
		}
		return nil
	})
}

// Count returns the number of non-deleted matches, used by rebuild validation.
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches_v2 WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// CountDistinctSourceMatchKeys supports rebuild coverage validation.
func (r *MatchRepository) CountDistinctSourceMatchKeys(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(DISTINCT source_match_key) FROM matches_v2`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct match keys: %w", err)
	}
	return count, nil
}

// SoftDelete marks a match deleted without removing its row. Nothing in the
// pipeline calls it; the rebuild subsystem runs no soft-delete pass.
func (r *MatchRepository) SoftDelete(ctx context.Context, sourceMatchKey string) error {
	return writeguard.WithAuthorizedTx(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE matches_v2 SET deleted_at = NOW() WHERE source_match_key = $1 AND deleted_at IS NULL`,
			sourceMatchKey,
		); err != nil {
			return fmt.Errorf("failed to soft-delete match: %w", err)
		}
		return nil
	})
}
