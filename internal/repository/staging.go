package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"

	"github.com/jackc/pgx/v5"
)

// StagingRepository handles the append-only staging_games, staging_standings
// and staging_events tables (component D).
type StagingRepository struct {
	db *Database
}

// InsertGamesBatch bulk-inserts staged matches, ignoring rows whose
// source_match_key collides with one already staged (component C step 5).
func (r *StagingRepository) InsertGamesBatch(ctx context.Context, rows []*models.StagingGame) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO staging_games (
			match_date, match_time, home_team_name, away_team_name, home_score,
			away_score, event_name, event_source_id, venue_name, division,
			source_platform, source_match_key, raw_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (source_match_key) WHERE source_match_key IS NOT NULL DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, g := range rows {
		batch.Queue(query,
			g.MatchDate, g.MatchTime, g.HomeTeamName, g.AwayTeamName, g.HomeScore,
			g.AwayScore, g.EventName, g.EventSourceID, g.VenueName, g.Division,
			g.SourcePlatform, g.SourceMatchKey, g.RawData,
		)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert staging game: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// RegisterEvent upserts a staging_events row (duplicates ignored), component
// C step 6.
func (r *StagingRepository) RegisterEvent(ctx context.Context, ev *models.StagingEvent) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO staging_events (event_name, event_type, source_platform, source_event_id, state, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_event_id, source_platform) DO NOTHING
	`, ev.EventName, ev.EventType, ev.SourcePlatform, ev.SourceEventID, ev.State, ev.RawData)
	if err != nil {
		return fmt.Errorf("failed to register staging event: %w", err)
	}
	return nil
}

// InsertStandingsBatch bulk-inserts staged standings rows, analogous to
// InsertGamesBatch but with no dedupe key: a source may legitimately resend
// a full standings table every scrape.
func (r *StagingRepository) InsertStandingsBatch(ctx context.Context, rows []*models.StagingStandings) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO staging_standings (
			team_name, team_source_id, event_source_id, event_name, division,
			age_group, gender, wins, losses, draws, points, rank, source_platform, raw_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	batch := &pgx.Batch{}
	for _, s := range rows {
		batch.Queue(query,
			s.TeamName, s.TeamSourceID, s.EventSourceID, s.EventName, s.Division,
			s.AgeGroup, s.Gender, s.Wins, s.Losses, s.Draws, s.Points, s.Rank,
			s.SourcePlatform, s.RawData,
		)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("failed to insert staging standings row: %w", err)
		}
	}

	return len(rows), nil
}

const stagingStandingsColumns = `
	id, team_name, team_source_id, event_source_id, event_name, division,
	age_group, gender, wins, losses, draws, points, rank, source_platform,
	raw_data, processed, processed_at, error_message, scraped_at
`

func scanStagingStandings(row pgx.Row) (*models.StagingStandings, error) {
	var s models.StagingStandings
	err := row.Scan(
		&s.ID, &s.TeamName, &s.TeamSourceID, &s.EventSourceID, &s.EventName, &s.Division,
		&s.AgeGroup, &s.Gender, &s.Wins, &s.Losses, &s.Draws, &s.Points, &s.Rank, &s.SourcePlatform,
		&s.RawData, &s.Processed, &s.ProcessedAt, &s.ErrorMessage, &s.ScrapedAt,
	)
	return &s, err
}

// FetchUnprocessedStandingsBatch selects the next batch of unprocessed
// staging_standings rows for the standings half of the Promotion Pipeline.
func (r *StagingRepository) FetchUnprocessedStandingsBatch(ctx context.Context, limit int) ([]*models.StagingStandings, error) {
	query := `
		SELECT ` + stagingStandingsColumns + `
		FROM staging_standings
		WHERE processed = false
		ORDER BY scraped_at
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed staging standings batch: %w", err)
	}
	defer rows.Close()

	var out []*models.StagingStandings
	for rows.Next() {
		s, err := scanStagingStandings(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staging standings row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkStandingsProcessedBatch flips processed for many staging_standings ids
// in one round trip.
func (r *StagingRepository) MarkStandingsProcessedBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE staging_standings SET processed = true, processed_at = NOW() WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to mark staging standings batch processed: %w", err)
	}
	return nil
}

// MarkStandingsProcessed flips a single staging_standings row's processed
// flag, optionally recording why it was rejected.
func (r *StagingRepository) MarkStandingsProcessed(ctx context.Context, id int64, errorMessage string) error {
	var errArg *string
	if errorMessage != "" {
		errArg = &errorMessage
	}
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE staging_standings SET processed = true, processed_at = NOW(), error_message = $1
		WHERE id = $2
	`, errArg, id)
	if err != nil {
		return fmt.Errorf("failed to mark staging standings row processed: %w", err)
	}
	return nil
}

const stagingGameColumns = `
	id, match_date, match_time, home_team_name, away_team_name, home_score,
	away_score, event_name, event_source_id, venue_name, division,
	source_platform, source_match_key, raw_data, processed, processed_at,
	error_message, scraped_at
`

func scanStagingGame(row pgx.Row) (*models.StagingGame, error) {
	var g models.StagingGame
	err := row.Scan(
		&g.ID, &g.MatchDate, &g.MatchTime, &g.HomeTeamName, &g.AwayTeamName,
		&g.HomeScore, &g.AwayScore, &g.EventName, &g.EventSourceID, &g.VenueName,
		&g.Division, &g.SourcePlatform, &g.SourceMatchKey, &g.RawData,
		&g.Processed, &g.ProcessedAt, &g.ErrorMessage, &g.ScrapedAt,
	)
	return &g, err
}

// FetchUnprocessedBatch selects the next batch of unprocessed staging rows
// ordered by scraped_at, for the Promotion Pipeline (component G step 1).
func (r *StagingRepository) FetchUnprocessedBatch(ctx context.Context, limit int) ([]*models.StagingGame, error) {
	query := `
		SELECT ` + stagingGameColumns + `
		FROM staging_games
		WHERE processed = false
		ORDER BY scraped_at
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed staging batch: %w", err)
	}
	defer rows.Close()

	var out []*models.StagingGame
	for rows.Next() {
		g, err := scanStagingGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staging game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// MarkProcessed flips a staging row's processed flag, optionally recording
// why it was rejected (component G step 4/6). Monotone: never flips back.
func (r *StagingRepository) MarkProcessed(ctx context.Context, id int64, errorMessage string) error {
	var errArg *string
	if errorMessage != "" {
		errArg = &errorMessage
	}
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE staging_games SET processed = true, processed_at = NOW(), error_message = $1
		WHERE id = $2
	`, errArg, id)
	if err != nil {
		return fmt.Errorf("failed to mark staging row processed: %w", err)
	}
	return nil
}

// MarkProcessedBatch flips processed for many ids in one round trip.
func (r *StagingRepository) MarkProcessedBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE staging_games SET processed = true, processed_at = NOW() WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to mark staging batch processed: %w", err)
	}
	return nil
}

// CountUnprocessed reports the remaining backlog, used to decide whether the
// promotion loop should iterate again.
func (r *StagingRepository) CountUnprocessed(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM staging_games WHERE processed = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unprocessed staging rows: %w", err)
	}
	return count, nil
}

// StreamAll iterates every staging row, processed or not, for the rebuild
// subsystem (component I), which treats staging as the full source of truth.
func (r *StagingRepository) StreamAll(ctx context.Context, fn func(*models.StagingGame) error) error {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+stagingGameColumns+` FROM staging_games ORDER BY scraped_at`)
	if err != nil {
		return fmt.Errorf("failed to stream staging games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g, err := scanStagingGame(rows)
		if err != nil {
			return fmt.Errorf("failed to scan staging game: %w", err)
		}
		if err := fn(g); err != nil {
			return err
		}
	}
	return rows.Err()
}
