package repository

import (
	"context"
	"fmt"
	"time"

	"soccerpipe/internal/models"

	"github.com/jackc/pgx/v5"
)

// EventRepository handles leagues and tournaments database operations,
// backing the Event Resolver (component F).
type EventRepository struct {
	db *Database
}

// FindLeague looks up a league by its source identity.
func (r *EventRepository) FindLeague(ctx context.Context, sourceEventID, sourcePlatform string) (*models.League, error) {
	var l models.League
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, source_event_id, source_platform, state, season_id, start_date, end_date, created_at
		FROM leagues WHERE source_event_id = $1 AND source_platform = $2
	`, sourceEventID, sourcePlatform).Scan(
		&l.ID, &l.Name, &l.SourceEventID, &l.SourcePlatform, &l.State,
		&l.SeasonID, &l.StartDate, &l.EndDate, &l.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find league: %w", err)
	}
	return &l, nil
}

// FindTournament looks up a tournament by its source identity.
func (r *EventRepository) FindTournament(ctx context.Context, sourceEventID, sourcePlatform string) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, source_event_id, source_platform, state, start_date, end_date, created_at
		FROM tournaments WHERE source_event_id = $1 AND source_platform = $2
	`, sourceEventID, sourcePlatform).Scan(
		&t.ID, &t.Name, &t.SourceEventID, &t.SourcePlatform, &t.State,
		&t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	return &t, nil
}

// CreateLeague inserts a new league.
func (r *EventRepository) CreateLeague(ctx context.Context, name, sourceEventID, sourcePlatform string, state *string) (*models.League, error) {
	var l models.League
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO leagues (name, source_event_id, source_platform, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_event_id, source_platform) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, source_event_id, source_platform, state, season_id, start_date, end_date, created_at
	`, name, sourceEventID, sourcePlatform, state).Scan(
		&l.ID, &l.Name, &l.SourceEventID, &l.SourcePlatform, &l.State,
		&l.SeasonID, &l.StartDate, &l.EndDate, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return &l, nil
}

// CreateTournament inserts a new tournament, with a best-effort date window
// derived by the caller from staging rows or defaulted to the current season.
func (r *EventRepository) CreateTournament(ctx context.Context, name, sourceEventID, sourcePlatform string, state *string, start, end time.Time) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO tournaments (name, source_event_id, source_platform, state, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_event_id, source_platform) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, source_event_id, source_platform, state, start_date, end_date, created_at
	`, name, sourceEventID, sourcePlatform, state, start, end).Scan(
		&t.ID, &t.Name, &t.SourceEventID, &t.SourcePlatform, &t.State,
		&t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return &t, nil
}

// ActiveEventRef identifies one event by the same (source_event_id,
// source_platform) pair an adapter uses to scrape it.
type ActiveEventRef struct {
	Kind           models.EventKind
	SourceEventID  string
	SourcePlatform string
}

// ActiveEvents returns every league/tournament whose [start_date, end_date]
// overlaps the given window, feeding the daily_active_events_sync job.
func (r *EventRepository) ActiveEvents(ctx context.Context, start, end time.Time) ([]ActiveEventRef, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT 'league', source_event_id, source_platform FROM leagues
		WHERE start_date <= $2 AND end_date >= $1
		UNION ALL
		SELECT 'tournament', source_event_id, source_platform FROM tournaments
		WHERE start_date <= $2 AND end_date >= $1
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list active events: %w", err)
	}
	defer rows.Close()

	var out []ActiveEventRef
	for rows.Next() {
		var ref ActiveEventRef
		if err := rows.Scan(&ref.Kind, &ref.SourceEventID, &ref.SourcePlatform); err != nil {
			return nil, fmt.Errorf("failed to scan active event: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// GetDateWindow returns the [start, end] window of an event, used by the
// linkage inferrer's date-containment check.
func (r *EventRepository) GetDateWindow(ctx context.Context, kind models.EventKind, id int64) (start, end time.Time, err error) {
	var query string
	if kind == models.EventKindLeague {
		query = `SELECT start_date, end_date FROM leagues WHERE id = $1`
	} else {
		query = `SELECT start_date, end_date FROM tournaments WHERE id = $1`
	}
	err = r.db.Pool.QueryRow(ctx, query, id).Scan(&start, &end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to get event date window: %w", err)
	}
	return start, end, nil
}
