package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"
	"soccerpipe/internal/writeguard"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles canonical_team database operations, including the
// lookup shapes the identity resolver's strategy ladder needs.
type TeamRepository struct {
	db *Database
}

const teamColumns = `
	id, canonical_name, display_name, birth_year, birth_year_source, gender,
	gender_source, state, club_id, elo_rating, matches_played, wins, losses,
	draws, goals_for, goals_against, national_rank, data_quality_score,
	created_at, updated_at
`

func scanTeam(row pgx.Row) (*models.CanonicalTeam, error) {
	var t models.CanonicalTeam
	err := row.Scan(
		&t.ID, &t.CanonicalName, &t.DisplayName, &t.BirthYear, &t.BirthYearSource,
		&t.Gender, &t.GenderSource, &t.State, &t.ClubID, &t.EloRating,
		&t.MatchesPlayed, &t.Wins, &t.Losses, &t.Draws, &t.GoalsFor,
		&t.GoalsAgainst, &t.NationalRank, &t.DataQualityScore,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return &t, err
}

// Create inserts a new canonical team, per identity resolver strategy 7.
// An unset gender or source field is stored as unknown.
func (r *TeamRepository) Create(ctx context.Context, in *models.NewTeamInput) (*models.CanonicalTeam, error) {
	gender, genderSource, birthYearSource := in.Gender, in.GenderSource, in.BirthYearSource
	if gender == "" {
		gender = models.GenderUnknown
	}
	if genderSource == "" {
		genderSource = models.SourceUnknown
	}
	if birthYearSource == "" {
		birthYearSource = models.SourceUnknown
	}

	query := `
		INSERT INTO teams_v2 (
			canonical_name, display_name, birth_year, birth_year_source,
			gender, gender_source, state, club_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + teamColumns

	row := r.db.Pool.QueryRow(ctx, query,
		in.CanonicalName, in.DisplayName, in.BirthYear, birthYearSource,
		gender, genderSource, in.State, in.ClubID,
	)

	team, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create canonical team: %w", err)
	}

	log.Debug().Int64("id", team.ID).Str("name", team.CanonicalName).Msg("canonical team created")
	return team, nil
}

// GetByID retrieves a canonical team by its database id.
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.CanonicalTeam, error) {
	query := `SELECT ` + teamColumns + ` FROM teams_v2 WHERE id = $1`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("canonical team not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get canonical team: %w", err)
	}
	return team, nil
}

// FindByExactCanonicalName implements identity resolver strategy 2/3: an
// exact match (or suffix-stripped match, when callers pass the stripped
// name) against canonical_name.
func (r *TeamRepository) FindByExactCanonicalName(ctx context.Context, name string) (*models.CanonicalTeam, error) {
	query := `SELECT ` + teamColumns + ` FROM teams_v2 WHERE canonical_name = $1 LIMIT 1`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find canonical team by name: %w", err)
	}
	return team, nil
}

// FindByPrefix implements identity resolver strategies 4/5: candidates whose
// canonical_name shares the given prefix length. The query does not filter
// by birth year; the caller applies the birth-year gate afterward since NULL
// must be treated as "compatible with anything".
func (r *TeamRepository) FindByPrefix(ctx context.Context, prefix string, prefixLen int) ([]*models.CanonicalTeam, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams_v2
		WHERE left(canonical_name, $2) = left($1, $2)
		LIMIT 25
	`

	rows, err := r.db.Pool.Query(ctx, query, prefix, prefixLen)
	if err != nil {
		return nil, fmt.Errorf("failed to find canonical teams by prefix: %w", err)
	}
	defer rows.Close()

	var teams []*models.CanonicalTeam
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan canonical team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// TrigramCandidate is one row returned by the pg_trgm similarity scan.
type TrigramCandidate struct {
	Team       *models.CanonicalTeam
	Similarity float64
}

// FindBySimilarity implements identity resolver strategy 6: a pg_trgm
// similarity scan constrained to state/gender when those fields are present
// on the incoming row, ordered by descending similarity.
func (r *TeamRepository) FindBySimilarity(ctx context.Context, name string, state *string, gender *models.Gender, threshold float64) ([]TrigramCandidate, error) {
	query := `
		SELECT ` + teamColumns + `, similarity(canonical_name, $1) AS sim
		FROM teams_v2
		WHERE similarity(canonical_name, $1) >= $2
		  AND ($3::text IS NULL OR state = $3)
		  AND ($4::text IS NULL OR gender = $4)
		ORDER BY sim DESC, matches_played DESC, created_at ASC
		LIMIT 10
	`

	var genderArg *string
	if gender != nil {
		g := string(*gender)
		genderArg = &g
	}

	rows, err := r.db.Pool.Query(ctx, query, name, threshold, state, genderArg)
	if err != nil {
		return nil, fmt.Errorf("failed to run trigram similarity scan: %w", err)
	}
	defer rows.Close()

	var candidates []TrigramCandidate
	for rows.Next() {
		var t models.CanonicalTeam
		var sim float64
		err := rows.Scan(
			&t.ID, &t.CanonicalName, &t.DisplayName, &t.BirthYear, &t.BirthYearSource,
			&t.Gender, &t.GenderSource, &t.State, &t.ClubID, &t.EloRating,
			&t.MatchesPlayed, &t.Wins, &t.Losses, &t.Draws, &t.GoalsFor,
			&t.GoalsAgainst, &t.NationalRank, &t.DataQualityScore,
			&t.CreatedAt, &t.UpdatedAt, &sim,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigram candidate: %w", err)
		}
		candidates = append(candidates, TrigramCandidate{Team: &t, Similarity: sim})
	}
	return candidates, rows.Err()
}

// ListWithoutMatches supports the weekly reconciliation job: teams that carry
// a national rank but have never appeared in a match.
func (r *TeamRepository) ListWithoutMatches(ctx context.Context) ([]*models.CanonicalTeam, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams_v2
		WHERE national_rank IS NOT NULL AND matches_played = 0
		ORDER BY national_rank ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled ranked teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.CanonicalTeam
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan canonical team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// SetNationalRank updates the derived ranking field populated by cmd/rankings.
func (r *TeamRepository) SetNationalRank(ctx context.Context, teamID int64, rank int32) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE teams_v2 SET national_rank = $1, updated_at = NOW() WHERE id = $2`,
		rank, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to set national rank: %w", err)
	}
	return nil
}

// Count returns the total number of canonical teams.
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams_v2`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count canonical teams: %w", err)
	}
	return count, nil
}

// Rename applies a corrected canonical_name, used by the duplicate-prefix
// self-healing fixer.
func (r *TeamRepository) Rename(ctx context.Context, id int64, newCanonicalName, newDisplayName string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE teams_v2 SET canonical_name = $1, display_name = $2, updated_at = NOW() WHERE id = $3`,
		newCanonicalName, newDisplayName, id,
	)
	if err != nil {
		return fmt.Errorf("failed to rename canonical team: %w", err)
	}
	return nil
}

// StreamAll streams every canonical team ordered by id, feeding the
// duplicate-prefix fixer's full-table scan.
func (r *TeamRepository) StreamAll(ctx context.Context, fn func(*models.CanonicalTeam) error) error {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+teamColumns+` FROM teams_v2 ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to stream canonical teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return fmt.Errorf("failed to scan canonical team: %w", err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return rows.Err()
}

// MergeInto repoints loserID's matches and aliases onto winnerID and deletes
// the loser row, used when the duplicate-prefix fixer's corrected name
// collides with a canonical team that already exists under that name. Any
// match that would end up with home_team_id == away_team_id after repointing
// (the two duplicates had already played each other) is dropped instead,
// since matches_v2's invariant forbids a team playing itself.
func (r *TeamRepository) MergeInto(ctx context.Context, loserID, winnerID int64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin team merge transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeguard.Authorize(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE matches_v2 SET home_team_id = $1 WHERE home_team_id = $2 AND away_team_id <> $1`,
		winnerID, loserID); err != nil {
		return fmt.Errorf("failed to repoint home matches onto merge winner: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE matches_v2 SET away_team_id = $1 WHERE away_team_id = $2 AND home_team_id <> $1`,
		winnerID, loserID); err != nil {
		return fmt.Errorf("failed to repoint away matches onto merge winner: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM matches_v2 WHERE home_team_id = $1 OR away_team_id = $1`, loserID); err != nil {
		return fmt.Errorf("failed to drop unmergeable loser matches: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE team_aliases SET team_id = $1 WHERE team_id = $2`, winnerID, loserID); err != nil {
		return fmt.Errorf("failed to repoint aliases onto merge winner: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM teams_v2 WHERE id = $1`, loserID); err != nil {
		return fmt.Errorf("failed to delete merged canonical team: %w", err)
	}

	return tx.Commit(ctx)
}
