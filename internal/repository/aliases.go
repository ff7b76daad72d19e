package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"

	"github.com/jackc/pgx/v5"
)

// AliasRepository handles team_aliases database operations, the backbone of
// identity resolver strategy 1 (exact alias hit).
type AliasRepository struct {
	db *Database
}

// FindTeamIDByAlias implements strategy 1: an exact lookup of a normalized
// name in team_aliases.
func (r *AliasRepository) FindTeamIDByAlias(ctx context.Context, aliasName string) (int64, bool, error) {
	var teamID int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT team_id FROM team_aliases WHERE alias_name = $1`,
		aliasName,
	).Scan(&teamID)

	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up team alias: %w", err)
	}
	return teamID, true, nil
}

// Create persists a new alias, either learned via fuzzy matching (strategy 6)
// or entered by an operator merging two teams.
func (r *AliasRepository) Create(ctx context.Context, aliasName string, teamID int64, source models.TeamAliasSource) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO team_aliases (alias_name, team_id, source) VALUES ($1, $2, $3)
		 ON CONFLICT (alias_name) DO NOTHING`,
		aliasName, teamID, source,
	)
	if err != nil {
		return fmt.Errorf("failed to create team alias: %w", err)
	}
	return nil
}

// CountOrphaned returns the number of aliases whose team_id no longer
// exists, a check of the alias table's referential closure.
func (r *AliasRepository) CountOrphaned(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM team_aliases a
		LEFT JOIN teams_v2 t ON t.id = a.team_id
		WHERE t.id IS NULL
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orphaned aliases: %w", err)
	}
	return count, nil
}
