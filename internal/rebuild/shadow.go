package rebuild

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"
	"soccerpipe/internal/promotion"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ShadowPromoter adapts a configured promotion.Pipeline's row resolution
// into an insert against the *_rebuild tables, satisfying RowPromoter.
// Resolved team ids still point at the real teams_v2_rebuild rows created by
// identity.Resolver against production team-lookup tables; only the match
// target table differs.
type ShadowPromoter struct {
	pipeline *promotion.Pipeline
	pool     *pgxpool.Pool
}

func NewShadowPromoter(pipeline *promotion.Pipeline, pool *pgxpool.Pool) *ShadowPromoter {
	return &ShadowPromoter{pipeline: pipeline, pool: pool}
}

func (s *ShadowPromoter) PromoteIntoShadow(ctx context.Context, row *models.StagingGame) error {
	match, err := s.pipeline.ResolveRow(ctx, row)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	// The shadow table carries no uniqueness constraint (it's created
	// EXCLUDING INDEXES) so every staging row lands a row here; duplicate
	// source_match_key groups are exactly what validate_rebuild's duplicate
	// check is designed to catch before a swap.
	_, err = s.pool.Exec(ctx, `
		INSERT INTO matches_v2_rebuild (
			match_date, match_time, home_team_id, away_team_id, home_score,
			away_score, league_id, tournament_id, venue, source_platform,
			source_match_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, match.MatchDate, match.MatchTime, match.HomeTeamID, match.AwayTeamID,
		match.HomeScore, match.AwayScore, match.LeagueID, match.TournamentID,
		match.Venue, match.SourcePlatform, match.SourceMatchKey)
	if err != nil {
		return fmt.Errorf("insert shadow match: %w", err)
	}

	return nil
}
