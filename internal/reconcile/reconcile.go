// Package reconcile implements the weekly_reconciliation job: teams that
// carry a national rank but have never appeared in a match are usually a
// ranking-feed's name for a team already seeded by the scraping pipeline
// under a slightly different spelling. This pass fuzzy-matches them against
// teams that do have matches and records the match as a learned alias for a
// human to confirm or for the resolver to pick up automatically on the next
// rankings sync.
package reconcile

import (
	"context"
	"fmt"

	"soccerpipe/internal/identity"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/rs/zerolog/log"
)

// Config carries the job's tunables.
type Config struct {
	SimilarityThreshold float64
}

// Stats summarizes one reconciliation pass.
type Stats struct {
	TeamsConsidered int
	AliasesLearned  int
	Unmatched       int
}

// Reconciler drives the unmatched-ranked-team sweep.
type Reconciler struct {
	cfg     Config
	teams   *repository.TeamRepository
	aliases *repository.AliasRepository
}

func New(cfg Config, teams *repository.TeamRepository, aliases *repository.AliasRepository) *Reconciler {
	return &Reconciler{cfg: cfg, teams: teams, aliases: aliases}
}

// Run implements the weekly_reconciliation job.
func (r *Reconciler) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	orphans, err := r.teams.ListWithoutMatches(ctx)
	if err != nil {
		return stats, fmt.Errorf("reconcile: list teams without matches: %w", err)
	}
	stats.TeamsConsidered = len(orphans)

	for _, orphan := range orphans {
		var gender *models.Gender
		if orphan.Gender != models.GenderUnknown {
			g := orphan.Gender
			gender = &g
		}
		var state *string
		if orphan.State.Valid {
			state = &orphan.State.String
		}

		normalized := identity.Normalize(orphan.CanonicalName)
		candidates, err := r.teams.FindBySimilarity(ctx, normalized, state, gender, r.cfg.SimilarityThreshold)
		if err != nil {
			return stats, fmt.Errorf("reconcile: similarity search for team %d: %w", orphan.ID, err)
		}

		matched := firstOtherTeam(candidates, orphan.ID)
		if matched == nil {
			stats.Unmatched++
			continue
		}

		if err := r.aliases.Create(ctx, normalized, matched.ID, models.AliasFuzzyLearned); err != nil {
			log.Warn().Err(err).Str("name", normalized).Msg("reconcile: failed to persist learned alias")
			continue
		}
		stats.AliasesLearned++

		log.Info().
			Int64("unmatched_team_id", orphan.ID).
			Int64("matched_team_id", matched.ID).
			Str("name", orphan.CanonicalName).
			Msg("reconcile: learned alias for rank-only team")
	}

	return stats, nil
}

func firstOtherTeam(candidates []repository.TrigramCandidate, excludeID int64) *models.CanonicalTeam {
	for _, c := range candidates {
		if c.Team.ID != excludeID {
			return c.Team
		}
	}
	return nil
}

// DupePrefixStats summarizes one duplicate-prefix self-healing pass.
type DupePrefixStats struct {
	TeamsScanned int
	Renamed      int
	Merged       int
}

// FixDuplicatePrefixes implements the duplicate-prefix periodic fixer: a
// scraping feed that re-sends a name as "<prefix> <prefix> 15B" leaves a
// canonical_name carrying the repeated prefix whenever it slipped in before
// identity.Normalize's double-prefix stripping existed, or before the team
// was first created from a row that hadn't yet collapsed it. This walks
// every team, recomputes the corrected name, and either renames the row in
// place or, if a team already exists under the corrected name, merges the
// smaller of the two into the larger.
func (r *Reconciler) FixDuplicatePrefixes(ctx context.Context) (DupePrefixStats, error) {
	var stats DupePrefixStats

	var dirty []*models.CanonicalTeam
	err := r.teams.StreamAll(ctx, func(t *models.CanonicalTeam) error {
		stats.TeamsScanned++
		if fixed := identity.FixDoublePrefix(t.CanonicalName); fixed != t.CanonicalName {
			dirty = append(dirty, t)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("dupe_prefix_fix: stream canonical teams: %w", err)
	}

	for _, t := range dirty {
		fixed := identity.FixDoublePrefix(t.CanonicalName)

		existing, err := r.teams.FindByExactCanonicalName(ctx, fixed)
		if err != nil {
			return stats, fmt.Errorf("dupe_prefix_fix: lookup corrected name for team %d: %w", t.ID, err)
		}

		if existing == nil {
			if err := r.teams.Rename(ctx, t.ID, fixed, fixed); err != nil {
				return stats, fmt.Errorf("dupe_prefix_fix: rename team %d: %w", t.ID, err)
			}
			stats.Renamed++
			log.Info().Int64("team_id", t.ID).Str("from", t.CanonicalName).Str("to", fixed).
				Msg("dupe_prefix_fix: renamed duplicate-prefix team")
			continue
		}

		winner, loser := existing, t
		if loser.MatchesPlayed > winner.MatchesPlayed {
			winner, loser = loser, winner
		}
		if err := r.teams.MergeInto(ctx, loser.ID, winner.ID); err != nil {
			return stats, fmt.Errorf("dupe_prefix_fix: merge team %d into %d: %w", loser.ID, winner.ID, err)
		}
		stats.Merged++
		log.Info().Int64("loser_team_id", loser.ID).Int64("winner_team_id", winner.ID).Str("name", fixed).
			Msg("dupe_prefix_fix: merged duplicate-prefix team")
	}

	return stats, nil
}
