// Package promotion batches raw staging_games rows, resolves them to
// canonical team and event ids, validates them against the pipeline's
// invariants, and upserts the survivors into matches_v2.
package promotion

import (
	"context"
	"fmt"
	"time"

	"soccerpipe/internal/eventresolver"
	"soccerpipe/internal/identity"
	"soccerpipe/internal/metrics"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
)

// Config carries the pipeline's tunables, sourced from internal/config.
type Config struct {
	BatchSize     int
	SubBatchSize  int
	MaxIterations int
	MinDate       time.Time
	MaxFutureDays int
}

// Stats summarizes one promote() call.
type Stats struct {
	Iterations   int
	RowsSeen     int
	RowsDropped  int
	RowsUpserted int
}

// Pipeline drives staging rows through resolution, validation and upsert.
type Pipeline struct {
	cfg       Config
	staging   *repository.StagingRepository
	matches   *repository.MatchRepository
	standings *repository.StandingRepository
	teamRepo  *repository.TeamRepository
	teams     *identity.Resolver
	events    *eventresolver.Resolver
}

func New(cfg Config, staging *repository.StagingRepository, matches *repository.MatchRepository, standings *repository.StandingRepository, teamRepo *repository.TeamRepository, teams *identity.Resolver, events *eventresolver.Resolver) *Pipeline {
	return &Pipeline{cfg: cfg, staging: staging, matches: matches, standings: standings, teamRepo: teamRepo, teams: teams, events: events}
}

// Promote repeatedly drains the staging backlog until it's empty or
// MaxIterations is hit.
func (p *Pipeline) Promote(ctx context.Context) (Stats, error) {
	var stats Stats

	for iter := 0; iter < p.cfg.MaxIterations; iter++ {
		stats.Iterations++

		rows, err := p.staging.FetchUnprocessedBatch(ctx, p.cfg.BatchSize)
		if err != nil {
			return stats, err
		}
		if len(rows) == 0 {
			break
		}

		n, dropped, upserted, err := p.promoteBatch(ctx, rows)
		stats.RowsSeen += n
		stats.RowsDropped += dropped
		stats.RowsUpserted += upserted
		if err != nil {
			return stats, err
		}

		if len(rows) < p.cfg.BatchSize {
			break
		}
	}

	return stats, nil
}

type resolvedRow struct {
	staging    *models.StagingGame
	match      *models.Match
	dropReason string
}

func (p *Pipeline) promoteBatch(ctx context.Context, rows []*models.StagingGame) (seen, dropped, upserted int, err error) {
	start := time.Now()
	defer func() { metrics.PromotionBatchDuration.Observe(time.Since(start).Seconds()) }()

	seen = len(rows)

	var merr *multierror.Error
	resolved := make([]resolvedRow, 0, len(rows))

	for _, row := range rows {
		rr := p.resolveRow(ctx, row)
		if rr.dropReason != "" {
			merr = multierror.Append(merr, &rowError{matchKey: row.SourceMatchKey.String, reason: rr.dropReason})
		}
		resolved = append(resolved, rr)
	}

	valid := make([]*models.Match, 0, len(resolved))
	processedIDs := make([]int64, 0, len(resolved))

	for _, rr := range resolved {
		if rr.dropReason != "" {
			if markErr := p.staging.MarkProcessed(ctx, rr.staging.ID, rr.dropReason); markErr != nil {
				return seen, dropped, upserted, markErr
			}
			dropped++
			continue
		}
		valid = append(valid, rr.match)
		processedIDs = append(processedIDs, rr.staging.ID)
	}

	for subStart := 0; subStart < len(valid); subStart += p.cfg.SubBatchSize {
		subEnd := subStart + p.cfg.SubBatchSize
		if subEnd > len(valid) {
			subEnd = len(valid)
		}
		if err := p.matches.UpsertBatch(ctx, valid[subStart:subEnd]); err != nil {
			return seen, dropped, upserted, err
		}
		upserted += subEnd - subStart
		metrics.PromotionRowsTotal.WithLabelValues("upserted").Add(float64(subEnd - subStart))
	}

	if err := p.staging.MarkProcessedBatch(ctx, processedIDs); err != nil {
		return seen, dropped, upserted, err
	}

	metrics.PromotionRowsTotal.WithLabelValues("dropped").Add(float64(dropped))

	status := "ok"
	if merr.ErrorOrNil() != nil {
		status = "partial"
		log.Warn().Err(merr).Int("dropped", dropped).Msg("promotion batch had invariant violations")
	}
	metrics.PromotionBatchesTotal.WithLabelValues(status).Inc()

	return seen, dropped, upserted, nil
}

// ResolveRow exposes the same per-row resolution and validation resolveRow
// performs, for callers (the rebuild subsystem) that need a candidate Match
// without going through the staging-table read/write loop.
func (p *Pipeline) ResolveRow(ctx context.Context, row *models.StagingGame) (*models.Match, error) {
	rr := p.resolveRow(ctx, row)
	if rr.dropReason != "" {
		return nil, fmt.Errorf("%s", rr.dropReason)
	}
	return rr.match, nil
}

// resolveRow builds the candidate Match for one staging row, or marks it
// with a drop reason per step 4's invariant list.
func (p *Pipeline) resolveRow(ctx context.Context, row *models.StagingGame) resolvedRow {
	if !row.MatchDate.Valid {
		return resolvedRow{staging: row, dropReason: "missing match_date"}
	}

	maxDate := time.Now().AddDate(0, 0, p.cfg.MaxFutureDays)
	if row.MatchDate.Time.Before(p.cfg.MinDate) || row.MatchDate.Time.After(maxDate) {
		return resolvedRow{staging: row, dropReason: "match_date outside allowed range"}
	}

	homeID, _, err := p.teams.Resolve(ctx, identity.Input{Name: row.HomeTeamName})
	if err != nil {
		return resolvedRow{staging: row, dropReason: "home team resolution failed: " + err.Error()}
	}
	awayID, _, err := p.teams.Resolve(ctx, identity.Input{Name: row.AwayTeamName})
	if err != nil {
		return resolvedRow{staging: row, dropReason: "away team resolution failed: " + err.Error()}
	}

	if homeID == awayID {
		return resolvedRow{staging: row, dropReason: "home_team_id equals away_team_id"}
	}

	// Invariants (e) and (f): a resolved pair can still land on opposite
	// sides of an age group or gender split, since the resolver's birth-year
	// gate only protects strategies 4-6 against linking to the WRONG
	// existing team, not against two otherwise-valid teams simply being
	// incompatible with each other. Re-check the pair explicitly.
	home, err := p.teamRepo.GetByID(ctx, homeID)
	if err != nil {
		return resolvedRow{staging: row, dropReason: "home team lookup failed: " + err.Error()}
	}
	away, err := p.teamRepo.GetByID(ctx, awayID)
	if err != nil {
		return resolvedRow{staging: row, dropReason: "away team lookup failed: " + err.Error()}
	}
	if reason := incompatiblePairReason(home, away); reason != "" {
		return resolvedRow{staging: row, dropReason: reason}
	}

	match := &models.Match{
		MatchDate:      row.MatchDate.Time,
		MatchTime:      row.MatchTime,
		HomeTeamID:     homeID,
		AwayTeamID:     awayID,
		HomeScore:      row.HomeScore,
		AwayScore:      row.AwayScore,
		Venue:          row.VenueName,
		SourcePlatform: row.SourcePlatform,
		SourceMatchKey: row.SourceMatchKey.String,
	}

	if row.EventSourceID.Valid {
		resolvedEvent, err := p.events.Resolve(ctx, eventresolver.Input{
			SourceEventID:  row.EventSourceID.String,
			SourcePlatform: row.SourcePlatform,
			EventName:      row.EventName.String,
			MinDate:        row.MatchDate.Time,
			MaxDate:        row.MatchDate.Time,
		})
		if err != nil {
			return resolvedRow{staging: row, dropReason: "event resolution failed: " + err.Error()}
		}
		if resolvedEvent.Kind == models.EventKindLeague {
			match.LeagueID.Int64, match.LeagueID.Valid = resolvedEvent.ID, true
		} else {
			match.TournamentID.Int64, match.TournamentID.Valid = resolvedEvent.ID, true
		}
	}

	return resolvedRow{staging: row, match: match}
}

// incompatiblePairReason implements invariants (e) and (f): a resolved home
// and away team must not disagree on birth year by more than one year, nor
// disagree on gender when both are known. Returns "" when the pair is
// compatible.
func incompatiblePairReason(home, away *models.CanonicalTeam) string {
	if home.BirthYear.Valid && away.BirthYear.Valid {
		diff := home.BirthYear.Int32 - away.BirthYear.Int32
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			return "birth_year mismatch exceeds 1 year"
		}
	}
	if home.Gender != models.GenderUnknown && away.Gender != models.GenderUnknown && home.Gender != away.Gender {
		return "gender mismatch between home and away team"
	}
	return ""
}

type rowError struct {
	matchKey string
	reason   string
}

func (e *rowError) Error() string {
	return e.matchKey + ": " + e.reason
}

// StandingsStats summarizes one PromoteStandings call.
type StandingsStats struct {
	Iterations   int
	RowsSeen     int
	RowsDropped  int
	RowsUpserted int
}

// PromoteStandings drains the staging_standings backlog into league_standings,
// the same resolve-then-upsert shape Promote applies to matches. Standings
// that can't be tied to a league (an unresolved event, or one that resolves
// to a tournament) are dropped rather than promoted, since league_standings
// has no tournament counterpart.
func (p *Pipeline) PromoteStandings(ctx context.Context) (StandingsStats, error) {
	var stats StandingsStats

	for iter := 0; iter < p.cfg.MaxIterations; iter++ {
		stats.Iterations++

		rows, err := p.staging.FetchUnprocessedStandingsBatch(ctx, p.cfg.BatchSize)
		if err != nil {
			return stats, err
		}
		if len(rows) == 0 {
			break
		}

		n, dropped, upserted, err := p.promoteStandingsBatch(ctx, rows)
		stats.RowsSeen += n
		stats.RowsDropped += dropped
		stats.RowsUpserted += upserted
		if err != nil {
			return stats, err
		}

		if len(rows) < p.cfg.BatchSize {
			break
		}
	}

	return stats, nil
}

func (p *Pipeline) promoteStandingsBatch(ctx context.Context, rows []*models.StagingStandings) (seen, dropped, upserted int, err error) {
	seen = len(rows)

	valid := make([]*models.LeagueStanding, 0, len(rows))
	processedIDs := make([]int64, 0, len(rows))

	for _, row := range rows {
		standing, dropReason := p.resolveStandingsRow(ctx, row)
		if dropReason != "" {
			if markErr := p.staging.MarkStandingsProcessed(ctx, row.ID, dropReason); markErr != nil {
				return seen, dropped, upserted, markErr
			}
			dropped++
			continue
		}
		valid = append(valid, standing)
		processedIDs = append(processedIDs, row.ID)
	}

	for subStart := 0; subStart < len(valid); subStart += p.cfg.SubBatchSize {
		subEnd := subStart + p.cfg.SubBatchSize
		if subEnd > len(valid) {
			subEnd = len(valid)
		}
		if err := p.standings.UpsertBatch(ctx, valid[subStart:subEnd]); err != nil {
			return seen, dropped, upserted, err
		}
		upserted += subEnd - subStart
	}

	if err := p.staging.MarkStandingsProcessedBatch(ctx, processedIDs); err != nil {
		return seen, dropped, upserted, err
	}

	return seen, dropped, upserted, nil
}

func (p *Pipeline) resolveStandingsRow(ctx context.Context, row *models.StagingStandings) (*models.LeagueStanding, string) {
	if !row.EventSourceID.Valid {
		return nil, "missing event_source_id"
	}

	var gender *models.Gender
	if row.Gender.Valid && row.Gender.String != "" {
		g := models.Gender(row.Gender.String)
		gender = &g
	}

	teamID, _, err := p.teams.Resolve(ctx, identity.Input{Name: row.TeamName, Gender: gender})
	if err != nil {
		return nil, "team resolution failed: " + err.Error()
	}

	resolvedEvent, err := p.events.Resolve(ctx, eventresolver.Input{
		SourceEventID:     row.EventSourceID.String,
		SourcePlatform:    row.SourcePlatform,
		EventName:         row.EventName.String,
		AdapterHintLeague: boolPtr(true),
	})
	if err != nil {
		return nil, "event resolution failed: " + err.Error()
	}
	if resolvedEvent.Kind != models.EventKindLeague {
		return nil, "standings event resolved to a tournament, not a league"
	}

	return &models.LeagueStanding{
		LeagueID: resolvedEvent.ID,
		TeamID:   teamID,
		Division: row.Division.String,
		Wins:     int(row.Wins.Int32),
		Losses:   int(row.Losses.Int32),
		Draws:    int(row.Draws.Int32),
		Points:   int(row.Points.Int32),
		Rank:     int(row.Rank.Int32),
	}, ""
}

func boolPtr(b bool) *bool { return &b }
