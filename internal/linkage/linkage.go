// Package linkage implements the Event-Linkage Inferrer (component H):
// matches with both teams resolved but no event get one inferred from the
// two teams' shared or individual event histories. Grounded on the
// teacher's standings-reconciliation pass in internal/processor, adapted
// to operate over event history rather than box scores.
package linkage

import (
	"context"
	"fmt"
	"time"

	"soccerpipe/internal/metrics"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/rs/zerolog/log"
)

const historyWindowPad = 30 * 24 * time.Hour

// Config carries the inferrer's tunables.
type Config struct {
	BatchSize int
	DryRun    bool
}

// Stats summarizes one Infer() call.
type Stats struct {
	MatchesConsidered int
	MatchesLinked     int
}

// Inferrer drives the event-linkage inference pass over unlinked matches.
type Inferrer struct {
	cfg     Config
	matches *repository.MatchRepository
	events  *repository.EventRepository
}

func New(cfg Config, matches *repository.MatchRepository, events *repository.EventRepository) *Inferrer {
	return &Inferrer{cfg: cfg, matches: matches, events: events}
}

type candidateEvent struct {
	entry repository.EventHistoryEntry
	votes int
}

// Infer runs the linkage pass once over the current backlog of unlinked
// matches.
func (in *Inferrer) Infer(ctx context.Context) (Stats, error) {
	var stats Stats

	unlinked, err := in.matches.ListUnlinked(ctx, in.cfg.BatchSize)
	if err != nil {
		return stats, err
	}
	stats.MatchesConsidered = len(unlinked)

	historyCache := make(map[int64][]repository.EventHistoryEntry)

	historyFor := func(teamID int64) ([]repository.EventHistoryEntry, error) {
		if h, ok := historyCache[teamID]; ok {
			return h, nil
		}
		h, err := in.matches.EventHistoryForTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		historyCache[teamID] = h
		return h, nil
	}

	for _, m := range unlinked {
		homeHistory, err := historyFor(m.HomeTeamID)
		if err != nil {
			return stats, err
		}
		awayHistory, err := historyFor(m.AwayTeamID)
		if err != nil {
			return stats, err
		}

		chosen, basis, ok := inferEvent(m, homeHistory, awayHistory)
		if !ok {
			continue
		}

		if in.cfg.DryRun {
			log.Info().
				Int64("match_id", m.ID).
				Str("kind", string(chosen.Kind)).
				Int64("event_id", chosen.EventID).
				Msg("linkage dry-run: would link match")
			stats.MatchesLinked++
			continue
		}

		if err := in.matches.LinkToEvent(ctx, m.ID, chosen.Kind, chosen.EventID); err != nil {
			return stats, err
		}
		stats.MatchesLinked++
		metrics.LinkageInferredTotal.WithLabelValues(basis).Inc()
	}

	return stats, nil
}

// inferEvent implements steps 3a/3b: prefer a shared event between both
// teams whose padded date window contains the match, tie-broken by whichever
// event both teams have played in most; otherwise fall back to a single
// team's sole event if its window fits.
func inferEvent(m *models.Match, homeHistory, awayHistory []repository.EventHistoryEntry) (repository.EventHistoryEntry, string, bool) {
	shared := sharedEvents(homeHistory, awayHistory)

	var best repository.EventHistoryEntry
	bestVotes := -1
	found := false

	for _, c := range shared {
		if !windowContains(c.entry, m.MatchDate) {
			continue
		}
		if c.votes > bestVotes {
			best, bestVotes, found = c.entry, c.votes, true
		}
	}
	if found {
		return best, "shared", true
	}

	if len(homeHistory) == 1 && windowContains(homeHistory[0], m.MatchDate) && len(awayHistory) == 0 {
		return homeHistory[0], "single_team", true
	}
	if len(awayHistory) == 1 && windowContains(awayHistory[0], m.MatchDate) && len(homeHistory) == 0 {
		return awayHistory[0], "single_team", true
	}

	return repository.EventHistoryEntry{}, "", false
}

func sharedEvents(a, b []repository.EventHistoryEntry) []candidateEvent {
	byKey := make(map[string]repository.EventHistoryEntry, len(a))
	for _, e := range a {
		byKey[eventKey(e)] = e
	}

	var out []candidateEvent
	for _, e := range b {
		if home, ok := byKey[eventKey(e)]; ok {
			out = append(out, candidateEvent{entry: home, votes: home.Count + e.Count})
		}
	}
	return out
}

func eventKey(e repository.EventHistoryEntry) string {
	return fmt.Sprintf("%s:%d", e.Kind, e.EventID)
}

func windowContains(e repository.EventHistoryEntry, matchDate time.Time) bool {
	minDate, err1 := time.Parse("2006-01-02", e.MinDate)
	maxDate, err2 := time.Parse("2006-01-02", e.MaxDate)
	if err1 != nil || err2 != nil {
		return false
	}
	lower := minDate.Add(-historyWindowPad)
	upper := maxDate.Add(historyWindowPad)
	return !matchDate.Before(lower) && !matchDate.After(upper)
}
