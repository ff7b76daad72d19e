package linkage

import (
	"testing"
	"time"

	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestInferEvent_PrefersSharedEventWithinWindow(t *testing.T) {
	m := &models.Match{HomeTeamID: 1, AwayTeamID: 2, MatchDate: mustDate(t, "2026-03-15")}

	homeHistory := []repository.EventHistoryEntry{
		{Kind: models.EventKindLeague, EventID: 10, MinDate: "2026-01-01", MaxDate: "2026-05-01", Count: 5},
	}
	awayHistory := []repository.EventHistoryEntry{
		{Kind: models.EventKindLeague, EventID: 10, MinDate: "2026-01-01", MaxDate: "2026-05-01", Count: 3},
	}

	chosen, basis, ok := inferEvent(m, homeHistory, awayHistory)
	assert.True(t, ok)
	assert.Equal(t, "shared", basis)
	assert.Equal(t, int64(10), chosen.EventID)
}

func TestInferEvent_FallsBackToSingleTeamEvent(t *testing.T) {
	m := &models.Match{HomeTeamID: 1, AwayTeamID: 2, MatchDate: mustDate(t, "2026-03-15")}

	homeHistory := []repository.EventHistoryEntry{
		{Kind: models.EventKindTournament, EventID: 20, MinDate: "2026-03-01", MaxDate: "2026-03-20", Count: 2},
	}

	chosen, basis, ok := inferEvent(m, homeHistory, nil)
	assert.True(t, ok)
	assert.Equal(t, "single_team", basis)
	assert.Equal(t, int64(20), chosen.EventID)
}

func TestInferEvent_LeavesUnlinkedWhenNoCandidateFits(t *testing.T) {
	m := &models.Match{HomeTeamID: 1, AwayTeamID: 2, MatchDate: mustDate(t, "2026-09-01")}

	homeHistory := []repository.EventHistoryEntry{
		{Kind: models.EventKindLeague, EventID: 10, MinDate: "2026-01-01", MaxDate: "2026-02-01", Count: 5},
	}

	_, _, ok := inferEvent(m, homeHistory, nil)
	assert.False(t, ok)
}

func TestInferEvent_DoesNotFallBackWhenBothTeamsHaveHistory(t *testing.T) {
	m := &models.Match{HomeTeamID: 1, AwayTeamID: 2, MatchDate: mustDate(t, "2026-03-15")}

	homeHistory := []repository.EventHistoryEntry{
		{Kind: models.EventKindLeague, EventID: 10, MinDate: "2026-01-01", MaxDate: "2026-05-01", Count: 5},
	}
	awayHistory := []repository.EventHistoryEntry{
		{Kind: models.EventKindTournament, EventID: 99, MinDate: "2026-01-01", MaxDate: "2026-05-01", Count: 1},
	}

	_, _, ok := inferEvent(m, homeHistory, awayHistory)
	assert.False(t, ok)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}
