package scraper

import (
	"testing"
	"time"

	"soccerpipe/internal/adapter"
	"soccerpipe/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndValidate_DropsDuplicateKeysAndInvalidRows(t *testing.T) {
	matches := []*models.StagedMatch{
		{HomeTeamName: "Alpha FC", AwayTeamName: "Beta FC", MatchDate: time.Now(), SourceMatchKey: "x-1-1"},
		{HomeTeamName: "Alpha FC", AwayTeamName: "Beta FC", MatchDate: time.Now(), SourceMatchKey: "x-1-1"}, // duplicate key
		{HomeTeamName: "", AwayTeamName: "Gamma FC", MatchDate: time.Now(), SourceMatchKey: "x-1-2"},        // missing home team
		{HomeTeamName: "Delta FC", AwayTeamName: "Epsilon FC", MatchDate: time.Now(), SourceMatchKey: "x-1-3"},
	}

	isValid := func(m *models.StagedMatch) bool {
		return m.HomeTeamName != "" && m.AwayTeamName != "" && !m.MatchDate.IsZero()
	}

	out := dedupeAndValidate(matches, isValid)

	assert.Len(t, out, 2)
	keys := map[string]bool{}
	for _, m := range out {
		keys[m.SourceMatchKey] = true
	}
	assert.True(t, keys["x-1-1"])
	assert.True(t, keys["x-1-3"])
}

func TestFilterEvents_ExactMatch(t *testing.T) {
	events := []adapter.SourceEvent{
		{SourceEventID: "u14-boys-premier", Name: "U14 Boys Premier League"},
		{SourceEventID: "u15-girls-premier", Name: "U15 Girls Premier League"},
	}

	out := filterEvents(events, "u15-girls-premier")
	assert.Len(t, out, 1)
	assert.Equal(t, "u15-girls-premier", out[0].SourceEventID)

	assert.Nil(t, filterEvents(events, "not-present"))
}
