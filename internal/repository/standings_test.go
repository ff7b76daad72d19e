//go:build integration

package repository

import (
	"context"
	"testing"

	"soccerpipe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLeague(t *testing.T, db *Database, name, sourceEventID string) *models.League {
	t.Helper()
	league, err := db.Events.CreateLeague(context.Background(), name, sourceEventID, "test-platform", nil)
	require.NoError(t, err)
	return league
}

func TestStandingRepository_UpsertBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := seedTeam(t, db, "standings fc 2013")
	league := seedLeague(t, db, "standings upsert league", "standings-ev-1")

	standing := &models.LeagueStanding{
		LeagueID: league.ID,
		TeamID:   team.ID,
		Division: "U13 Gold",
		Wins:     5,
		Losses:   2,
		Draws:    1,
		Points:   16,
		Rank:     3,
	}

	err := db.Standings.UpsertBatch(ctx, []*models.LeagueStanding{standing})
	require.NoError(t, err, "should upsert standings batch")

	rows, err := db.Standings.ListForLeague(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "U13 Gold", rows[0].Division)
	assert.Equal(t, 5, rows[0].Wins)
	assert.Equal(t, 3, rows[0].Rank)

	// A second upsert for the same (league_id, team_id) updates in place
	// rather than creating a second row.
	standing.Wins = 6
	standing.Points = 19
	standing.Rank = 2

	err = db.Standings.UpsertBatch(ctx, []*models.LeagueStanding{standing})
	require.NoError(t, err, "should upsert standings batch again")

	rows, err = db.Standings.ListForLeague(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "upsert on conflict should not duplicate the row")
	assert.Equal(t, 6, rows[0].Wins)
	assert.Equal(t, 19, rows[0].Points)
	assert.Equal(t, 2, rows[0].Rank)
}

func TestStandingRepository_ListForLeague_Empty(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league := seedLeague(t, db, "standings empty league", "standings-ev-2")

	rows, err := db.Standings.ListForLeague(ctx, league.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
