//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"soccerpipe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTeam(t *testing.T, db *Database, name string) *models.CanonicalTeam {
	t.Helper()
	team, err := db.Teams.Create(context.Background(), &models.NewTeamInput{
		CanonicalName: name,
		DisplayName:   name,
		Gender:        models.GenderUnknown,
	})
	require.NoError(t, err)
	return team
}

func TestMatchRepository_UpsertBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	home := seedTeam(t, db, "upsert home fc 2014")
	away := seedTeam(t, db, "upsert away fc 2014")

	match := &models.Match{
		MatchDate:      time.Now(),
		HomeTeamID:     home.ID,
		AwayTeamID:     away.ID,
		HomeScore:      sql.NullInt32{Int32: 2, Valid: true},
		AwayScore:      sql.NullInt32{Int32: 1, Valid: true},
		SourcePlatform: "test-platform",
		SourceMatchKey: "test-platform-ev1-m1",
	}

	err := db.Matches.UpsertBatch(ctx, []*models.Match{match})
	require.NoError(t, err, "should upsert match batch")

	unlinked, err := db.Matches.ListUnlinked(ctx, 100)
	require.NoError(t, err)

	var found bool
	for _, m := range unlinked {
		if m.SourceMatchKey == "test-platform-ev1-m1" {
			found = true
			assert.Equal(t, int32(2), m.HomeScore.Int32)
		}
	}
	assert.True(t, found, "upserted match should appear as unlinked")
}

func TestStagingRepository_FetchAndMarkProcessed(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	key := "test-platform-ev2-m2"
	row := &models.StagingGame{
		HomeTeamName:   "Staging Home",
		AwayTeamName:   "Staging Away",
		SourcePlatform: "test-platform",
		SourceMatchKey: sql.NullString{String: key, Valid: true},
	}

	n, err := db.Staging.InsertGamesBatch(ctx, []*models.StagingGame{row})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	batch, err := db.Staging.FetchUnprocessedBatch(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	var id int64
	for _, g := range batch {
		if g.SourceMatchKey.String == key {
			id = g.ID
		}
	}
	require.NotZero(t, id)

	err = db.Staging.MarkProcessed(ctx, id, "")
	require.NoError(t, err)

	count, err := db.Staging.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 0)
}

func TestAliasRepository_CreateAndFind(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := seedTeam(t, db, "alias target fc 2015")

	err := db.Aliases.Create(ctx, "aliased name fc 2015", team.ID, models.AliasFuzzyLearned)
	require.NoError(t, err)

	found, ok, err := db.Aliases.FindTeamIDByAlias(ctx, "aliased name fc 2015")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, team.ID, found)
}
