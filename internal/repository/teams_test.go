//go:build integration

package repository

import (
	"testing"

	"soccerpipe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_CreateAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	year := int32(2012)
	state := "TX"

	team, err := db.Teams.Create(ctx, &models.NewTeamInput{
		CanonicalName:   "fc dallas academy 2012",
		DisplayName:     "FC Dallas Academy 2012",
		BirthYear:       &year,
		BirthYearSource: models.SourceParsed,
		Gender:          models.GenderMale,
		GenderSource:    models.SourceParsed,
		State:           &state,
	})
	require.NoError(t, err, "should create canonical team")
	assert.NotZero(t, team.ID)

	retrieved, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err, "should retrieve created team")
	assert.Equal(t, "fc dallas academy 2012", retrieved.CanonicalName)
	assert.Equal(t, int32(2012), retrieved.BirthYear.Int32)
}

func TestTeamRepository_FindByExactCanonicalName(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Teams.Create(ctx, &models.NewTeamInput{
		CanonicalName: "solar soccer club 2011b",
		DisplayName:   "Solar Soccer Club 2011B",
		Gender:        models.GenderUnknown,
	})
	require.NoError(t, err)

	found, err := db.Teams.FindByExactCanonicalName(ctx, "solar soccer club 2011b")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Solar Soccer Club 2011B", found.DisplayName)

	missing, err := db.Teams.FindByExactCanonicalName(ctx, "nonexistent team 9999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTeamRepository_FindByPrefix(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	year := int32(2013)
	_, err := db.Teams.Create(ctx, &models.NewTeamInput{
		CanonicalName: "dallas texans 2013 red",
		DisplayName:   "Dallas Texans 2013 Red",
		BirthYear:     &year,
	})
	require.NoError(t, err)

	candidates, err := db.Teams.FindByPrefix(ctx, "dallas texans 2013 blue", 19)
	require.NoError(t, err)
	assert.NotEmpty(t, candidates, "should find a prefix-sharing candidate")
}

func TestTeamRepository_GetByIDNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Teams.GetByID(ctx, 9999999)
	assert.Error(t, err, "should return error for non-existent team")
}
