package identity

import (
	"database/sql"
	"testing"

	"soccerpipe/internal/models"

	"github.com/stretchr/testify/assert"
)

func int32p(v int32) *int32 { return &v }

func TestBirthYearsCompatible_TreatsEitherNilAsCompatible(t *testing.T) {
	assert.True(t, birthYearsCompatible(nil, nil))
	assert.True(t, birthYearsCompatible(nil, int32p(2014)))
	assert.True(t, birthYearsCompatible(int32p(2014), nil))
}

func TestBirthYearsCompatible_RequiresExactMatchWhenBothKnown(t *testing.T) {
	assert.True(t, birthYearsCompatible(int32p(2014), int32p(2014)))
	assert.False(t, birthYearsCompatible(int32p(2014), int32p(2013)))
}

func TestFirstBirthYearCompatible_SkipsIncompatibleCandidates(t *testing.T) {
	candidates := []*models.CanonicalTeam{
		{ID: 1, BirthYear: sql.NullInt32{Int32: 2013, Valid: true}},
		{ID: 2, BirthYear: sql.NullInt32{Int32: 2014, Valid: true}},
	}

	got := firstBirthYearCompatible(candidates, int32p(2014))
	assert.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestFirstBirthYearCompatible_ReturnsNilWhenNoCandidateFits(t *testing.T) {
	candidates := []*models.CanonicalTeam{
		{ID: 1, BirthYear: sql.NullInt32{Int32: 2013, Valid: true}},
	}

	got := firstBirthYearCompatible(candidates, int32p(2014))
	assert.Nil(t, got)
}

func TestFirstBirthYearCompatible_UnknownCandidateYearAlwaysMatches(t *testing.T) {
	candidates := []*models.CanonicalTeam{
		{ID: 1, BirthYear: sql.NullInt32{Valid: false}},
	}

	got := firstBirthYearCompatible(candidates, int32p(2014))
	assert.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
}

func TestClubPrefix_ReturnsEmptyWithNoSiblings(t *testing.T) {
	assert.Equal(t, "", clubPrefix("kansas rush 14b", nil))
}

func TestClubPrefix_ReturnsEmptyForAShortName(t *testing.T) {
	siblings := []*models.CanonicalTeam{{ID: 1}}
	assert.Equal(t, "", clubPrefix("rush", siblings))
}

func TestClubPrefix_UsesTwoLeadingWordsWhenThreeOrMoreWordsPresent(t *testing.T) {
	siblings := []*models.CanonicalTeam{{ID: 1}}
	assert.Equal(t, "kansas rush", clubPrefix("kansas rush 14b", siblings))
}

func TestClubPrefix_UsesOneLeadingWordForATwoWordName(t *testing.T) {
	siblings := []*models.CanonicalTeam{{ID: 1}}
	assert.Equal(t, "rush", clubPrefix("rush 14b", siblings))
}
