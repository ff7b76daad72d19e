package promotion

import (
	"database/sql"
	"testing"

	"soccerpipe/internal/models"

	"github.com/stretchr/testify/assert"
)

func team(birthYear int32, hasBirthYear bool, gender models.Gender) *models.CanonicalTeam {
	t := &models.CanonicalTeam{Gender: gender}
	if hasBirthYear {
		t.BirthYear = sql.NullInt32{Int32: birthYear, Valid: true}
	}
	return t
}

func TestIncompatiblePairReason_AllowsMatchingBirthYearAndGender(t *testing.T) {
	home := team(2014, true, models.GenderMale)
	away := team(2014, true, models.GenderMale)
	assert.Equal(t, "", incompatiblePairReason(home, away))
}

func TestIncompatiblePairReason_AllowsOneYearDrift(t *testing.T) {
	home := team(2014, true, models.GenderMale)
	away := team(2013, true, models.GenderMale)
	assert.Equal(t, "", incompatiblePairReason(home, away))
}

func TestIncompatiblePairReason_RejectsBirthYearDriftOverOneYear(t *testing.T) {
	home := team(2014, true, models.GenderMale)
	away := team(2012, true, models.GenderMale)
	assert.Equal(t, "birth_year mismatch exceeds 1 year", incompatiblePairReason(home, away))
}

func TestIncompatiblePairReason_RejectsGenderMismatch(t *testing.T) {
	home := team(2014, true, models.GenderMale)
	away := team(2014, true, models.GenderFemale)
	assert.Equal(t, "gender mismatch between home and away team", incompatiblePairReason(home, away))
}

func TestIncompatiblePairReason_TreatsMissingBirthYearAsCompatible(t *testing.T) {
	home := team(0, false, models.GenderMale)
	away := team(2014, true, models.GenderMale)
	assert.Equal(t, "", incompatiblePairReason(home, away))
}

func TestIncompatiblePairReason_TreatsUnknownGenderAsCompatible(t *testing.T) {
	home := team(2014, true, models.GenderUnknown)
	away := team(2014, true, models.GenderFemale)
	assert.Equal(t, "", incompatiblePairReason(home, away))
}
