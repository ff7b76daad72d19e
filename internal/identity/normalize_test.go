package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_LowercasesCollapsesWhitespaceAndStripsParenQualifier(t *testing.T) {
	assert.Equal(t, "kansas rush pre-ecnl 14b", Normalize("  Kansas   Rush Pre-ECNL 14B  (spring)"))
}

func TestNormalize_StripsSingleRepeatedPrefix(t *testing.T) {
	assert.Equal(t, "kansas rush pre-ecnl 14b", Normalize("kansas rush kansas rush pre-ecnl 14b"))
}

func TestNormalize_StripsRepeatedPrefixRecursively(t *testing.T) {
	// A feed that doubles its prefix twice over still collapses to one copy.
	assert.Equal(t, "derby united 15b", Normalize("derby united derby united derby united 15b"))
}

func TestNormalize_LeavesNonRepeatingNameAlone(t *testing.T) {
	assert.Equal(t, "derby united 15b", Normalize("Derby United 15B"))
}

func TestNormalize_IsIdempotent(t *testing.T) {
	for _, raw := range []string{
		"Kansas Rush Kansas Rush Pre-ECNL 14B",
		"Derby United 15B (Fall)",
		"FC Dallas",
	} {
		once := Normalize(raw)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "Normalize(Normalize(%q)) should equal Normalize(%q)", raw, raw)
	}
}

func TestStripDoublePrefix_DoesNotStripAPartialOverlap(t *testing.T) {
	// "fc dallas" vs "dallas fc" share no identical word-for-word prefix, so
	// nothing should be stripped.
	assert.Equal(t, "fc dallas dallas fc", stripDoublePrefix("fc dallas dallas fc"))
}

func TestStripDoublePrefix_RequiresWholeWordMatch(t *testing.T) {
	// "kansas rush" duplicated once is stripped; a short, unrelated name is left alone.
	assert.Equal(t, "kansas rush 14b", stripDoublePrefix("kansas rush kansas rush 14b"))
	assert.Equal(t, "kansas city rush 14b", stripDoublePrefix("kansas city rush 14b"))
}

func TestFixDoublePrefix_MatchesStripDoublePrefix(t *testing.T) {
	assert.Equal(t, stripDoublePrefix("derby united derby united 15b"), FixDoublePrefix("derby united derby united 15b"))
}

func TestExtractBirthYear_PrefersFullYearOverOtherFormats(t *testing.T) {
	y, ok := ExtractBirthYear("Kansas Rush 2014 Boys", 2026)
	assert.True(t, ok)
	assert.Equal(t, int32(2014), y)
}

func TestExtractBirthYear_FallsBackToTwoDigitGenderMarker(t *testing.T) {
	y, ok := ExtractBirthYear("derby united 14b", 2026)
	assert.True(t, ok)
	assert.Equal(t, int32(2014), y)
}

func TestExtractBirthYear_FallsBackToAgeGroup(t *testing.T) {
	y, ok := ExtractBirthYear("Derby United U14", 2026)
	assert.True(t, ok)
	assert.Equal(t, int32(2012), y)
}

func TestExtractBirthYear_ReportsMissWhenNothingMatches(t *testing.T) {
	_, ok := ExtractBirthYear("Derby United", 2026)
	assert.False(t, ok)
}

func TestExtractGender_RecognizesBoysGirlsWords(t *testing.T) {
	g, ok := ExtractGender("Kansas Rush 2014 Boys")
	assert.True(t, ok)
	assert.Equal(t, "M", g)

	g, ok = ExtractGender("Kansas Rush 2014 Girls")
	assert.True(t, ok)
	assert.Equal(t, "F", g)
}

func TestExtractGender_RecognizesLetterDigitMarker(t *testing.T) {
	g, ok := ExtractGender("Derby United B14")
	assert.True(t, ok)
	assert.Equal(t, "M", g)

	g, ok = ExtractGender("Derby United G14")
	assert.True(t, ok)
	assert.Equal(t, "F", g)
}
