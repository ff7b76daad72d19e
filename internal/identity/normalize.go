package identity

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe       = regexp.MustCompile(`\s+`)
	trailingParenRe    = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	fullYearRe         = regexp.MustCompile(`\b20[0-1][0-9]\b`)
	shortYearRe        = regexp.MustCompile(`(?i)\b(0[5-9]|1[0-9])([bg])\b`)
	ageGroupRe         = regexp.MustCompile(`(?i)\bu-?(\d{1,2})\b`)
	genderBoysGirlsRe  = regexp.MustCompile(`(?i)\b(boys|girls)\b`)
	genderLetterDigitRe = regexp.MustCompile(`(?i)\b([bg])(\d{2})\b`)
)

// Normalize lowercases a source team name, collapses internal whitespace,
// strips a trailing parenthesized qualifier, and removes an immediately
// repeated prefix (recursively, up to 6 words).
func Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = trailingParenRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	return stripDoublePrefix(name)
}

// stripDoublePrefix removes a repeated leading word sequence, e.g.
// "kansas rush kansas rush pre-ecnl 14b" -> "kansas rush pre-ecnl 14b".
// Recurses because a source can duplicate the prefix more than once.
func stripDoublePrefix(name string) string {
	words := strings.Fields(name)
	for prefixLen := min(6, len(words)/2); prefixLen >= 1; prefixLen-- {
		if prefixLen*2 > len(words) {
			continue
		}
		first := strings.Join(words[:prefixLen], " ")
		second := strings.Join(words[prefixLen:prefixLen*2], " ")
		if first == second {
			rest := strings.Join(words[prefixLen:], " ")
			return stripDoublePrefix(rest)
		}
	}
	return name
}

// FixDoublePrefix exposes stripDoublePrefix for the duplicate-prefix fixer
// job, which re-checks already-stored canonical_name values rather than a
// fresh incoming name.
func FixDoublePrefix(canonicalName string) string {
	return stripDoublePrefix(canonicalName)
}

// StripSuffix removes a trailing parenthesized qualifier that Normalize
// otherwise already strips. Identity resolver strategy 3 applies it to the
// already-normalized incoming name, never to a stored canonical_name.
func StripSuffix(canonicalName string) string {
	return strings.TrimSpace(trailingParenRe.ReplaceAllString(canonicalName, ""))
}

// ExtractBirthYear parses a birth year from a team name, trying a full
// 4-digit year, then a 2-digit year adjacent to a B/G gender marker, then an
// age-group token (U14 etc.) resolved against the current season year.
// Returns (year, found).
func ExtractBirthYear(name string, currentSeasonYear int) (int32, bool) {
	if m := fullYearRe.FindString(name); m != "" {
		y, _ := strconv.Atoi(m)
		return int32(y), true
	}

	if m := shortYearRe.FindStringSubmatch(name); len(m) == 3 {
		y, _ := strconv.Atoi(m[1])
		return int32(2000 + y), true
	}

	if m := ageGroupRe.FindStringSubmatch(name); len(m) == 2 {
		age, err := strconv.Atoi(m[1])
		if err == nil && age > 0 && age < 25 {
			return int32(currentSeasonYear - age), true
		}
	}

	return 0, false
}

// ExtractGender parses a gender marker from a team name.
func ExtractGender(name string) (string, bool) {
	if m := genderBoysGirlsRe.FindStringSubmatch(name); len(m) == 2 {
		if strings.EqualFold(m[1], "boys") {
			return "M", true
		}
		return "F", true
	}

	if m := genderLetterDigitRe.FindStringSubmatch(name); len(m) == 3 {
		if strings.EqualFold(m[1], "b") {
			return "M", true
		}
		return "F", true
	}

	return "", false
}
