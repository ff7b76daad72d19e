package models

import (
	"database/sql"
	"time"
)

// Gender is the tagged variant for a team's competitive gender category.
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "unknown"
)

// FieldSource records how an inferred team attribute was obtained, per the
// identity resolver's birth-year/gender extraction ladder.
type FieldSource string

const (
	SourceParsed   FieldSource = "parsed"
	SourceInferred FieldSource = "inferred"
	SourceOfficial FieldSource = "official"
	SourceUnknown  FieldSource = "unknown"
)

// CanonicalTeam is the system's unique entity for a real-world team across
// all source platforms.
type CanonicalTeam struct {
	ID               int64           `db:"id"`
	CanonicalName    string          `db:"canonical_name"`
	DisplayName      string          `db:"display_name"`
	BirthYear        sql.NullInt32   `db:"birth_year"`
	BirthYearSource  FieldSource     `db:"birth_year_source"`
	Gender           Gender          `db:"gender"`
	GenderSource     FieldSource     `db:"gender_source"`
	State            sql.NullString  `db:"state"`
	ClubID           sql.NullInt64   `db:"club_id"`
	EloRating        float64         `db:"elo_rating"`
	MatchesPlayed    int             `db:"matches_played"`
	Wins             int             `db:"wins"`
	Losses           int             `db:"losses"`
	Draws            int             `db:"draws"`
	GoalsFor         int             `db:"goals_for"`
	GoalsAgainst     int             `db:"goals_against"`
	NationalRank     sql.NullInt32   `db:"national_rank"`
	DataQualityScore int             `db:"data_quality_score"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// NewTeamInput is the shape the identity resolver uses to create a canonical
// team when every matching strategy misses.
type NewTeamInput struct {
	CanonicalName   string
	DisplayName     string
	BirthYear       *int32
	BirthYearSource FieldSource
	Gender          Gender
	GenderSource    FieldSource
	State           *string
	ClubID          *int64
}

// TeamAliasSource records how a team_aliases row came to exist.
type TeamAliasSource string

const (
	AliasSeeded       TeamAliasSource = "seeded"
	AliasFuzzyLearned TeamAliasSource = "fuzzy_learned"
	AliasOperator     TeamAliasSource = "operator"
)

// TeamAlias is a previously seen source-name known to resolve to a canonical team.
type TeamAlias struct {
	ID        int64           `db:"id"`
	AliasName string          `db:"alias_name"`
	TeamID    int64           `db:"team_id"`
	Source    TeamAliasSource `db:"source"`
	CreatedAt time.Time       `db:"created_at"`
}

// Club optionally groups CanonicalTeams that share a club prefix, populated
// opportunistically by the resolver rather than required.
type Club struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
	CreatedAt time.Time      `db:"created_at"`
}
