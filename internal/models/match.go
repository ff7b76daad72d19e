package models

import (
	"database/sql"
	"time"
)

// Match is a single completed or scheduled fixture between two canonical teams.
type Match struct {
	ID              int64          `db:"id"`
	MatchDate       time.Time      `db:"match_date"`
	MatchTime       sql.NullString `db:"match_time"`
	HomeTeamID      int64          `db:"home_team_id"`
	AwayTeamID      int64          `db:"away_team_id"`
	HomeScore       sql.NullInt32  `db:"home_score"`
	AwayScore       sql.NullInt32  `db:"away_score"`
	LeagueID        sql.NullInt64  `db:"league_id"`
	TournamentID    sql.NullInt64  `db:"tournament_id"`
	Venue           sql.NullString `db:"venue"`
	SourcePlatform  string         `db:"source_platform"`
	SourceMatchKey  string         `db:"source_match_key"`
	DeletedAt       sql.NullTime   `db:"deleted_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// HasEvent reports whether the match has been linked to a league or tournament.
func (m *Match) HasEvent() bool {
	return m.LeagueID.Valid || m.TournamentID.Valid
}

// StagedMatch is the shape an adapter emits before team/event identity has
// been resolved. It carries the raw, as-scraped strings.
type StagedMatch struct {
	MatchDate      time.Time
	MatchTime      string
	HomeTeamName   string
	AwayTeamName   string
	HomeScore      *int
	AwayScore      *int
	EventName      string
	EventSourceID  string
	Venue          string
	Division       string
	SourcePlatform string
	SourceMatchKey string
	RawData        map[string]any
}
