package scraper

import (
	"database/sql"

	"soccerpipe/internal/models"
)

// toStagingGame maps an adapter's resolved-identity-free StagedMatch into
// the nullable-column shape staging_games expects.
func toStagingGame(m *models.StagedMatch, raw []byte) *models.StagingGame {
	g := &models.StagingGame{
		HomeTeamName:   m.HomeTeamName,
		AwayTeamName:   m.AwayTeamName,
		SourcePlatform: m.SourcePlatform,
		RawData:        raw,
	}

	if !m.MatchDate.IsZero() {
		g.MatchDate = sql.NullTime{Time: m.MatchDate, Valid: true}
	}
	if m.MatchTime != "" {
		g.MatchTime = sql.NullString{String: m.MatchTime, Valid: true}
	}
	if m.HomeScore != nil {
		g.HomeScore = sql.NullInt32{Int32: int32(*m.HomeScore), Valid: true}
	}
	if m.AwayScore != nil {
		g.AwayScore = sql.NullInt32{Int32: int32(*m.AwayScore), Valid: true}
	}
	if m.EventName != "" {
		g.EventName = sql.NullString{String: m.EventName, Valid: true}
	}
	if m.EventSourceID != "" {
		g.EventSourceID = sql.NullString{String: m.EventSourceID, Valid: true}
	}
	if m.Venue != "" {
		g.VenueName = sql.NullString{String: m.Venue, Valid: true}
	}
	if m.Division != "" {
		g.Division = sql.NullString{String: m.Division, Valid: true}
	}
	if m.SourceMatchKey != "" {
		g.SourceMatchKey = sql.NullString{String: m.SourceMatchKey, Valid: true}
	}

	return g
}
