package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"soccerpipe/internal/fetcher"
	"soccerpipe/internal/models"
)

// RegisterDefaults populates a registry with the two reference adapters the
// transformation ships. Real deployments register one Adapter value per
// scraped source; these two exist to exercise both Technology variants end
// to end (static-event HTTP/JSON, discovery-driven headless browser).
func RegisterDefaults(r *Registry) {
	r.Register(httpLeagueAdapter())
	r.Register(headlessTournamentAdapter())
}

// httpLeagueAdapter models a platform that exposes a small, fixed set of
// league ids and a JSON schedule endpoint per league.
func httpLeagueAdapter() *Adapter {
	return &Adapter{
		ID:         "demo-league-api",
		Name:       "Demo League API",
		BaseURL:    "https://api.example-league.test",
		Technology: KindHTTP,
		RateLimit: fetcher.RateLimitPolicy{
			MinDelay:         200 * time.Millisecond,
			MaxBackoff:       60 * time.Second,
			Cooldown429:      5 * time.Second,
			Cooldown5xx:      2 * time.Second,
			MaxRetries:       5,
			SuccessesToHalve: 10,
		},
		UserAgents: []string{
			"Mozilla/5.0 (compatible; soccerpipe/1.0; +https://example.invalid/bot)",
		},
		DataPolicy: DataPolicy{
			MaxFutureDays:   180,
			MaxEventsPerRun: 200,
			IsValidMatch: func(m *models.StagedMatch) bool {
				return m.HomeTeamName != "" && m.AwayTeamName != "" && !m.MatchDate.IsZero()
			},
		},
		StaticEvents: []SourceEvent{
			{SourceEventID: "u14-boys-premier", Name: "U14 Boys Premier League", IsLeague: true},
			{SourceEventID: "u15-girls-premier", Name: "U15 Girls Premier League", IsLeague: true},
		},
		ScrapeEvent: scrapeHTTPLeagueEvent,
	}
}

type apiMatch struct {
	MatchID   string `json:"match_id"`
	Date      string `json:"date"`
	Home      string `json:"home_team"`
	Away      string `json:"away_team"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	Venue     string `json:"venue"`
	Division  string `json:"division"`
}

func scrapeHTTPLeagueEvent(ctx context.Context, client *fetcher.Client, _ *fetcher.HeadlessClient, event SourceEvent) ([]*models.StagedMatch, error) {
	url := fmt.Sprintf("https://api.example-league.test/v1/leagues/%s/matches", event.SourceEventID)

	body, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("demo-league-api: fetch %s: %w", event.SourceEventID, err)
	}

	var payload struct {
		Matches []apiMatch `json:"matches"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("demo-league-api: parse %s: %w", event.SourceEventID, err)
	}

	staged := make([]*models.StagedMatch, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		date, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			continue
		}
		staged = append(staged, &models.StagedMatch{
			MatchDate:      date,
			HomeTeamName:   m.Home,
			AwayTeamName:   m.Away,
			HomeScore:      m.HomeScore,
			AwayScore:      m.AwayScore,
			EventName:      event.Name,
			EventSourceID:  event.SourceEventID,
			Venue:          m.Venue,
			Division:       m.Division,
			SourcePlatform: "demo-league-api",
			SourceMatchKey: BuildMatchKey("demo-league-api", event.SourceEventID, m.MatchID),
		})
	}

	return staged, nil
}

// headlessTournamentAdapter models a tournament-hosting platform whose
// bracket list is client-side rendered, requiring a headless browser to
// discover events and scrape each one. Grounded on other_examples'
// pmurley-go-fantrax chromedp usage.
func headlessTournamentAdapter() *Adapter {
	return &Adapter{
		ID:         "demo-tourney-portal",
		Name:       "Demo Tournament Portal",
		BaseURL:    "https://tourneys.example.test",
		Technology: KindHeadlessBrowser,
		RateLimit: fetcher.RateLimitPolicy{
			MinDelay:         500 * time.Millisecond,
			MaxBackoff:       90 * time.Second,
			Cooldown429:      10 * time.Second,
			Cooldown5xx:      5 * time.Second,
			MaxRetries:       3,
			SuccessesToHalve: 10,
		},
		UserAgents: []string{
			"Mozilla/5.0 (compatible; soccerpipe/1.0; +https://example.invalid/bot)",
		},
		DataPolicy: DataPolicy{
			MaxFutureDays:   90,
			MaxEventsPerRun: 50,
			IsValidMatch: func(m *models.StagedMatch) bool {
				return m.HomeTeamName != "" && m.AwayTeamName != ""
			},
		},
		DiscoverEvents:  discoverTournamentEvents,
		ScrapeEvent:     scrapeHeadlessTournamentEvent,
	}
}

func discoverTournamentEvents(ctx context.Context, _ *fetcher.Client, headless *fetcher.HeadlessClient) ([]SourceEvent, error) {
	html, err := headless.FetchRenderedHTML(ctx, "https://tourneys.example.test/active", "#tournament-list", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("demo-tourney-portal: discover events: %w", err)
	}
	_ = html // real parsing would extract tournament ids/names from the DOM
	return []SourceEvent{
		{SourceEventID: "spring-classic-2026", Name: "Spring Classic 2026", IsLeague: false},
	}, nil
}

func scrapeHeadlessTournamentEvent(ctx context.Context, _ *fetcher.Client, headless *fetcher.HeadlessClient, event SourceEvent) ([]*models.StagedMatch, error) {
	html, err := headless.FetchRenderedHTML(ctx,
		fmt.Sprintf("https://tourneys.example.test/t/%s/bracket", event.SourceEventID),
		"#bracket", 30*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("demo-tourney-portal: scrape %s: %w", event.SourceEventID, err)
	}
	_ = html // real parsing would walk bracket DOM nodes into StagedMatch rows
	return nil, nil
}
