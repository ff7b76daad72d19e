package eventresolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"
)

// Resolver implements the Event Resolver (component F): maps a
// (source_event_id, source_platform) pair to a league or tournament id,
// creating one when it doesn't exist yet.
type Resolver struct {
	events *repository.EventRepository
}

func New(events *repository.EventRepository) *Resolver {
	return &Resolver{events: events}
}

// Input carries everything the classifier needs.
type Input struct {
	SourceEventID  string
	SourcePlatform string
	EventName      string
	State          *string
	// AdapterHintLeague lets an adapter assert its events are always
	// leagues (or always tournaments) when the name alone is ambiguous.
	AdapterHintLeague *bool
	// MinDate/MaxDate bound a newly created tournament's window, derived by
	// the caller from the staging rows belonging to this event.
	MinDate time.Time
	MaxDate time.Time
}

// Resolve maps a scraped event reference to a league or tournament row,
// creating one if no match exists yet.
func (r *Resolver) Resolve(ctx context.Context, in Input) (models.ResolvedEvent, error) {
	if league, err := r.events.FindLeague(ctx, in.SourceEventID, in.SourcePlatform); err != nil {
		return models.ResolvedEvent{}, fmt.Errorf("event resolver: find league: %w", err)
	} else if league != nil {
		return models.ResolvedEvent{Kind: models.EventKindLeague, ID: league.ID}, nil
	}

	if tournament, err := r.events.FindTournament(ctx, in.SourceEventID, in.SourcePlatform); err != nil {
		return models.ResolvedEvent{}, fmt.Errorf("event resolver: find tournament: %w", err)
	} else if tournament != nil {
		return models.ResolvedEvent{Kind: models.EventKindTournament, ID: tournament.ID}, nil
	}

	if r.classifyAsLeague(in) {
		league, err := r.events.CreateLeague(ctx, in.EventName, in.SourceEventID, in.SourcePlatform, in.State)
		if err != nil {
			return models.ResolvedEvent{}, fmt.Errorf("event resolver: create league: %w", err)
		}
		return models.ResolvedEvent{Kind: models.EventKindLeague, ID: league.ID}, nil
	}

	start, end := in.MinDate, in.MaxDate
	if start.IsZero() || end.IsZero() {
		start, end = defaultSeasonWindow(time.Now())
	}

	tournament, err := r.events.CreateTournament(ctx, in.EventName, in.SourceEventID, in.SourcePlatform, in.State, start, end)
	if err != nil {
		return models.ResolvedEvent{}, fmt.Errorf("event resolver: create tournament: %w", err)
	}
	return models.ResolvedEvent{Kind: models.EventKindTournament, ID: tournament.ID}, nil
}

func (r *Resolver) classifyAsLeague(in Input) bool {
	if in.AdapterHintLeague != nil {
		return *in.AdapterHintLeague
	}
	return strings.Contains(strings.ToLower(in.EventName), "league")
}

// defaultSeasonWindow gives a new tournament a one-year window centered on
// now, when no staging rows are available to derive a tighter bound from.
func defaultSeasonWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -6, 0), now.AddDate(0, 6, 0)
}
