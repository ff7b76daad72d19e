// Package scraper drives one or many events through an adapter with bounded
// concurrency and durable checkpointing, using golang.org/x/sync/semaphore
// and errgroup rather than an unbounded goroutine fan-out.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"soccerpipe/internal/adapter"
	"soccerpipe/internal/fetcher"
	"soccerpipe/internal/metrics"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config carries the engine's tunables, sourced from internal/config.
type Config struct {
	EventConcurrency      int64
	SubRequestConcurrency int64
	EventTimeout          time.Duration
	RequestTimeout        time.Duration
	StagingBatchSize      int
	CheckpointDir         string
}

// Stats summarizes one engine run.
type Stats struct {
	EventsAttempted int
	EventsSkipped   int
	EventsFailed    int
	MatchesStaged   int
}

// Engine drives a single adapter over its event list.
type Engine struct {
	cfg     Config
	staging *repository.StagingRepository
}

func New(cfg Config, staging *repository.StagingRepository) *Engine {
	return &Engine{cfg: cfg, staging: staging}
}

// Run drives the given adapter, optionally filtered to a single event id.
func (e *Engine) Run(ctx context.Context, a *adapter.Adapter, eventFilter string) (Stats, error) {
	checkpoint, err := LoadCheckpoint(e.cfg.CheckpointDir, a.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("scraper engine: load checkpoint: %w", err)
	}

	httpClient := fetcher.NewClient(a.ID, a.UserAgents, a.RateLimit)

	var headless *fetcher.HeadlessClient
	if a.Technology == adapter.KindHeadlessBrowser {
		headless = fetcher.NewHeadlessClient(ctx, a.ID, a.RateLimit)
		defer headless.Close()
	}

	events, err := a.Events(ctx, httpClient, headless)
	if err != nil {
		return Stats{}, fmt.Errorf("scraper engine: resolve events: %w", err)
	}

	if eventFilter != "" {
		events = filterEvents(events, eventFilter)
	}
	if len(events) > a.DataPolicy.MaxEventsPerRun {
		events = events[:a.DataPolicy.MaxEventsPerRun]
	}

	sem := semaphore.NewWeighted(e.cfg.EventConcurrency)
	subSem := semaphore.NewWeighted(e.cfg.SubRequestConcurrency)
	group, gctx := errgroup.WithContext(ctx)

	var skipped, failed, staged int64

	for _, ev := range events {
		ev := ev

		if checkpoint.IsDone(ev.SourceEventID) {
			atomic.AddInt64(&skipped, 1)
			continue
		}

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}

		group.Go(func() error {
			defer sem.Release(1)

			eventCtx, cancel := context.WithTimeout(gctx, e.cfg.EventTimeout)
			defer cancel()

			if err := subSem.Acquire(eventCtx, 1); err != nil {
				return nil // context cancelled; not a run-fatal error
			}
			defer subSem.Release(1)

			matches, scrapeErr := a.ScrapeEvent(eventCtx, httpClient, headless, ev)
			if scrapeErr != nil {
				log.Warn().Err(scrapeErr).Str("adapter", a.ID).Str("event", ev.SourceEventID).Msg("event scrape failed")
				atomic.AddInt64(&failed, 1)
				metrics.ScraperEventsTotal.WithLabelValues(a.ID, "error").Inc()
				return checkpoint.Record(ev.SourceEventID, CheckpointEntry{
					Status:    EventStatusError,
					Timestamp: time.Now(),
					Error:     scrapeErr.Error(),
				})
			}

			valid := dedupeAndValidate(matches, a.DataPolicy.IsValidMatch)
			n, err := e.stageMatches(eventCtx, a, valid)
			if err != nil {
				return fmt.Errorf("scraper engine: stage matches for %s: %w", ev.SourceEventID, err)
			}

			if err := e.staging.RegisterEvent(eventCtx, &models.StagingEvent{
				EventName:      ev.Name,
				SourcePlatform: a.ID,
				SourceEventID:  ev.SourceEventID,
				RawData:        json.RawMessage(`{}`),
			}); err != nil {
				return fmt.Errorf("scraper engine: register event %s: %w", ev.SourceEventID, err)
			}

			atomic.AddInt64(&staged, int64(n))
			metrics.ScraperEventsTotal.WithLabelValues(a.ID, "ok").Inc()
			metrics.ScraperMatchesStagedTotal.WithLabelValues(a.ID).Add(float64(n))

			return checkpoint.Record(ev.SourceEventID, CheckpointEntry{
				Status:    EventStatusDone,
				Matches:   n,
				Timestamp: time.Now(),
			})
		})
	}

	waitErr := group.Wait()

	stats := Stats{
		EventsAttempted: len(events),
		EventsSkipped:   int(atomic.LoadInt64(&skipped)),
		EventsFailed:    int(atomic.LoadInt64(&failed)),
		MatchesStaged:   int(atomic.LoadInt64(&staged)),
	}

	if waitErr != nil {
		return stats, fmt.Errorf("scraper engine: run-fatal error: %w", waitErr)
	}

	return stats, nil
}

func filterEvents(events []adapter.SourceEvent, id string) []adapter.SourceEvent {
	for _, e := range events {
		if e.SourceEventID == id {
			return []adapter.SourceEvent{e}
		}
	}
	return nil
}

// dedupeAndValidate enforces engine step 4: dedupe within-event on
// match_key (first write wins), filtered by the adapter's data policy.
func dedupeAndValidate(matches []*models.StagedMatch, isValid func(*models.StagedMatch) bool) []*models.StagedMatch {
	seen := make(map[string]struct{}, len(matches))
	out := make([]*models.StagedMatch, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.SourceMatchKey]; dup {
			continue
		}
		if isValid != nil && !isValid(m) {
			continue
		}
		seen[m.SourceMatchKey] = struct{}{}
		out = append(out, m)
	}
	return out
}

func (e *Engine) stageMatches(ctx context.Context, a *adapter.Adapter, matches []*models.StagedMatch) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	rows := make([]*models.StagingGame, 0, len(matches))
	for _, m := range matches {
		raw, _ := json.Marshal(m.RawData)
		rows = append(rows, toStagingGame(m, raw))
	}

	total := 0
	for start := 0; start < len(rows); start += e.cfg.StagingBatchSize {
		end := start + e.cfg.StagingBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := e.staging.InsertGamesBatch(ctx, rows[start:end])
		if err != nil {
			return total, err
		}
		total += n
		metrics.ScraperCheckpointWritesTotal.WithLabelValues(a.ID).Inc()
	}

	return total, nil
}
