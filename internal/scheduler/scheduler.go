// Package scheduler runs six cron-triggered jobs, each guarded by a Redis
// advisory lock so a second replica's identical firing is a no-op.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"soccerpipe/internal/adapter"
	"soccerpipe/internal/config"
	"soccerpipe/internal/linkage"
	"soccerpipe/internal/metrics"
	"soccerpipe/internal/promotion"
	"soccerpipe/internal/reconcile"
	"soccerpipe/internal/repository"
	"soccerpipe/internal/scraper"
	"soccerpipe/internal/views"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler owns the cron loop and every job it can trigger.
type Scheduler struct {
	cfg   *config.Config
	db    *repository.Database
	redis *redis.Client
	cron  *cron.Cron

	registry   *adapter.Registry
	engine     *scraper.Engine
	promoter   *promotion.Pipeline
	linker     *linkage.Inferrer
	reconciler *reconcile.Reconciler
}

// New wires the scheduler against its dependencies. Each component is built
// by cmd/soccerpipe and passed in already configured.
func New(
	cfg *config.Config,
	db *repository.Database,
	redisClient *redis.Client,
	registry *adapter.Registry,
	engine *scraper.Engine,
	promoter *promotion.Pipeline,
	linker *linkage.Inferrer,
	reconciler *reconcile.Reconciler,
) *Scheduler {
	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.SchedulerTimezone).Msg("scheduler: invalid timezone, defaulting to UTC")
		loc = time.UTC
	}

	return &Scheduler{
		cfg:        cfg,
		db:         db,
		redis:      redisClient,
		cron:       cron.New(cron.WithLocation(loc)),
		registry:   registry,
		engine:     engine,
		promoter:   promoter,
		linker:     linker,
		reconciler: reconciler,
	}
}

// Start registers every job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"daily_active_events_sync", s.cfg.DailySyncCron, s.runDailyActiveEventsSync},
		{"nightly_promote", s.cfg.NightlyPromoteCron, s.runNightlyPromote},
		{"nightly_infer_links", s.cfg.NightlyLinkInferCron, s.runNightlyInferLinks},
		{"nightly_view_refresh", s.cfg.NightlyViewRefreshCron, s.runNightlyViewRefresh},
		{"weekly_reconciliation", s.cfg.WeeklyReconcileCron, s.runWeeklyReconciliation},
		{"dupe_prefix_fix", s.cfg.DupePrefixFixCron, s.runDupePrefixFix},
	}

	for _, j := range jobs {
		j := j
		if _, err := s.cron.AddFunc(j.spec, func() { s.runGuarded(ctx, j.name, j.run) }); err != nil {
			return fmt.Errorf("scheduler: schedule %s: %w", j.name, err)
		}
		log.Info().Str("job", j.name).Str("schedule", j.spec).Msg("scheduler: job registered")
	}

	s.cron.Start()
	return nil
}

// Stop drains any in-flight job and stops the cron loop.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// runGuarded acquires the job's advisory lock, runs it, records metrics, and
// releases the lock. A lock miss is logged at debug level and is not an
// error: it means another replica already owns this firing.
func (s *Scheduler) runGuarded(ctx context.Context, name string, run func(context.Context) error) {
	acquired, err := acquireJobLock(ctx, s.redis, name, s.cfg.SchedulerLockTTL)
	if err != nil {
		log.Warn().Err(err).Str("job", name).Msg("scheduler: lock acquisition failed, running unlocked")
		acquired = true
	}
	if !acquired {
		log.Debug().Str("job", name).Msg("scheduler: lock held elsewhere, skipping this firing")
		return
	}
	defer releaseJobLock(ctx, s.redis, name)

	start := time.Now()
	status := "ok"
	if err := run(ctx); err != nil {
		status = "error"
		log.Error().Err(err).Str("job", name).Msg("scheduler: job failed")
	}
	metrics.JobRunsTotal.WithLabelValues(name, status).Inc()
	metrics.JobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

func (s *Scheduler) runDailyActiveEventsSync(ctx context.Context) error {
	start := time.Now().AddDate(0, 0, -7)
	end := time.Now().AddDate(0, 0, 7)

	refs, err := s.db.Events.ActiveEvents(ctx, start, end)
	if err != nil {
		return fmt.Errorf("daily_active_events_sync: list active events: %w", err)
	}

	byAdapter := make(map[string][]string)
	for _, ref := range refs {
		byAdapter[ref.SourcePlatform] = append(byAdapter[ref.SourcePlatform], ref.SourceEventID)
	}

	for _, a := range s.registry.All() {
		eventIDs, ok := byAdapter[a.ID]
		if !ok {
			continue
		}
		for _, eventID := range eventIDs {
			if _, err := s.engine.Run(ctx, a, eventID); err != nil {
				log.Error().Err(err).Str("adapter", a.ID).Str("event", eventID).Msg("daily_active_events_sync: re-scrape failed")
			}
		}
	}

	return nil
}

func (s *Scheduler) runNightlyPromote(ctx context.Context) error {
	stats, err := s.promoter.Promote(ctx)
	if err != nil {
		return fmt.Errorf("nightly_promote: %w", err)
	}
	log.Info().
		Int("iterations", stats.Iterations).
		Int("rows_seen", stats.RowsSeen).
		Int("rows_dropped", stats.RowsDropped).
		Int("rows_upserted", stats.RowsUpserted).
		Msg("nightly_promote: complete")

	standingsStats, err := s.promoter.PromoteStandings(ctx)
	if err != nil {
		return fmt.Errorf("nightly_promote: standings: %w", err)
	}
	log.Info().
		Int("iterations", standingsStats.Iterations).
		Int("rows_seen", standingsStats.RowsSeen).
		Int("rows_dropped", standingsStats.RowsDropped).
		Int("rows_upserted", standingsStats.RowsUpserted).
		Msg("nightly_promote: standings complete")
	return nil
}

func (s *Scheduler) runNightlyInferLinks(ctx context.Context) error {
	stats, err := s.linker.Infer(ctx)
	if err != nil {
		return fmt.Errorf("nightly_infer_links: %w", err)
	}
	log.Info().
		Int("considered", stats.MatchesConsidered).
		Int("linked", stats.MatchesLinked).
		Msg("nightly_infer_links: complete")
	return nil
}

func (s *Scheduler) runNightlyViewRefresh(ctx context.Context) error {
	if err := views.RefreshAll(ctx, s.db.Pool); err != nil {
		return fmt.Errorf("nightly_view_refresh: %w", err)
	}
	return nil
}

func (s *Scheduler) runWeeklyReconciliation(ctx context.Context) error {
	stats, err := s.reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("weekly_reconciliation: %w", err)
	}
	log.Info().
		Int("considered", stats.TeamsConsidered).
		Int("aliases_learned", stats.AliasesLearned).
		Int("unmatched", stats.Unmatched).
		Msg("weekly_reconciliation: complete")
	return nil
}

func (s *Scheduler) runDupePrefixFix(ctx context.Context) error {
	stats, err := s.reconciler.FixDuplicatePrefixes(ctx)
	if err != nil {
		return fmt.Errorf("dupe_prefix_fix: %w", err)
	}
	log.Info().
		Int("scanned", stats.TeamsScanned).
		Int("renamed", stats.Renamed).
		Int("merged", stats.Merged).
		Msg("dupe_prefix_fix: complete")
	return nil
}
