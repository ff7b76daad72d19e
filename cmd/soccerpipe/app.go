package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"soccerpipe/internal/adapter"
	"soccerpipe/internal/config"
	"soccerpipe/internal/eventresolver"
	"soccerpipe/internal/identity"
	"soccerpipe/internal/linkage"
	"soccerpipe/internal/promotion"
	"soccerpipe/internal/reconcile"
	"soccerpipe/internal/repository"
	"soccerpipe/internal/scheduler"
	"soccerpipe/internal/scraper"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// app holds every component the command tree dispatches into. Each
// subcommand builds one via newApp and tears it down with Close, so a
// one-shot `soccerpipe promote` pays the same bootstrap cost as the worker
// but doesn't linger afterward.
type app struct {
	cfg      *config.Config
	db       *repository.Database
	redis    *redis.Client
	registry *adapter.Registry

	resolver      *identity.Resolver
	eventResolver *eventresolver.Resolver
	engine        *scraper.Engine
	promoter      *promotion.Pipeline
	linker        *linkage.Inferrer
	reconciler    *reconcile.Reconciler
	sched         *scheduler.Scheduler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("soccerpipe: redis unreachable, continuing with nil-safe fallbacks")
		_ = redisClient.Close()
		redisClient = nil
	}

	registry := adapter.NewRegistry()
	adapter.RegisterDefaults(registry)

	cache := identity.NewAliasCache(redisClient, time.Duration(cfg.CacheTTLTeams)*time.Second)
	resolver := identity.New(db.Teams, db.Aliases, db.Clubs, cache, cfg.ResolverTrigramThreshold, identity.CurrentSeasonYear(time.Now()))
	eventResolver := eventresolver.New(db.Events)

	engine := scraper.New(scraper.Config{
		EventConcurrency:      int64(cfg.ScraperEventConcurrency),
		SubRequestConcurrency: int64(cfg.ScraperSubRequestConcurrency),
		EventTimeout:          cfg.ScraperEventTimeout,
		RequestTimeout:        cfg.ScraperRequestTimeout,
		StagingBatchSize:      cfg.ScraperStagingBatchSize,
		CheckpointDir:         cfg.CheckpointDir,
	}, db.Staging)

	minDate, err := time.Parse("2006-01-02", cfg.DataPolicyMinDate)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("parse DATA_POLICY_MIN_DATE: %w", err)
	}

	promoter := promotion.New(promotion.Config{
		BatchSize:     cfg.PromotionBatchSize,
		SubBatchSize:  cfg.PromotionSubBatchSize,
		MaxIterations: cfg.PromotionMaxIterations,
		MinDate:       minDate,
		MaxFutureDays: cfg.DataPolicyMaxFutureDays,
	}, db.Staging, db.Matches, db.Standings, db.Teams, resolver, eventResolver)

	linker := linkage.New(linkage.Config{BatchSize: 500, DryRun: false}, db.Matches, db.Events)
	reconciler := reconcile.New(reconcile.Config{SimilarityThreshold: cfg.ResolverTrigramThreshold}, db.Teams, db.Aliases)

	sched := scheduler.New(cfg, db, redisClient, registry, engine, promoter, linker, reconciler)

	return &app{
		cfg:           cfg,
		db:            db,
		redis:         redisClient,
		registry:      registry,
		resolver:      resolver,
		eventResolver: eventResolver,
		engine:        engine,
		promoter:      promoter,
		linker:        linker,
		reconciler:    reconciler,
		sched:         sched,
	}, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.db.Close()
}
