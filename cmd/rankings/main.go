// Command rankings ingests a public youth-soccer ranking feed and attaches
// a national_rank to the canonical teams it names, going through the same
// Team-Identity Resolver the scraping pipeline uses. Same daily
// cron-at-a-fixed-hour-ET pattern, same pgxpool + zap stack, same
// "resolve, don't blindly create" discipline as a ratings sync job, rebuilt
// against a generic JSON ranking feed instead of a positional array format.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"soccerpipe/internal/config"
	"soccerpipe/internal/identity"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// rankedTeam is one entry of the ranking feed's JSON array.
type rankedTeam struct {
	Name      string `json:"name"`
	Rank      int32  `json:"rank"`
	Gender    string `json:"gender,omitempty"`
	State     string `json:"state,omitempty"`
	BirthYear *int32 `json:"birth_year,omitempty"`
}

type syncer struct {
	feedURL  string
	timeout  time.Duration
	resolver *identity.Resolver
	teams    *repository.TeamRepository
	log      *zap.Logger
}

func (s *syncer) fetch(ctx context.Context) ([]rankedTeam, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "soccerpipe-rankings/1.0")

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking feed returned status %d", resp.StatusCode)
	}

	var teams []rankedTeam
	if err := json.NewDecoder(resp.Body).Decode(&teams); err != nil {
		return nil, fmt.Errorf("decode ranking feed: %w", err)
	}
	return teams, nil
}

func (s *syncer) store(ctx context.Context, teams []rankedTeam) error {
	applied := 0
	for _, t := range teams {
		var gender *models.Gender
		if t.Gender != "" {
			g := models.Gender(t.Gender)
			gender = &g
		}
		var state *string
		if t.State != "" {
			state = &t.State
		}

		teamID, strategy, err := s.resolver.Resolve(ctx, identity.Input{
			Name:      t.Name,
			BirthYear: t.BirthYear,
			Gender:    gender,
			State:     state,
		})
		if err != nil {
			s.log.Warn("failed to resolve ranked team", zap.String("name", t.Name), zap.Error(err))
			continue
		}

		if err := s.teams.SetNationalRank(ctx, teamID, t.Rank); err != nil {
			s.log.Warn("failed to set national rank", zap.String("name", t.Name), zap.Error(err))
			continue
		}

		s.log.Debug("applied national rank",
			zap.String("name", t.Name), zap.Int64("team_id", teamID),
			zap.Int32("rank", t.Rank), zap.String("resolve_strategy", strategy))
		applied++
	}

	s.log.Info("ranking sync complete", zap.Int("applied", applied), zap.Int("total", len(teams)))
	return nil
}

func (s *syncer) Sync(ctx context.Context) error {
	start := time.Now()
	teams, err := s.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching rankings: %w", err)
	}
	if err := s.store(ctx, teams); err != nil {
		return fmt.Errorf("storing rankings: %w", err)
	}
	s.log.Info("ranking sync duration", zap.Duration("duration", time.Since(start)))
	return nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.MustLoad()
	if cfg.RankingsFeedURL == "" {
		logger.Fatal("RANKINGS_FEED_URL not configured")
	}

	ctx := context.Background()
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cache := identity.NewAliasCache(nil, time.Duration(cfg.CacheTTLTeams)*time.Second)
	resolver := identity.New(db.Teams, db.Aliases, db.Clubs, cache, cfg.ResolverTrigramThreshold, identity.CurrentSeasonYear(time.Now()))

	s := &syncer{
		feedURL:  cfg.RankingsFeedURL,
		timeout:  cfg.RankingsTimeout,
		resolver: resolver,
		teams:    db.Teams,
		log:      logger,
	}

	if os.Getenv("RUN_ONCE") == "true" {
		if err := s.Sync(ctx); err != nil {
			logger.Fatal("sync failed", zap.Error(err))
		}
		return
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.Warn("failed to load America/New_York timezone, falling back to UTC", zap.Error(err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.RankingsCron, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.Sync(runCtx); err != nil {
			logger.Error("scheduled ranking sync failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("failed to schedule ranking sync", zap.Error(err))
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.Sync(runCtx); err != nil {
			logger.Error("initial ranking sync failed", zap.Error(err))
		}
	}()

	c.Start()
	logger.Info("ranking cron scheduler started", zap.String("schedule", cfg.RankingsCron))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	c.Stop()
}
