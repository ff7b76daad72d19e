package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all pipeline configuration, populated from the environment.
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"soccerpipe"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"soccerpipe_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (alias cache, distributed job locks, fetcher rate-limit backstop)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scraper Engine (component C)
	ScraperEventConcurrency    int           `envconfig:"SCRAPER_EVENT_CONCURRENCY" default:"5"`
	ScraperSubRequestConcurrency int         `envconfig:"SCRAPER_SUBREQUEST_CONCURRENCY" default:"3"`
	ScraperMaxEventsPerRun     int           `envconfig:"SCRAPER_MAX_EVENTS_PER_RUN" default:"200"`
	ScraperEventTimeout        time.Duration `envconfig:"SCRAPER_EVENT_TIMEOUT" default:"10m"`
	ScraperRequestTimeout      time.Duration `envconfig:"SCRAPER_REQUEST_TIMEOUT" default:"30s"`
	ScraperStagingBatchSize    int           `envconfig:"SCRAPER_STAGING_BATCH_SIZE" default:"500"`
	CheckpointDir              string        `envconfig:"CHECKPOINT_DIR" default:"./.checkpoints"`

	// Fetcher rate limiting defaults (component A); per-adapter descriptors may override
	FetcherMinDelay        time.Duration `envconfig:"FETCHER_MIN_DELAY" default:"200ms"`
	FetcherMaxBackoff      time.Duration `envconfig:"FETCHER_MAX_BACKOFF" default:"60s"`
	FetcherCooldown429     time.Duration `envconfig:"FETCHER_COOLDOWN_429" default:"5s"`
	FetcherCooldown5xx     time.Duration `envconfig:"FETCHER_COOLDOWN_5XX" default:"2s"`
	FetcherMaxRetries      int           `envconfig:"FETCHER_MAX_RETRIES" default:"5"`
	FetcherSuccessesToHalf int           `envconfig:"FETCHER_SUCCESSES_TO_HALVE" default:"10"`

	// Promotion pipeline (component G)
	PromotionBatchSize    int `envconfig:"PROMOTION_BATCH_SIZE" default:"1000"`
	PromotionSubBatchSize int `envconfig:"PROMOTION_SUBBATCH_SIZE" default:"500"`
	PromotionMaxIterations int `envconfig:"PROMOTION_MAX_ITERATIONS" default:"50"`
	DataPolicyMaxFutureDays int `envconfig:"DATA_POLICY_MAX_FUTURE_DAYS" default:"180"`
	DataPolicyMinDate       string `envconfig:"DATA_POLICY_MIN_DATE" default:"2015-01-01"`

	// Team-identity resolver (component E)
	ResolverTrigramThreshold float64 `envconfig:"RESOLVER_TRIGRAM_THRESHOLD" default:"0.75"`

	// Rebuild/swap (component I)
	RebuildTeamCoverageMin  float64 `envconfig:"REBUILD_TEAM_COVERAGE_MIN" default:"0.90"`
	RebuildMatchCoverageMin float64 `envconfig:"REBUILD_MATCH_COVERAGE_MIN" default:"0.95"`
	RebuildKeyCoverageMin   float64 `envconfig:"REBUILD_KEY_COVERAGE_MIN" default:"0.99"`
	RebuildDenyListPath     string  `envconfig:"REBUILD_DENY_LIST_PATH" default:""`

	// Scheduler (component K)
	EnableScheduler         bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	DailySyncCron           string `envconfig:"DAILY_SYNC_CRON" default:"0 5 * * *"`
	NightlyPromoteCron      string `envconfig:"NIGHTLY_PROMOTE_CRON" default:"0 2 * * *"`
	NightlyLinkInferCron    string `envconfig:"NIGHTLY_LINKINFER_CRON" default:"30 2 * * *"`
	NightlyViewRefreshCron  string `envconfig:"NIGHTLY_VIEWREFRESH_CRON" default:"0 3 * * *"`
	WeeklyReconcileCron     string `envconfig:"WEEKLY_RECONCILE_CRON" default:"0 4 * * 0"`
	DupePrefixFixCron       string `envconfig:"DUPE_PREFIX_FIX_CRON" default:"30 4 * * 0"`
	SchedulerTimezone       string `envconfig:"SCHEDULER_TIMEZONE" default:"America/New_York"`
	SchedulerLockTTL        time.Duration `envconfig:"SCHEDULER_LOCK_TTL" default:"25m"`

	// Rankings ingestion (cmd/rankings, external collaborator feed)
	RankingsFeedURL string        `envconfig:"RANKINGS_FEED_URL" default:""`
	RankingsCron    string        `envconfig:"RANKINGS_CRON" default:"0 6 * * *"`
	RankingsTimeout time.Duration `envconfig:"RANKINGS_TIMEOUT" default:"30s"`

	// Caching TTL (seconds)
	CacheTTLTeams int `envconfig:"CACHE_TTL_TEAMS" default:"86400"`

	// Operational HTTP surface (internal/adminhttp)
	AdminHTTPEnabled bool `envconfig:"ADMIN_HTTP_ENABLED" default:"true"`
	AdminHTTPPort    int  `envconfig:"ADMIN_HTTP_PORT" default:"8080"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables, preferring a local
// .env file in development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates configuration invariants not already enforced by envconfig tags.
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.ScraperEventConcurrency <= 0 || c.ScraperSubRequestConcurrency <= 0 {
		return fmt.Errorf("scraper concurrency settings must be positive")
	}

	if c.ResolverTrigramThreshold <= 0 || c.ResolverTrigramThreshold > 1 {
		return fmt.Errorf("RESOLVER_TRIGRAM_THRESHOLD must be in (0, 1]")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits the process. Use from main().
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
