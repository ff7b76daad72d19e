package fetcher

import (
	"context"
	"fmt"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// FlatRateLimiter enforces a flat requests/sec limit, an alternative to the
// reactive RateController; the fetcher clients the scraper engine builds use
// the RateController and do not construct one. In-process limiting uses
// golang.org/x/time/rate; when a Redis client is supplied, a second,
// cluster-wide check via go-redis/redis_rate backstops it so two scraper
// replicas hitting the same source don't each independently burst to the
// per-process limit.
type FlatRateLimiter struct {
	local   *rate.Limiter
	redis   *redis_rate.Limiter
	source  string
	perSec  int
}

// NewFlatRateLimiter constructs a limiter allowing perSec requests/second,
// with a burst of perSec. redisClient may be nil to skip the cluster-wide check.
func NewFlatRateLimiter(source string, perSec int, redisClient *redis.Client) *FlatRateLimiter {
	f := &FlatRateLimiter{
		local:  rate.NewLimiter(rate.Limit(perSec), perSec),
		source: source,
		perSec: perSec,
	}
	if redisClient != nil {
		f.redis = redis_rate.NewLimiter(redisClient)
	}
	return f
}

// Wait blocks until both the local and (if configured) cluster-wide limiters
// admit the next request.
func (f *FlatRateLimiter) Wait(ctx context.Context) error {
	if err := f.local.Wait(ctx); err != nil {
		return fmt.Errorf("flat rate limiter: local wait: %w", err)
	}

	if f.redis == nil {
		return nil
	}

	for {
		res, err := f.redis.Allow(ctx, "fetcher:"+f.source, redis_rate.PerSecond(f.perSec))
		if err != nil {
			// Redis unavailable: fail open, the in-process limiter still holds.
			return nil
		}
		if res.Allowed > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(res.RetryAfter):
		}
	}
}
