package identity

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AliasCache is a thin read-through cache in front of AliasRepository,
// cutting resolver round-trips during promotion batches. Grounded on the
// teacher's CacheTTLTeams config field and Redis dependency, which the
// teacher's own tree referenced (cmd/worker/main.go) but never implemented.
type AliasCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAliasCache wraps a redis client. A nil client is accepted so the
// resolver can run without Redis in tests; all methods become no-ops.
func NewAliasCache(client *redis.Client, ttl time.Duration) *AliasCache {
	return &AliasCache{client: client, ttl: ttl}
}

func (c *AliasCache) key(aliasName string) string {
	return "alias:" + aliasName
}

// Get returns a cached team id for an alias, or (0, false) on miss or when
// caching is disabled.
func (c *AliasCache) Get(ctx context.Context, aliasName string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	val, err := c.client.Get(ctx, c.key(aliasName)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("alias cache read failed")
		return 0, false
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Set populates the cache; errors are logged, not returned, since the cache
// is an optimization, not a correctness requirement.
func (c *AliasCache) Set(ctx context.Context, aliasName string, teamID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(aliasName), teamID, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("alias cache write failed")
	}
}
