package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// acquireJobLock implements the scheduler's cluster-wide advisory lock: a
// Redis SETNX with a TTL, so a second replica's identical cron firing is a
// no-op rather than a concurrent second run.
func acquireJobLock(ctx context.Context, client *redis.Client, jobName string, ttl time.Duration) (bool, error) {
	if client == nil {
		return true, nil
	}
	ok, err := client.SetNX(ctx, lockKey(jobName), "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func releaseJobLock(ctx context.Context, client *redis.Client, jobName string) {
	if client == nil {
		return
	}
	client.Del(ctx, lockKey(jobName))
}

func lockKey(jobName string) string {
	return "soccerpipe:scheduler-lock:" + jobName
}
