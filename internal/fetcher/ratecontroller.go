package fetcher

import (
	"sync"
	"time"

	"soccerpipe/internal/metrics"
)

// RateController holds a single shared backoff value per run: doubled on
// 429, cooled down on 5xx, and halved after a run of consecutive successes.
// A mutex-guarded duration rather than a channel, since the value itself
// (not just a slot) needs to be read and adjusted.
type RateController struct {
	mu                sync.Mutex
	adapter           string
	current           time.Duration
	min               time.Duration
	max               time.Duration
	consecutiveOK     int
	successesToHalve  int
}

// NewRateController constructs a controller seeded at min.
func NewRateController(adapter string, min, max time.Duration, successesToHalve int) *RateController {
	return &RateController{
		adapter:          adapter,
		current:          min,
		min:              min,
		max:              max,
		successesToHalve: successesToHalve,
	}
}

// Delay returns the current backoff duration to sleep before the next request.
func (c *RateController) Delay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// OnRateLimited doubles the backoff, capped at max, and resets the success streak.
func (c *RateController) OnRateLimited() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current *= 2
	if c.current > c.max {
		c.current = c.max
	}
	c.consecutiveOK = 0
	metrics.FetchBackoffSeconds.WithLabelValues(c.adapter).Set(c.current.Seconds())
}

// OnSuccess records a success; after successesToHalve in a row, halves the
// backoff, floored at min.
func (c *RateController) OnSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveOK++
	if c.consecutiveOK >= c.successesToHalve {
		c.current /= 2
		if c.current < c.min {
			c.current = c.min
		}
		c.consecutiveOK = 0
	}
	metrics.FetchBackoffSeconds.WithLabelValues(c.adapter).Set(c.current.Seconds())
}
