package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateController_StartsAtMin(t *testing.T) {
	c := NewRateController("test", time.Second, 32*time.Second, 3)
	assert.Equal(t, time.Second, c.Delay())
}

func TestRateController_OnRateLimitedDoublesUntilCappedAtMax(t *testing.T) {
	c := NewRateController("test", time.Second, 8*time.Second, 3)

	c.OnRateLimited()
	assert.Equal(t, 2*time.Second, c.Delay())

	c.OnRateLimited()
	assert.Equal(t, 4*time.Second, c.Delay())

	c.OnRateLimited()
	assert.Equal(t, 8*time.Second, c.Delay())

	// Already at max: doubling again must not overshoot it.
	c.OnRateLimited()
	assert.Equal(t, 8*time.Second, c.Delay())
}

func TestRateController_OnSuccessHalvesOnlyAfterConsecutiveRun(t *testing.T) {
	c := NewRateController("test", time.Second, 32*time.Second, 3)
	c.OnRateLimited()
	c.OnRateLimited()
	atCeiling := 4 * time.Second
	assert.Equal(t, atCeiling, c.Delay())

	c.OnSuccess()
	assert.Equal(t, atCeiling, c.Delay(), "backoff should not move before the success streak reaches successesToHalve")

	c.OnSuccess()
	assert.Equal(t, atCeiling, c.Delay())

	c.OnSuccess()
	assert.Equal(t, atCeiling/2, c.Delay(), "third consecutive success should halve the backoff")
}

func TestRateController_OnRateLimitedResetsTheSuccessStreak(t *testing.T) {
	c := NewRateController("test", time.Second, 32*time.Second, 2)
	c.OnRateLimited()
	c.OnRateLimited()
	current := c.Delay()

	c.OnSuccess()
	c.OnRateLimited() // resets the streak before it reaches 2
	doubled := current * 2
	assert.Equal(t, doubled, c.Delay())

	c.OnSuccess()
	assert.Equal(t, doubled, c.Delay(), "a single success after the reset must not yet halve")

	c.OnSuccess()
	assert.Equal(t, doubled/2, c.Delay(), "second consecutive success after the reset halves")
}

func TestRateController_OnSuccessHalvingFloorsAtMin(t *testing.T) {
	c := NewRateController("test", time.Second, 32*time.Second, 1)
	// Already at min; a single success should floor, not undershoot, min.
	c.OnSuccess()
	assert.Equal(t, time.Second, c.Delay())
}
