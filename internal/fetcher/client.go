package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"soccerpipe/internal/metrics"
	"soccerpipe/internal/pipelineerr"

	"github.com/rs/zerolog/log"
)

// RateLimitPolicy configures one adapter's backoff and retry behavior.
type RateLimitPolicy struct {
	MinDelay        time.Duration
	MaxBackoff      time.Duration
	Cooldown429     time.Duration
	Cooldown5xx     time.Duration
	MaxRetries      int
	SuccessesToHalve int
}

// Client issues HTTP requests for http-technology adapters, applying the
// reactive rate controller and a retry loop (network errors, 429 and every
// 5xx are retried; 401/403 fail at once as fatal; other 4xx are not
// retried), with a per-adapter policy and UA rotation.
type Client struct {
	http       *http.Client
	adapter    string
	userAgents []string
	controller *RateController
	policy     RateLimitPolicy
}

// NewClient constructs a fetcher client for one adapter.
func NewClient(adapter string, userAgents []string, policy RateLimitPolicy) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		adapter:    adapter,
		userAgents: userAgents,
		controller: NewRateController(adapter, policy.MinDelay, policy.MaxBackoff, policy.SuccessesToHalve),
		policy:     policy,
	}
}

func (c *Client) randomUserAgent() string {
	if len(c.userAgents) == 0 {
		return "soccerpipe/1.0"
	}
	return c.userAgents[rand.Intn(len(c.userAgents))]
}

// Get issues a single GET request, applying the current backoff delay
// before sending and retrying transient failures up to MaxRetries times.
// Each retry waits a flat Cooldown5xx (network error or 5xx) or Cooldown429;
// there is no per-attempt ladder of delays.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.controller.Delay()):
		}

		start := time.Now()
		body, status, err := c.doRequest(ctx, url)
		duration := time.Since(start).Seconds()

		if err != nil {
			lastErr = pipelineerr.New(pipelineerr.KindTransientNetwork, "fetcher", err)
			metrics.RecordFetch(c.adapter, "network_error", duration)
			time.Sleep(c.policy.Cooldown5xx)
			continue
		}

		switch {
		case status == http.StatusTooManyRequests:
			c.controller.OnRateLimited()
			metrics.RecordFetch(c.adapter, "429", duration)
			time.Sleep(c.policy.Cooldown429)
			lastErr = pipelineerr.New(pipelineerr.KindRateLimited, "fetcher", fmt.Errorf("429 from %s", url))
			continue

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			metrics.RecordFetch(c.adapter, "auth_error", duration)
			return nil, pipelineerr.New(pipelineerr.KindFatal, "fetcher", fmt.Errorf("auth error %d from %s", status, url))

		case status >= 500:
			metrics.RecordFetch(c.adapter, "5xx", duration)
			time.Sleep(c.policy.Cooldown5xx)
			lastErr = pipelineerr.New(pipelineerr.KindTransientNetwork, "fetcher", fmt.Errorf("status %d from %s", status, url))
			continue

		case status >= 400:
			metrics.RecordFetch(c.adapter, "4xx", duration)
			return nil, pipelineerr.New(pipelineerr.KindParseError, "fetcher", fmt.Errorf("status %d from %s", status, url))
		}

		c.controller.OnSuccess()
		metrics.RecordFetch(c.adapter, "ok", duration)
		return body, nil
	}

	log.Warn().Str("adapter", c.adapter).Str("url", url).Int("retries", c.policy.MaxRetries).Msg("fetch exhausted retry ladder")
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.randomUserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}
