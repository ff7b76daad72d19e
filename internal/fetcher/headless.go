package fetcher

import (
	"context"
	"fmt"
	"time"

	"soccerpipe/internal/metrics"
	"soccerpipe/internal/pipelineerr"

	"github.com/chromedp/chromedp"
)

// HeadlessClient drives a headless Chrome instance for adapters whose
// technology is "headless-browser" — sources that render match listings
// client-side rather than returning JSON/HTML a plain GET can read. One
// instance is reused across events within a scraper run rather than
// spawning a fresh browser per page.
type HeadlessClient struct {
	adapter    string
	allocCtx   context.Context
	cancel     context.CancelFunc
	controller *RateController
}

// NewHeadlessClient starts one shared headless Chrome allocator for the run.
func NewHeadlessClient(ctx context.Context, adapter string, policy RateLimitPolicy) *HeadlessClient {
	allocCtx, cancel := chromedp.NewContext(ctx)
	return &HeadlessClient{
		adapter:    adapter,
		allocCtx:   allocCtx,
		cancel:     cancel,
		controller: NewRateController(adapter, policy.MinDelay, policy.MaxBackoff, policy.SuccessesToHalve),
	}
}

// Close releases the headless browser process.
func (h *HeadlessClient) Close() {
	h.cancel()
}

// FetchRenderedHTML navigates to a URL, waits for a selector to appear (the
// adapter's signal that client-side rendering is done), and returns the
// resulting document HTML.
func (h *HeadlessClient) FetchRenderedHTML(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error) {
	time.Sleep(h.controller.Delay())

	tctx, cancel := context.WithTimeout(h.allocCtx, timeout)
	defer cancel()

	var html string
	start := time.Now()
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordFetch(h.adapter, "headless_error", duration)
		return "", pipelineerr.New(pipelineerr.KindTransientNetwork, "headless_fetcher", fmt.Errorf("chromedp run: %w", err))
	}

	h.controller.OnSuccess()
	metrics.RecordFetch(h.adapter, "ok", duration)
	return html, nil
}
