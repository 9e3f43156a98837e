package firecrawl

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultPollInitial = 2 * time.Second
	defaultPollCap     = 15 * time.Second
	defaultPollTimeout = 2 * time.Minute
)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	initial time.Duration
	cap     time.Duration
	timeout time.Duration
	limiter *rate.Limiter
}

// WithPollInterval overrides the initial poll interval.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) { c.initial = d }
}

// WithPollTimeout overrides the default timeout (applied only if the parent
// context has no deadline).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) { c.timeout = d }
}

// WithPollLimiter shares a status-request budget across concurrent polls so
// many in-flight jobs cannot exceed the account's request rate.
func WithPollLimiter(l *rate.Limiter) PollOption {
	return func(c *pollConfig) { c.limiter = l }
}

// PollBatchScrape polls GetBatchScrapeStatus until the batch completes, fails,
// or the context expires. Intervals double from the initial value up to the cap.
func PollBatchScrape(ctx context.Context, client Client, id string, opts ...PollOption) (*BatchScrapeStatusResponse, error) {
	cfg := pollConfig{
		initial: defaultPollInitial,
		cap:     defaultPollCap,
		timeout: defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	interval := cfg.initial
	for {
		if cfg.limiter != nil {
			if err := cfg.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrapf(err, "firecrawl: poll batch scrape %s: rate limit wait", id)
			}
		}

		status, err := client.GetBatchScrapeStatus(ctx, id)
		if err != nil {
			return nil, eris.Wrapf(err, "firecrawl: poll batch scrape %s", id)
		}

		switch status.Status {
		case StatusCompleted:
			return status, nil
		case StatusFailed:
			return nil, eris.Errorf("firecrawl: batch scrape %s failed", id)
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrapf(ctx.Err(), "firecrawl: poll batch scrape %s timed out", id)
		case <-time.After(interval):
		}

		interval *= 2
		if interval > cfg.cap {
			interval = cfg.cap
		}
	}
}
