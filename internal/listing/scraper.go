package listing

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/listing-assistant/internal/metrics"
	"github.com/sells-group/listing-assistant/internal/model"
	"github.com/sells-group/listing-assistant/internal/resilience"
	"github.com/sells-group/listing-assistant/pkg/firecrawl"
)

// Options tunes the scraper.
type Options struct {
	Country      string
	Proxy        string
	CacheTTL     time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
	// PollLimiter caps status requests across concurrent scrapes.
	PollLimiter *rate.Limiter
	// CacheLookups bounds concurrent cache reads.
	CacheLookups int
}

// Scraper resolves listing URLs into property records.
type Scraper struct {
	fc     firecrawl.Client
	cache  Cache
	policy resilience.Policy
	opts   Options
}

// NewScraper creates a Scraper. cache may be nil.
func NewScraper(fc firecrawl.Client, cache Cache, policy resilience.Policy, opts Options) *Scraper {
	if opts.Country == "" {
		opts.Country = "GB"
	}
	if opts.CacheLookups <= 0 {
		opts.CacheLookups = 8
	}
	if policy.Retry.OnRetry == nil {
		policy.Retry.OnRetry = resilience.RetryLogger("firecrawl", "batch_scrape")
	}
	return &Scraper{fc: fc, cache: cache, policy: policy, opts: opts}
}

// Scrape fetches and parses every listing in urls. Pages that are not
// listing pages are skipped. Records come back in the order of urls.
func (s *Scraper) Scrape(ctx context.Context, urls []string) ([]model.PropertyRecord, error) {
	ids := make([]string, len(urls))
	for i, u := range urls {
		ids[i] = ListingID(u)
	}

	found := make([]*model.PropertyRecord, len(urls))
	if err := s.lookupCached(ctx, ids, found); err != nil {
		return nil, err
	}

	var misses []string
	missIdx := make(map[string][]int)
	for i, id := range ids {
		if found[i] != nil {
			continue
		}
		if id == "" {
			zap.L().Debug("listing: not a listing url", zap.String("url", urls[i]))
			metrics.ScrapedListings.WithLabelValues("skipped").Inc()
			continue
		}
		if _, dup := missIdx[id]; !dup {
			misses = append(misses, CanonicalURL(id))
		}
		missIdx[id] = append(missIdx[id], i)
	}

	if len(misses) > 0 {
		fetched, err := s.fetch(ctx, misses)
		if err != nil {
			return nil, err
		}
		for id, rec := range fetched {
			for _, i := range missIdx[id] {
				found[i] = rec
			}
		}
	}

	out := make([]model.PropertyRecord, 0, len(urls))
	for _, rec := range found {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *Scraper) lookupCached(ctx context.Context, ids []string, found []*model.PropertyRecord) error {
	if s.cache == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.CacheLookups)
	for i, id := range ids {
		if id == "" {
			continue
		}
		g.Go(func() error {
			rec, err := s.cache.Get(gctx, id)
			if err != nil {
				// A broken cache degrades to a fetch.
				zap.L().Warn("listing: cache lookup failed", zap.String("id", id), zap.Error(err))
				return nil
			}
			if rec != nil {
				found[i] = rec
				metrics.ScrapedListings.WithLabelValues("cache").Inc()
			}
			return nil
		})
	}
	return g.Wait()
}

// fetch batch-scrapes urls and returns parsed records keyed by listing id.
func (s *Scraper) fetch(ctx context.Context, urls []string) (map[string]*model.PropertyRecord, error) {
	req := firecrawl.BatchScrapeRequest{
		URLs: urls,
		ScrapeOptions: firecrawl.ScrapeOptions{
			Formats:  []string{"rawHtml"},
			Location: &firecrawl.Location{Country: s.opts.Country},
			Proxy:    s.opts.Proxy,
		},
	}

	job, err := resilience.Run(ctx, s.policy, func(ctx context.Context) (*firecrawl.BatchScrapeResponse, error) {
		resp, err := s.fc.BatchScrape(ctx, req)
		var apiErr *firecrawl.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.MarkHTTP(err, apiErr.StatusCode)
		}
		return resp, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "listing: start scrape")
	}

	var pollOpts []firecrawl.PollOption
	if s.opts.PollInterval > 0 {
		pollOpts = append(pollOpts, firecrawl.WithPollInterval(s.opts.PollInterval))
	}
	if s.opts.PollTimeout > 0 {
		pollOpts = append(pollOpts, firecrawl.WithPollTimeout(s.opts.PollTimeout))
	}
	if s.opts.PollLimiter != nil {
		pollOpts = append(pollOpts, firecrawl.WithPollLimiter(s.opts.PollLimiter))
	}
	status, err := firecrawl.PollBatchScrape(ctx, s.fc, job.ID, pollOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "listing: wait for scrape")
	}

	out := make(map[string]*model.PropertyRecord, len(status.Data))
	for _, page := range status.Data {
		source := page.Metadata.SourceURL
		if source == "" {
			source = page.Metadata.URL
		}
		rec, err := parsePage(page.RawHTML)
		if err != nil {
			zap.L().Info("listing: skipping page", zap.String("url", source), zap.Error(err))
			metrics.ScrapedListings.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.ScrapedListings.WithLabelValues("fetch").Inc()

		key := ListingID(source)
		if key == "" {
			key = rec.ID
		}
		out[key] = rec

		if s.cache != nil {
			if err := s.cache.Set(ctx, rec, s.opts.CacheTTL); err != nil {
				zap.L().Warn("listing: cache write failed", zap.String("id", rec.ID), zap.Error(err))
			}
		}
	}
	return out, nil
}

func parsePage(page string) (*model.PropertyRecord, error) {
	payload, err := ExtractPayload(page)
	if err != nil {
		return nil, err
	}
	return ParseProperty(payload)
}
