package firecrawl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type statusFunc func(ctx context.Context, id string) (*BatchScrapeStatusResponse, error)

func (f statusFunc) BatchScrape(context.Context, BatchScrapeRequest) (*BatchScrapeResponse, error) {
	return nil, nil
}

func (f statusFunc) GetBatchScrapeStatus(ctx context.Context, id string) (*BatchScrapeStatusResponse, error) {
	return f(ctx, id)
}

func TestPollBatchScrape_CompletesImmediately(t *testing.T) {
	c := statusFunc(func(_ context.Context, id string) (*BatchScrapeStatusResponse, error) {
		assert.Equal(t, "batch-1", id)
		return &BatchScrapeStatusResponse{Status: StatusCompleted, Total: 1, Data: []PageData{{RawHTML: "x"}}}, nil
	})

	resp, err := PollBatchScrape(context.Background(), c, "batch-1", WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
}

func TestPollBatchScrape_CompletesAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := statusFunc(func(context.Context, string) (*BatchScrapeStatusResponse, error) {
		if calls.Add(1) < 3 {
			return &BatchScrapeStatusResponse{Status: StatusScraping}, nil
		}
		return &BatchScrapeStatusResponse{Status: StatusCompleted}, nil
	})

	resp, err := PollBatchScrape(context.Background(), c, "batch-1",
		WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPollBatchScrape_Failed(t *testing.T) {
	c := statusFunc(func(context.Context, string) (*BatchScrapeStatusResponse, error) {
		return &BatchScrapeStatusResponse{Status: StatusFailed}, nil
	})

	_, err := PollBatchScrape(context.Background(), c, "batch-9", WithPollInterval(time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch scrape batch-9 failed")
}

func TestPollBatchScrape_Timeout(t *testing.T) {
	c := statusFunc(func(context.Context, string) (*BatchScrapeStatusResponse, error) {
		return &BatchScrapeStatusResponse{Status: StatusScraping}, nil
	})

	_, err := PollBatchScrape(context.Background(), c, "batch-1",
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(20*time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestPollBatchScrape_ErrorPropagation(t *testing.T) {
	c := statusFunc(func(context.Context, string) (*BatchScrapeStatusResponse, error) {
		return nil, errors.New("connection reset")
	})

	_, err := PollBatchScrape(context.Background(), c, "batch-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPollBatchScrape_LimiterPacesRequests(t *testing.T) {
	var calls atomic.Int32
	c := statusFunc(func(context.Context, string) (*BatchScrapeStatusResponse, error) {
		if calls.Add(1) < 3 {
			return &BatchScrapeStatusResponse{Status: StatusScraping}, nil
		}
		return &BatchScrapeStatusResponse{Status: StatusCompleted}, nil
	})

	limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
	start := time.Now()
	_, err := PollBatchScrape(context.Background(), c, "batch-1",
		WithPollInterval(time.Millisecond),
		WithPollLimiter(limiter),
	)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestPollBatchScrape_LimiterHonoursContext(t *testing.T) {
	c := statusFunc(func(context.Context, string) (*BatchScrapeStatusResponse, error) {
		return &BatchScrapeStatusResponse{Status: StatusScraping}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := PollBatchScrape(ctx, c, "batch-1",
		WithPollInterval(time.Millisecond),
		WithPollLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)),
	)
	require.Error(t, err)
}
