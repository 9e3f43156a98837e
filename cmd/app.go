package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/listing-assistant/internal/chart"
	"github.com/sells-group/listing-assistant/internal/db"
	"github.com/sells-group/listing-assistant/internal/engine"
	"github.com/sells-group/listing-assistant/internal/geomap"
	"github.com/sells-group/listing-assistant/internal/listing"
	"github.com/sells-group/listing-assistant/internal/llm"
	"github.com/sells-group/listing-assistant/internal/metrics"
	"github.com/sells-group/listing-assistant/internal/pipeline"
	"github.com/sells-group/listing-assistant/internal/resilience"
	"github.com/sells-group/listing-assistant/internal/store"
	"github.com/sells-group/listing-assistant/pkg/anthropic"
	"github.com/sells-group/listing-assistant/pkg/firecrawl"
)

// appEnv holds the initialized clients and the dispatcher needed by the
// serve and ask commands.
type appEnv struct {
	Dispatcher *pipeline.Dispatcher
	Store      store.Store // nil unless requested

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *appEnv) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// initApp builds the dispatcher and its collaborators. withStore also opens
// and migrates the query log. Callers should defer env.Close().
func initApp(ctx context.Context, mode string, withStore bool) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &appEnv{}
	ok := false
	defer func() {
		if !ok {
			env.Close()
		}
	}()

	schema, err := engine.LoadSchema(cfg.Dataset.SchemaPath)
	if err != nil {
		return nil, err
	}
	backend, err := initDataset(ctx)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, func() { _ = backend.Close() })

	completer := llm.New(
		anthropic.NewClient(cfg.Anthropic.Key, anthropic.WithBaseURL(cfg.Anthropic.BaseURL), anthropic.WithMaxRetries(0)),
		newPolicy("anthropic"),
	)

	sqlEngine := engine.NewSQL(completer, backend, schema, engine.Config{
		Model:   cfg.Anthropic.SQLModel,
		Table:   cfg.Dataset.Table,
		MaxRows: cfg.Dataset.MaxRows,
	})

	deps := pipeline.Deps{
		Gate:       pipeline.NewGate(completer, cfg.Anthropic.GateModel),
		Classifier: pipeline.NewClassifier(completer, cfg.Anthropic.ClassifyModel),
		Retriever:  pipeline.NewRetriever(sqlEngine, cfg.Dataset.TableHint),
		Charts:     chart.NewSynthesizer(completer, cfg.Anthropic.ChartModel),
		Maps:       geomap.New(cfg.Maps.GoogleAPIKey),
		MarkerCap:  cfg.Maps.MarkerCap,
	}

	if cfg.Maps.GoogleAPIKey == "" {
		zap.L().Warn("google maps key not set, map answers will not load")
	}

	if cfg.Firecrawl.Key != "" {
		deps.Scraper = initScraper(ctx, env)
	} else {
		zap.L().Warn("firecrawl key not set, listing urls will not be priced")
	}

	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, func() { _ = st.Close() })
		if err := st.Migrate(ctx); err != nil {
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
		deps.Log = st
	}

	env.Dispatcher = pipeline.NewDispatcher(deps)
	ok = true
	return env, nil
}

// initScraper wires the listing scraper, with a Redis cache when configured.
func initScraper(ctx context.Context, env *appEnv) *listing.Scraper {
	fc := firecrawl.NewClient(cfg.Firecrawl.Key,
		firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL),
		firecrawl.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)

	var cache listing.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zap.L().Warn("redis unreachable, listing cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rdb.Close()
		} else {
			env.closers = append(env.closers, func() { _ = rdb.Close() })
			cache = listing.NewRedisCache(rdb)
		}
	}

	var limiter *rate.Limiter
	if cfg.Firecrawl.PollRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Firecrawl.PollRatePerSec), 1)
	}

	return listing.NewScraper(fc, cache, newPolicy("firecrawl"), listing.Options{
		Country:     cfg.Firecrawl.Country,
		Proxy:       cfg.Firecrawl.Proxy,
		CacheTTL:    time.Duration(cfg.Scrape.CacheTTLHours) * time.Hour,
		PollTimeout: time.Duration(cfg.Firecrawl.PollTimeoutSecs) * time.Second,
		PollLimiter: limiter,
	})
}

// newPolicy builds the retry schedule and a named breaker for one
// downstream service. Breaker transitions are exported as a gauge.
func newPolicy(service string) resilience.Policy {
	cb := resilience.FromCircuitConfig(service, cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)
	cb.OnStateChange = func(name string, from, to resilience.CircuitState) {
		metrics.CircuitState.WithLabelValues(name).Set(float64(to))
		zap.L().Warn("circuit breaker state change",
			zap.String("service", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	metrics.CircuitState.WithLabelValues(service).Set(float64(resilience.CircuitClosed))

	return resilience.Policy{
		Retry:   resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs),
		Breaker: resilience.NewCircuitBreaker(cb),
	}
}

// initDataset opens the backend the query engine reads.
func initDataset(ctx context.Context) (engine.Backend, error) {
	switch cfg.Dataset.Driver {
	case "sqlite":
		return engine.NewSQLite(cfg.Dataset.DSN)
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Dataset.DSN, &cfg.Dataset.Pool, nil)
		if err != nil {
			return nil, eris.Wrap(err, "connect dataset")
		}
		return engine.NewPostgres(pool), nil
	default:
		return nil, eris.Errorf("unsupported dataset driver: %s", cfg.Dataset.Driver)
	}
}

// initStore opens the query log.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
