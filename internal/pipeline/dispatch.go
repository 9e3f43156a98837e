// Package pipeline routes a natural-language query to exactly one response
// envelope: scraped valuations, a refusal, rows, a chart or a map.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/listing-assistant/internal/chart"
	"github.com/sells-group/listing-assistant/internal/listing"
	"github.com/sells-group/listing-assistant/internal/metrics"
	"github.com/sells-group/listing-assistant/internal/model"
)

// User-visible copy.
const (
	MsgIrrelevant     = "This is an irrelevant question to London property."
	MsgNoData         = "No properties found. Please refine your search."
	MsgTooManyMarkers = "Too many properties to display. Please refine your search."
	MsgBusy           = "The model server is busy right now."
	MsgLLMUnavailable = "The language model service is unavailable right now."
	SolLLMUnavailable = "Please try again in a moment."
	MsgNoFigure       = "No figure was created for this request."
	MsgChartFailed    = "The chart could not be generated."
	SolChart          = "Try naming the chart type and the columns to compare, for example a bar chart of price by area."
)

const unknownActionPrefix = "Unknown action '"

// DefaultMarkerCap is the smallest result size refused by the map branch.
const DefaultMarkerCap = 50

// Routes label metrics and query log entries.
const (
	RouteScrape     = "scrape"
	RouteIrrelevant = "irrelevant"
	RouteFailed     = "failed"
)

// Collaborators of the Dispatcher.
type (
	Relevance interface {
		InDomain(ctx context.Context, query string) (bool, error)
	}
	IntentClassifier interface {
		Classify(ctx context.Context, query string) (model.Intent, error)
	}
	DataRetriever interface {
		Retrieve(ctx context.Context, query string) (Retrieval, error)
	}
	ChartSynthesizer interface {
		Synthesize(ctx context.Context, records []model.Record, query string) (string, error)
	}
	MapRenderer interface {
		Render(records []model.Record) string
	}
	ListingScraper interface {
		Scrape(ctx context.Context, urls []string) ([]model.PropertyRecord, error)
	}
	QueryLog interface {
		RecordQuery(ctx context.Context, e *model.QueryEntry) error
	}
)

// Deps wires a Dispatcher. Scraper and Log may be nil: listing URLs then get
// the busy message, and queries are not logged.
type Deps struct {
	Gate       Relevance
	Classifier IntentClassifier
	Retriever  DataRetriever
	Charts     ChartSynthesizer
	Maps       MapRenderer
	Scraper    ListingScraper
	Log        QueryLog
	MarkerCap  int
	// Rand returns the jitter source for one valuation batch.
	Rand func() *rand.Rand
}

// Dispatcher is the single entry point for a query.
type Dispatcher struct {
	d Deps
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(d Deps) *Dispatcher {
	if d.MarkerCap <= 0 {
		d.MarkerCap = DefaultMarkerCap
	}
	if d.Rand == nil {
		d.Rand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	return &Dispatcher{d: d}
}

// Handle answers query with exactly one envelope. Raw errors are logged and
// never returned to the caller.
func (p *Dispatcher) Handle(ctx context.Context, query string) model.Envelope {
	start := time.Now()
	env, route, intent := p.route(ctx, query)
	elapsed := time.Since(start)

	metrics.QueriesHandled.WithLabelValues(string(env.Kind())).Inc()
	metrics.QueryDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	zap.L().Info("pipeline: query handled",
		zap.String("route", route),
		zap.String("intent", string(intent)),
		zap.String("envelope", string(env.Kind())),
		zap.Duration("duration", elapsed),
	)

	p.record(ctx, query, route, intent, env, elapsed)
	return env
}

func (p *Dispatcher) route(ctx context.Context, query string) (model.Envelope, string, model.Intent) {
	if urls := listing.DetectURLs(query); len(urls) > 0 {
		return p.scrape(ctx, urls), RouteScrape, ""
	}

	ok, err := p.d.Gate.InDomain(ctx, query)
	if err != nil {
		zap.L().Error("pipeline: relevance gate failed", zap.String("stage", "gate"), zap.Error(err))
		return llmUnavailable(), RouteFailed, ""
	}
	if !ok {
		return model.Message{Message: MsgIrrelevant}, RouteIrrelevant, ""
	}

	query = Sanitize(query)
	intent, err := p.d.Classifier.Classify(ctx, query)
	if err != nil {
		zap.L().Error("pipeline: classifier failed", zap.String("stage", "classify"), zap.Error(err))
		return llmUnavailable(), RouteFailed, ""
	}
	route := string(intent)
	known, parseErr := model.ParseIntent(string(intent))
	if parseErr != nil {
		route = RouteFailed
	}

	res, err := p.d.Retriever.Retrieve(ctx, query)
	if err != nil {
		var rerr *RetrievalError
		if errors.As(err, &rerr) {
			return model.Failure{Error: rerr.Message, Solution: rerr.Solution}, route, intent
		}
		zap.L().Error("pipeline: retrieval failed", zap.String("stage", "retrieve"), zap.Error(err))
		return model.Failure{Error: engineFailure, Solution: RetrievalSolution}, route, intent
	}
	if res.NoData() {
		return model.Message{Message: MsgNoData}, route, intent
	}

	switch known {
	case model.IntentOutput:
		return model.Data{Data: res.Records}, route, intent
	case model.IntentPlotStats:
		return p.plot(ctx, res.Records, query), route, intent
	case model.IntentGeospatialPlot:
		if len(res.Records) >= p.d.MarkerCap {
			return model.Message{Message: MsgTooManyMarkers}, route, intent
		}
		return model.HTML{Content: p.d.Maps.Render(res.Records)}, route, intent
	default:
		zap.L().Warn("pipeline: classifier label rejected", zap.String("stage", "classify"), zap.Error(parseErr))
		return model.Failure{Error: unknownActionPrefix + string(intent) + "' from classifier."}, route, intent
	}
}

func (p *Dispatcher) scrape(ctx context.Context, urls []string) model.Envelope {
	if p.d.Scraper == nil {
		zap.L().Warn("pipeline: listing urls received but scraping is not configured", zap.Int("urls", len(urls)))
		return model.Message{Message: MsgBusy}
	}
	records, err := p.d.Scraper.Scrape(ctx, urls)
	if err != nil {
		zap.L().Error("pipeline: scrape failed", zap.String("stage", "scrape"), zap.Int("urls", len(urls)), zap.Error(err))
		return model.Message{Message: MsgBusy}
	}
	return model.PricingData{Data: listing.Valuations(records, p.d.Rand())}
}

func (p *Dispatcher) plot(ctx context.Context, records []model.Record, query string) model.Envelope {
	code, err := p.d.Charts.Synthesize(ctx, records, query)
	if err != nil {
		zap.L().Error("pipeline: chart synthesis failed", zap.String("stage", "chart"), zap.Error(err))
		return model.Failure{Error: MsgChartFailed, Solution: SolChart, Data: records}
	}
	fig, err := chart.Execute(code, records)
	if err != nil {
		msg := MsgChartFailed
		if errors.Is(err, chart.ErrNoFigure) {
			msg = MsgNoFigure
		}
		zap.L().Warn("pipeline: chart rejected", zap.String("stage", "chart"), zap.String("spec", code), zap.Error(err))
		return model.Failure{Error: msg, Solution: SolChart, Data: records}
	}
	out, err := fig.JSON()
	if err != nil {
		zap.L().Error("pipeline: encode figure", zap.Error(err))
		return model.Failure{Error: MsgChartFailed, Solution: SolChart, Data: records}
	}
	return model.Plot{Result: out, Data: records}
}

func (p *Dispatcher) record(ctx context.Context, query, route string, intent model.Intent, env model.Envelope, elapsed time.Duration) {
	if p.d.Log == nil {
		return
	}
	e := &model.QueryEntry{
		ID:         uuid.NewString(),
		Query:      query,
		Route:      route,
		Intent:     string(intent),
		Envelope:   env.Kind(),
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if env.Kind() != model.KindPricingData {
		raw, err := json.Marshal(env)
		if err != nil {
			zap.L().Warn("pipeline: encode envelope for query log", zap.Error(err))
		} else {
			e.Payload = raw
		}
	}
	if err := p.d.Log.RecordQuery(ctx, e); err != nil {
		zap.L().Warn("pipeline: record query", zap.String("id", e.ID), zap.Error(err))
	}
}

func llmUnavailable() model.Envelope {
	return model.Failure{Error: MsgLLMUnavailable, Solution: SolLLMUnavailable}
}
