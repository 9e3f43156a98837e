// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_queries_handled_total",
			Help: "Queries handled, by envelope type",
		},
		[]string{"envelope"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_query_duration_seconds",
			Help:    "End-to-end dispatch latency, by route",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"route"},
	)

	CompletionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_completion_calls_total",
			Help: "Completion model calls, by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_completion_duration_seconds",
			Help:    "Completion model latency, by stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	ScrapedListings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_scraped_listings_total",
			Help: "Listing pages resolved by the scraper, by source (cache, fetch, skipped)",
		},
		[]string{"source"},
	)

	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "listing_circuit_state",
			Help: "Circuit breaker state per downstream service (0 closed, 1 open, 2 half-open)",
		},
		[]string{"service"},
	)
)

// Outcome labels for CompletionCalls.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
