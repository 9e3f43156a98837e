// Package server exposes the dispatcher and the query log over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/listing-assistant/internal/model"
	"github.com/sells-group/listing-assistant/internal/store"
)

// Handler answers one query with one envelope.
type Handler interface {
	Handle(ctx context.Context, query string) model.Envelope
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// RequestTimeout bounds each request. Zero means no timeout.
	RequestTimeout time.Duration
}

// Server holds the HTTP handlers.
type Server struct {
	pipeline Handler
	store    store.Store
}

// New builds the router. st may be nil, in which case the query log
// endpoints answer 503.
func New(pipeline Handler, st store.Store, opts Options) http.Handler {
	s := &Server{pipeline: pipeline, store: st}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(opts.RequestTimeout))
		}
		r.Post("/query", s.query)
		r.Get("/queries", s.listQueries)
		r.Get("/queries/{id}", s.getQuery)
	})

	return r
}
