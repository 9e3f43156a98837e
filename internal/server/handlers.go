package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/listing-assistant/internal/model"
	"github.com/sells-group/listing-assistant/internal/store"
)

const maxBodyBytes = 64 << 10

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// query handles POST /api/v1/query. Every envelope, including error
// envelopes, is a 200.
func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	env := s.pipeline.Handle(r.Context(), q)
	zap.L().Debug("query answered",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("envelope", string(env.Kind())),
	)
	writeJSON(w, http.StatusOK, env)
}

// listQueries handles GET /api/v1/queries.
func (s *Server) listQueries(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "query log is not configured")
		return
	}

	params := r.URL.Query()
	filter := store.QueryFilter{
		Envelope: model.Kind(params.Get("envelope")),
		Route:    params.Get("route"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	entries, err := s.store.ListQueries(r.Context(), filter)
	if err != nil {
		zap.L().Error("list queries failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read the query log")
		return
	}
	if entries == nil {
		entries = []model.QueryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": entries})
}

// getQuery handles GET /api/v1/queries/{id}.
func (s *Server) getQuery(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "query log is not configured")
		return
	}

	e, err := s.store.GetQuery(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "query not found")
		return
	}
	if err != nil {
		zap.L().Error("get query failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read the query log")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
