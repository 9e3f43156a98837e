// Package store persists the query log.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/model"
)

// ErrNotFound is returned when a query log entry does not exist.
var ErrNotFound = eris.New("not found")

// DefaultListLimit caps ListQueries when the filter sets no limit.
const DefaultListLimit = 50

// MaxListLimit is the largest page ListQueries returns.
const MaxListLimit = 500

// QueryFilter specifies criteria for listing queries.
type QueryFilter struct {
	Envelope model.Kind `json:"envelope,omitempty"`
	Route    string     `json:"route,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}

func (f QueryFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return min(f.Limit, MaxListLimit)
}

// Store defines the persistence interface for handled queries.
type Store interface {
	RecordQuery(ctx context.Context, e *model.QueryEntry) error
	GetQuery(ctx context.Context, id string) (*model.QueryEntry, error)
	// ListQueries returns entries newest first.
	ListQueries(ctx context.Context, filter QueryFilter) ([]model.QueryEntry, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
