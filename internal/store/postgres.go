package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/db"
	"github.com/sells-group/listing-assistant/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// preparedStatements lists queries prepared on each new connection.
var preparedStatements = map[string]string{
	"insert_query": `INSERT INTO queries (id, query, route, intent, envelope, payload, duration_ms, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_query":    `SELECT id, query, route, intent, envelope, payload, duration_ms, created_at FROM queries WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg, func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				// The table may not exist before the first migrate.
				if strings.Contains(err.Error(), "does not exist") {
					continue
				}
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS queries (
	id          UUID PRIMARY KEY,
	query       TEXT NOT NULL,
	route       TEXT NOT NULL,
	intent      TEXT NOT NULL DEFAULT '',
	envelope    TEXT NOT NULL,
	payload     JSONB,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_queries_envelope ON queries(envelope);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) RecordQuery(ctx context.Context, e *model.QueryEntry) error {
	prepareEntry(e)

	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	_, err := s.pool.Exec(ctx, preparedStatements["insert_query"],
		e.ID, e.Query, e.Route, e.Intent, string(e.Envelope), payload, e.DurationMs, e.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert query %s", e.ID)
}

func (s *PostgresStore) GetQuery(ctx context.Context, id string) (*model.QueryEntry, error) {
	// ids are UUIDs; anything else cannot match.
	if _, err := uuid.Parse(id); err != nil {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get query %s", id)
	}
	row := s.pool.QueryRow(ctx, preparedStatements["get_query"], id)
	e, err := scanPGEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get query %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get query %s", id)
	}
	return e, nil
}

func (s *PostgresStore) ListQueries(ctx context.Context, filter QueryFilter) ([]model.QueryEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.Envelope != "" {
		args = append(args, string(filter.Envelope))
		where = append(where, fmt.Sprintf("envelope = $%d", len(args)))
	}
	if filter.Route != "" {
		args = append(args, filter.Route)
		where = append(where, fmt.Sprintf("route = $%d", len(args)))
	}

	q := `SELECT id, query, route, intent, envelope, payload, duration_ms, created_at FROM queries`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.limit(), max(filter.Offset, 0))
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list queries")
	}
	defer rows.Close()

	var out []model.QueryEntry
	for rows.Next() {
		e, err := scanPGEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan query")
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list queries")
}

func scanPGEntry(row pgx.Row) (*model.QueryEntry, error) {
	var (
		e        model.QueryEntry
		envelope string
		payload  []byte
	)
	if err := row.Scan(&e.ID, &e.Query, &e.Route, &e.Intent, &envelope, &payload, &e.DurationMs, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Envelope = model.Kind(envelope)
	if len(payload) > 0 {
		e.Payload = payload
	}
	return &e, nil
}
