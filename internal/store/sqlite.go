package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/listing-assistant/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS queries (
	id          TEXT PRIMARY KEY,
	query       TEXT NOT NULL,
	route       TEXT NOT NULL,
	intent      TEXT NOT NULL DEFAULT '',
	envelope    TEXT NOT NULL,
	payload     TEXT,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
CREATE INDEX IF NOT EXISTS idx_queries_envelope ON queries(envelope);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordQuery(ctx context.Context, e *model.QueryEntry) error {
	prepareEntry(e)

	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, query, route, intent, envelope, payload, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Query, e.Route, e.Intent, string(e.Envelope), payload, e.DurationMs, e.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert query %s", e.ID)
}

func (s *SQLiteStore) GetQuery(ctx context.Context, id string) (*model.QueryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, route, intent, envelope, payload, duration_ms, created_at FROM queries WHERE id = ?`,
		id,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get query %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get query %s", id)
	}
	return e, nil
}

func (s *SQLiteStore) ListQueries(ctx context.Context, filter QueryFilter) ([]model.QueryEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.Envelope != "" {
		where = append(where, "envelope = ?")
		args = append(args, string(filter.Envelope))
	}
	if filter.Route != "" {
		where = append(where, "route = ?")
		args = append(args, filter.Route)
	}

	q := `SELECT id, query, route, intent, envelope, payload, duration_ms, created_at FROM queries`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.limit(), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list queries")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.QueryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan query")
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list queries")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (*model.QueryEntry, error) {
	var (
		e        model.QueryEntry
		envelope string
		payload  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Query, &e.Route, &e.Intent, &envelope, &payload, &e.DurationMs, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Envelope = model.Kind(envelope)
	if payload.Valid {
		e.Payload = []byte(payload.String)
	}
	return &e, nil
}

// prepareEntry fills the ID and timestamp when the caller left them unset.
func prepareEntry(e *model.QueryEntry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
