package engine

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteBackend reads the dataset from a SQLite file.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLite opens the dataset at dsn.
func NewSQLite(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "engine: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "engine: sqlite exec %s", pragma)
		}
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Dialect() string { return "SQLite" }

func (b *SQLiteBackend) Query(ctx context.Context, query string) ([]string, [][]any, error) {
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, eris.Wrap(err, "engine: sqlite query")
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, eris.Wrap(err, "engine: sqlite columns")
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, eris.Wrap(err, "engine: sqlite scan")
		}
		for i, v := range vals {
			if raw, ok := v.([]byte); ok {
				vals[i] = string(raw)
			}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "engine: sqlite rows")
	}
	return cols, out, nil
}

func sqliteType(t string) string {
	switch t {
	case TypeInteger, TypeBoolean:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (b *SQLiteBackend) Replace(ctx context.Context, table string, s *Schema, rows [][]any) (int64, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "engine: sqlite begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return 0, eris.Wrapf(err, "engine: sqlite drop %s", table)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, s, sqliteType)); err != nil {
		return 0, eris.Wrapf(err, "engine: sqlite create %s", table)
	}

	cols := make([]string, len(s.Columns))
	marks := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+quoteIdent(table)+" ("+strings.Join(cols, ", ")+") VALUES ("+strings.Join(marks, ", ")+")")
	if err != nil {
		return 0, eris.Wrap(err, "engine: sqlite prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "engine: sqlite insert row %d", i+1)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "engine: sqlite commit")
	}
	return int64(len(rows)), nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
