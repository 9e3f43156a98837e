package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/db"
)

// PostgresBackend reads the dataset from a Postgres table.
type PostgresBackend struct {
	pool db.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool db.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Dialect() string { return "PostgreSQL" }

func (b *PostgresBackend) Query(ctx context.Context, query string) ([]string, [][]any, error) {
	rows, err := b.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, eris.Wrap(err, "engine: postgres query")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, eris.Wrap(err, "engine: postgres values")
		}
		for i, v := range vals {
			vals[i] = plainValue(v)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "engine: postgres rows")
	}
	return cols, out, nil
}

// plainValue turns pgx wrapper types into JSON-friendly scalars.
func plainValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	default:
		return v
	}
}

func postgresType(t string) string {
	switch t {
	case TypeInteger:
		return "BIGINT"
	case TypeFloat:
		return "DOUBLE PRECISION"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (b *PostgresBackend) Replace(ctx context.Context, table string, s *Schema, rows [][]any) (int64, error) {
	if _, err := b.pool.Exec(ctx, createTableSQL(table, s, postgresType)); err != nil {
		return 0, eris.Wrapf(err, "engine: postgres create %s", table)
	}
	n, err := db.ReplaceTable(ctx, b.pool, table, s.ColumnNames(), rows)
	if err != nil {
		return 0, eris.Wrap(err, "engine: postgres load")
	}
	return n, nil
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
