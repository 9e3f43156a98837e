package engine

import (
	"context"
	"fmt"
	"strings"
)

// Backend runs read-only queries against the dataset and bulk-loads it.
type Backend interface {
	// Dialect names the SQL dialect for the generation prompt.
	Dialect() string
	Query(ctx context.Context, query string) (columns []string, rows [][]any, err error)
	// Replace recreates the dataset table from rows in schema column order.
	Replace(ctx context.Context, table string, s *Schema, rows [][]any) (int64, error)
	Close() error
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL renders the DDL for s using the given type mapping.
func createTableSQL(table string, s *Schema, typeOf func(string) string) string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = fmt.Sprintf("\t%s %s", quoteIdent(c.Name), typeOf(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", quoteIdent(table), strings.Join(defs, ",\n"))
}
