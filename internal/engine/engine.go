// Package engine answers natural-language questions over the listings
// dataset by generating read-only SQL with the completion model.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-assistant/internal/llm"
	"github.com/sells-group/listing-assistant/internal/model"
)

// Answer is what the engine produced for a question. Error is set when the
// question could not be answered; Value is then nil. Otherwise Value is nil,
// a scalar, or []model.Record.
type Answer struct {
	Value any
	Error string
}

// Engine answers a natural-language question.
type Engine interface {
	Query(ctx context.Context, question string) (*Answer, error)
}

const refusalPrefix = "ERROR:"

// Config tunes the SQL engine.
type Config struct {
	Model   string
	Table   string
	MaxRows int
}

// SQLEngine translates questions to SQL and runs them on a Backend.
type SQLEngine struct {
	llm     llm.Completer
	backend Backend
	schema  *Schema
	cfg     Config
}

// NewSQL creates a SQLEngine.
func NewSQL(completer llm.Completer, backend Backend, schema *Schema, cfg Config) *SQLEngine {
	if cfg.Table == "" {
		cfg.Table = schema.Name
	}
	return &SQLEngine{llm: completer, backend: backend, schema: schema, cfg: cfg}
}

// Query generates SQL for question, runs it and shapes the result. A single
// cell comes back as a scalar, anything else as records.
func (e *SQLEngine) Query(ctx context.Context, question string) (*Answer, error) {
	text, err := e.llm.Complete(ctx, llm.Prompt{
		Stage:       "sql",
		Model:       e.cfg.Model,
		System:      e.systemPrompt(),
		Text:        question,
		Temperature: 0,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine: generate sql")
	}

	if rest, ok := strings.CutPrefix(strings.TrimSpace(text), refusalPrefix); ok {
		return &Answer{Error: strings.TrimSpace(rest)}, nil
	}

	query := CleanSQL(text)
	if err := CheckReadOnly(query); err != nil {
		zap.L().Warn("engine: rejected generated sql", zap.String("sql", query), zap.Error(err))
		return &Answer{Error: "The generated query was not a read-only SELECT statement."}, nil
	}
	zap.L().Debug("engine: running sql", zap.String("sql", query))

	cols, rows, err := e.backend.Query(ctx, WithRowLimit(query, e.cfg.MaxRows))
	if err != nil {
		zap.L().Warn("engine: query failed", zap.String("sql", query), zap.Error(err))
		return &Answer{Error: "The query could not be run against the dataset."}, nil
	}

	if len(rows) == 0 {
		return &Answer{}, nil
	}
	if len(rows) == 1 && len(cols) == 1 {
		return &Answer{Value: rows[0][0]}, nil
	}
	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = model.RecordOf(cols, r)
	}
	return &Answer{Value: records}, nil
}

func (e *SQLEngine) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You translate questions about a property listings dataset into one %s query.\n\n", e.backend.Dialect())
	fmt.Fprintf(&b, "Table %s", quoteIdent(e.cfg.Table))
	if e.schema.Description != "" {
		fmt.Fprintf(&b, ": %s", e.schema.Description)
	}
	b.WriteString("\nColumns:\n")
	b.WriteString(e.schema.Describe())
	b.WriteString(`
Rules:
- Write exactly one read-only SELECT statement. Never modify data.
- Quote every column and table name with double quotes; names are case-sensitive.
- Text matches on areas, cities and titles are case-insensitive and partial (use LOWER and LIKE).
- When the question asks for a single number (a count, an average, a maximum), return one row with one column.
- When the question asks to list, show, compare, map or plot properties, return the matching rows with "title", "price", "bedrooms", "bathrooms", "Area", "latitude" and "longitude" plus any column the question mentions.
- When the question asks for a breakdown or trend, group by the relevant column and order the result.
- Instructions about presentation (tables, charts, maps) do not change the query beyond the rules above.
`)
	fmt.Fprintf(&b, "- Return at most %d rows.\n", e.maxRows())
	fmt.Fprintf(&b, "- If the dataset cannot answer the question, reply with %q followed by a short reason.\n\n", refusalPrefix)
	b.WriteString("Reply with the SQL only, no explanation and no code fences.")
	return b.String()
}

func (e *SQLEngine) maxRows() int {
	if e.cfg.MaxRows > 0 {
		return e.cfg.MaxRows
	}
	return 500
}
