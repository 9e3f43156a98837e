package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnsafeSQL is returned for generated SQL that is not a single read-only query.
var ErrUnsafeSQL = eris.New("unsafe sql")

var (
	fencePattern     = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")
	forbiddenPattern = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|attach|detach|pragma|vacuum|grant|revoke|copy)\b`)
	leadingPattern   = regexp.MustCompile(`(?i)^(select|with)\b`)
	literalPattern   = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// CleanSQL strips code fences and trailing semicolons from generated SQL.
func CleanSQL(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimRight(text, "; \n\t"))
}

// CheckReadOnly accepts a single SELECT (or WITH ... SELECT) statement.
// Keywords inside string literals are ignored.
func CheckReadOnly(query string) error {
	if query == "" {
		return eris.Wrap(ErrUnsafeSQL, "empty statement")
	}
	bare := literalPattern.ReplaceAllString(query, "''")
	if !leadingPattern.MatchString(bare) {
		return eris.Wrap(ErrUnsafeSQL, "statement must start with SELECT or WITH")
	}
	if strings.Contains(bare, ";") {
		return eris.Wrap(ErrUnsafeSQL, "multiple statements")
	}
	if m := forbiddenPattern.FindString(bare); m != "" {
		return eris.Wrapf(ErrUnsafeSQL, "forbidden keyword %s", strings.ToUpper(m))
	}
	if strings.Contains(bare, "--") || strings.Contains(bare, "/*") {
		return eris.Wrap(ErrUnsafeSQL, "comments are not allowed")
	}
	return nil
}

// WithRowLimit wraps query so that at most limit rows come back.
func WithRowLimit(query string, limit int) string {
	if limit <= 0 {
		return query
	}
	return "SELECT * FROM (" + query + ") AS bounded LIMIT " + strconv.Itoa(limit)
}
