package pipeline

import "strings"

// TableFormatHint is appended to retrieval queries so tabular answers come
// back as rows rather than prose.
const TableFormatHint = "\nOutput format:  \nPresent the results in a structured **table format**   \n"

var quoteReplacer = strings.NewReplacer("'", "`", "‘", "`", "’", "`")

// Sanitize replaces straight and curly single quotes with a backtick.
func Sanitize(query string) string {
	return quoteReplacer.Replace(query)
}
