// Package chart turns a question and its result rows into a validated,
// declarative chart bound to the full data.
package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/listing"
	"github.com/sells-group/listing-assistant/internal/llm"
	"github.com/sells-group/listing-assistant/internal/model"
)

// SampleRows is how many rows the prompt shows the model.
const SampleRows = 5

// Synthesizer asks the completion model for a chart specification.
type Synthesizer struct {
	llm   llm.Completer
	model string
}

// NewSynthesizer creates a Synthesizer using the given model.
func NewSynthesizer(completer llm.Completer, model string) *Synthesizer {
	return &Synthesizer{llm: completer, model: model}
}

// Synthesize returns the raw chart specification for records. The result is
// untrusted until Execute validates it.
func (s *Synthesizer) Synthesize(ctx context.Context, records []model.Record, query string) (string, error) {
	prompt, err := buildPrompt(records, query)
	if err != nil {
		return "", err
	}
	text, err := s.llm.Complete(ctx, llm.Prompt{
		Stage:     "chart",
		Model:     s.model,
		System:    systemPrompt,
		Text:      prompt,
		MaxTokens: 512,
	})
	if err != nil {
		return "", eris.Wrap(err, "chart: synthesize")
	}
	return StripArtifact(text), nil
}

// StripArtifact removes prose and code fences around the first JSON object
// in text. Text without an object is returned trimmed.
func StripArtifact(text string) string {
	if obj, ok := listing.FirstJSONObject(text); ok {
		return string(obj)
	}
	return strings.TrimSpace(text)
}

var systemPrompt = fmt.Sprintf(`You design charts for a property listings assistant.
Reply with one JSON object of the form {"fig": {...}} and nothing else.
Fields of "fig":
- "mark": one of %s
- "x", "y": column names from the data
- "color": optional column that splits the data into series
- "agg": one of %s, applied to y for each distinct x
- "title", "x_label", "y_label": optional display text`,
	strings.Join(Marks, ", "), strings.Join(Aggregations, ", "))

func buildPrompt(records []model.Record, query string) (string, error) {
	sample := records
	if len(sample) > SampleRows {
		sample = sample[:SampleRows]
	}
	raw, err := json.Marshal(sample)
	if err != nil {
		return "", eris.Wrap(err, "chart: encode sample")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(model.ColumnsOf(records), ", "))
	fmt.Fprintf(&b, "Sample rows (%d of %d, shape only): %s\n\n", len(sample), len(records), raw)
	fmt.Fprintf(&b, "Query: %q\n\n", query)
	b.WriteString(`Requirements:
1. The chart is drawn from the full data, not the sample. Do not filter it.
2. Always produce a chart, even when there is a single row.
3. Pick the mark that fits the request; the query may name plot settings.
4. Only use column names listed above.
5. Return only the JSON object, no text or markdown.`)
	return b.String(), nil
}
