package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/llm"
	"github.com/sells-group/listing-assistant/internal/model"
)

// Classifier labels a query with the output shape it asks for.
type Classifier struct {
	llm   llm.Completer
	model string
}

// NewClassifier creates a Classifier using the given model.
func NewClassifier(completer llm.Completer, model string) *Classifier {
	return &Classifier{llm: completer, model: model}
}

// Classify returns the normalized label. The label may fall outside the
// known intents; an empty reply yields the empty label.
func (c *Classifier) Classify(ctx context.Context, query string) (model.Intent, error) {
	text, err := c.llm.Complete(ctx, llm.Prompt{
		Stage:       "classify",
		Model:       c.model,
		Text:        classifyPrompt(query),
		Temperature: 0,
		MaxTokens:   10,
	})
	if errors.Is(err, llm.ErrEmptyCompletion) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "classify: complete")
	}
	return model.Intent(NormalizeLabel(text)), nil
}

// NormalizeLabel trims whitespace and surrounding quotes or backticks and
// lowercases the result.
func NormalizeLabel(text string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "\"'`")))
}
