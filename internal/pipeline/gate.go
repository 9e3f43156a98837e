package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/llm"
)

// Gate decides whether a query is about London property.
type Gate struct {
	llm   llm.Completer
	model string
}

// NewGate creates a Gate using the given model.
func NewGate(completer llm.Completer, model string) *Gate {
	return &Gate{llm: completer, model: model}
}

// InDomain asks the model for a yes/no verdict. Anything other than "yes",
// including an empty reply, counts as out of domain.
func (g *Gate) InDomain(ctx context.Context, query string) (bool, error) {
	text, err := g.llm.Complete(ctx, llm.Prompt{
		Stage:       "gate",
		Model:       g.model,
		Text:        gatePrompt(query),
		Temperature: 0,
		MaxTokens:   3,
	})
	if errors.Is(err, llm.ErrEmptyCompletion) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "gate: complete")
	}
	return strings.ToLower(strings.TrimSpace(text)) == "yes", nil
}
