// Package llm exposes single-shot text completion to the pipeline stages.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-assistant/internal/metrics"
	"github.com/sells-group/listing-assistant/internal/resilience"
	"github.com/sells-group/listing-assistant/pkg/anthropic"
)

// Prompt is one completion request.
type Prompt struct {
	// Stage labels the call in logs and metrics (gate, classify, chart, sql).
	Stage       string
	Model       string
	System      string
	Text        string
	Temperature float64
	MaxTokens   int64
}

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ErrEmptyCompletion is returned when the model answered with no text.
var ErrEmptyCompletion = eris.New("empty completion")

// Client is the Anthropic-backed Completer.
type Client struct {
	api    anthropic.Client
	policy resilience.Policy
}

// New creates a Client. The policy's retry and breaker apply to every call.
func New(api anthropic.Client, policy resilience.Policy) *Client {
	if policy.Retry.OnRetry == nil {
		policy.Retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	}
	return &Client{api: api, policy: policy}
}

// Complete sends p and returns the concatenated text of the reply.
func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	if p.MaxTokens <= 0 {
		return "", eris.Errorf("llm: %s: max tokens must be positive", p.Stage)
	}

	temp := p.Temperature
	req := anthropic.MessageRequest{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		System:      p.System,
		Messages:    []anthropic.Message{{Role: "user", Content: p.Text}},
		Temperature: &temp,
	}

	start := time.Now()
	resp, err := resilience.Run(ctx, c.policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		resp, err := c.api.CreateMessage(ctx, req)
		return resp, resilience.MarkHTTP(err, anthropic.StatusCode(err))
	})
	metrics.CompletionDuration.WithLabelValues(p.Stage).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionCalls.WithLabelValues(p.Stage, metrics.OutcomeError).Inc()
		return "", eris.Wrapf(err, "llm: %s", p.Stage)
	}
	metrics.CompletionCalls.WithLabelValues(p.Stage, metrics.OutcomeOK).Inc()
	resp.Usage.LogCost(p.Model, p.Stage)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		zap.L().Warn("llm: empty completion",
			zap.String("stage", p.Stage),
			zap.String("stop_reason", resp.StopReason),
		)
		return "", eris.Wrapf(ErrEmptyCompletion, "llm: %s", p.Stage)
	}
	return text, nil
}
