package anthropic

import "go.uber.org/zap"

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// model → {input $/MTok, output $/MTok}
var modelPricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {1.00, 5.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
	"claude-opus-4-6":            {15.00, 75.00},
}

// EstimateCost returns the USD cost of the usage, or 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	in := float64(u.InputTokens) * pricing[0]
	out := float64(u.OutputTokens) * pricing[1]
	cacheWrite := float64(u.CacheCreationInputTokens) * pricing[0] * 1.25
	cacheRead := float64(u.CacheReadInputTokens) * pricing[0] * 0.1
	return (in + out + cacheWrite + cacheRead) / 1e6
}

// LogCost logs token usage and estimated cost for one pipeline stage.
func (u TokenUsage) LogCost(model, stage string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("stage", stage),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}
