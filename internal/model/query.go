package model

import (
	"encoding/json"
	"time"
)

// QueryEntry is one handled query in the query log.
type QueryEntry struct {
	ID       string `json:"id"`
	Query    string `json:"query"`
	Route    string `json:"route"`
	Intent   string `json:"intent,omitempty"`
	Envelope Kind   `json:"envelope"`
	// Payload is the encoded envelope. It is empty for pricing data, which
	// stays out of conversational history.
	Payload    json.RawMessage `json:"payload,omitempty"`
	DurationMs int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}
