package chart

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

// ErrNoFigure is returned when the generated artifact does not bind a chart
// under the "fig" key.
var ErrNoFigure = eris.New("no figure was created")

// Marks and aggregations accepted in a chart specification.
var (
	Marks        = []string{"bar", "line", "scatter", "histogram", "box", "pie", "area"}
	Aggregations = []string{"none", "sum", "mean", "count", "min", "max"}
)

// Spec is the declarative chart the model produces.
type Spec struct {
	Fig *FigSpec `json:"fig"`
}

// FigSpec binds a mark to dataset columns.
type FigSpec struct {
	Mark   string `json:"mark"`
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Color  string `json:"color,omitempty"`
	Agg    string `json:"agg,omitempty"`
	Title  string `json:"title,omitempty"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`
}

var specSchema = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["fig"],
  "properties": {
    "fig": {
      "type": "object",
      "required": ["mark"],
      "additionalProperties": false,
      "properties": {
        "mark":    {"enum": ["bar", "line", "scatter", "histogram", "box", "pie", "area"]},
        "x":       {"type": "string", "minLength": 1},
        "y":       {"type": "string", "minLength": 1},
        "color":   {"type": "string"},
        "agg":     {"enum": ["none", "sum", "mean", "count", "min", "max"]},
        "title":   {"type": "string"},
        "x_label": {"type": "string"},
        "y_label": {"type": "string"}
      }
    }
  }
}`)

// ParseSpec decodes and validates a chart specification.
func ParseSpec(code string) (*Spec, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(code), &doc); err != nil {
		return nil, eris.Wrap(err, "chart: decode spec")
	}
	if fig, ok := doc["fig"]; !ok || fig == nil {
		return nil, ErrNoFigure
	}

	result, err := gojsonschema.Validate(specSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, eris.Wrap(err, "chart: validate spec")
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, eris.Errorf("chart: invalid spec: %s", strings.Join(errs, "; "))
	}

	var s Spec
	if err := json.Unmarshal([]byte(code), &s); err != nil {
		return nil, eris.Wrap(err, "chart: decode spec")
	}
	if s.Fig.Agg == "" {
		s.Fig.Agg = "none"
	}
	return &s, nil
}
