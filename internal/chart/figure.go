package chart

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-assistant/internal/model"
)

// Figure is a chart bound to data, ready for a front end to draw.
type Figure struct {
	Mark   string  `json:"mark"`
	Title  string  `json:"title,omitempty"`
	XLabel string  `json:"x_label,omitempty"`
	YLabel string  `json:"y_label,omitempty"`
	Traces []Trace `json:"traces"`
}

// Trace is one series. Histograms carry X only.
type Trace struct {
	Name string `json:"name,omitempty"`
	X    []any  `json:"x,omitempty"`
	Y    []any  `json:"y,omitempty"`
}

// JSON encodes the figure.
func (f *Figure) JSON() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", eris.Wrap(err, "chart: encode figure")
	}
	return string(b), nil
}

// Execute binds the specification in code to the full records. No code is
// run: the specification is data.
func Execute(code string, records []model.Record) (*Figure, error) {
	spec, err := ParseSpec(code)
	if err != nil {
		return nil, err
	}
	fig := spec.Fig

	if err := requireColumns(fig, records); err != nil {
		return nil, err
	}

	out := &Figure{
		Mark:   fig.Mark,
		Title:  fig.Title,
		XLabel: labelOr(fig.XLabel, fig.X),
		YLabel: labelOr(fig.YLabel, fig.Y),
	}
	switch fig.Mark {
	case "histogram":
		out.Traces = histogramTraces(fig, records)
	default:
		out.Traces = xyTraces(fig, records)
	}
	return out, nil
}

func requireColumns(fig *FigSpec, records []model.Record) error {
	known := make(map[string]bool)
	for _, c := range model.ColumnsOf(records) {
		known[c] = true
	}

	needX, needY := true, fig.Agg != "count"
	switch fig.Mark {
	case "histogram":
		needY = false
	case "box":
		needX = false
		needY = true
	}
	if needX && fig.X == "" {
		return eris.Errorf("chart: %s needs an x column", fig.Mark)
	}
	if needY && fig.Y == "" {
		return eris.Errorf("chart: %s needs a y column", fig.Mark)
	}
	for _, c := range []string{fig.X, fig.Y, fig.Color} {
		if c != "" && !known[c] {
			return eris.Errorf("chart: unknown column %q", c)
		}
	}
	return nil
}

func labelOr(label, col string) string {
	if label != "" {
		return label
	}
	return col
}

// series splits records by the color column, keeping first-seen order.
func series(fig *FigSpec, records []model.Record) ([]string, map[string][]model.Record) {
	groups := make(map[string][]model.Record)
	var names []string
	for _, r := range records {
		name := ""
		if fig.Color != "" {
			v, _ := r.Get(fig.Color)
			name = fmt.Sprint(v)
		}
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], r)
	}
	return names, groups
}

func histogramTraces(fig *FigSpec, records []model.Record) []Trace {
	names, groups := series(fig, records)
	traces := make([]Trace, 0, len(names))
	for _, name := range names {
		t := Trace{Name: name, X: []any{}}
		for _, r := range groups[name] {
			if v, ok := r.Get(fig.X); ok && v != nil {
				t.X = append(t.X, v)
			}
		}
		traces = append(traces, t)
	}
	return traces
}

func xyTraces(fig *FigSpec, records []model.Record) []Trace {
	names, groups := series(fig, records)
	traces := make([]Trace, 0, len(names))
	for _, name := range names {
		rows := groups[name]
		if fig.Agg == "none" {
			t := Trace{Name: name, Y: []any{}}
			for _, r := range rows {
				if fig.X != "" {
					x, _ := r.Get(fig.X)
					t.X = append(t.X, x)
				}
				y, _ := r.Get(fig.Y)
				t.Y = append(t.Y, y)
			}
			traces = append(traces, t)
			continue
		}
		traces = append(traces, aggregate(fig, name, rows))
	}
	return traces
}

// aggregate reduces y per distinct x, in first-seen x order. Non-numeric y
// values are ignored except by count.
func aggregate(fig *FigSpec, name string, rows []model.Record) Trace {
	type bucket struct {
		x    any
		vals []float64
		n    int
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, r := range rows {
		x, _ := r.Get(fig.X)
		key := fmt.Sprint(x)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{x: x}
			buckets[key] = b
			order = append(order, key)
		}
		b.n++
		if fig.Y == "" {
			continue
		}
		y, _ := r.Get(fig.Y)
		if f, ok := toFloat(y); ok {
			b.vals = append(b.vals, f)
		}
	}

	t := Trace{Name: name, X: make([]any, 0, len(order)), Y: make([]any, 0, len(order))}
	for _, key := range order {
		b := buckets[key]
		t.X = append(t.X, b.x)
		t.Y = append(t.Y, reduce(fig.Agg, b.vals, b.n))
	}
	return t
}

func reduce(agg string, vals []float64, n int) any {
	if agg == "count" {
		return n
	}
	if len(vals) == 0 {
		return nil
	}
	switch agg {
	case "sum", "mean":
		var s float64
		for _, v := range vals {
			s += v
		}
		if agg == "mean" {
			return s / float64(len(vals))
		}
		return s
	case "min":
		m := math.Inf(1)
		for _, v := range vals {
			m = math.Min(m, v)
		}
		return m
	case "max":
		m := math.Inf(-1)
		for _, v := range vals {
			m = math.Max(m, v)
		}
		return m
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
