package model

import (
	"github.com/rotisserie/eris"
)

// Intent is the output shape a query asks for.
type Intent string

const (
	// IntentOutput asks for raw rows or summary figures.
	IntentOutput Intent = "output"
	// IntentPlotStats asks for a statistical chart.
	IntentPlotStats Intent = "plot_stats"
	// IntentGeospatialPlot asks for listings on a map.
	IntentGeospatialPlot Intent = "geospatial_plot"
)

// ErrUnknownIntent is returned by ParseIntent for labels outside the enum.
var ErrUnknownIntent = eris.New("unknown intent")

// AllIntents returns the closed set of intents in prompt order.
func AllIntents() []Intent {
	return []Intent{IntentOutput, IntentPlotStats, IntentGeospatialPlot}
}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentOutput, IntentPlotStats, IntentGeospatialPlot:
		return true
	default:
		return false
	}
}

// ParseIntent converts a normalized classifier label into an Intent.
func ParseIntent(label string) (Intent, error) {
	i := Intent(label)
	if !i.Valid() {
		return "", eris.Wrapf(ErrUnknownIntent, "label %q", label)
	}
	return i, nil
}
