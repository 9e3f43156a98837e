// Package geomap renders result rows as a standalone Google Maps document.
package geomap

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/listing-assistant/internal/model"
)

// EmptyDocument is returned when there is nothing to plot.
const EmptyDocument = "<html><body><h1>No locations provided</h1></body></html>"

// DefaultZoom is the map's fixed zoom level.
const DefaultZoom = 13

// Marker is one plotted record. Index is the record's position in the input.
type Marker struct {
	Index int
	Lat   float64
	Lng   float64
	Popup string
}

// Renderer builds map documents.
type Renderer struct {
	apiKey  string
	printer *message.Printer
}

// New creates a Renderer using the Google Maps JavaScript API key.
func New(apiKey string) *Renderer {
	return &Renderer{
		apiKey:  apiKey,
		printer: message.NewPrinter(language.BritishEnglish),
	}
}

type page struct {
	APIKey  string
	Zoom    int
	Center  [2]float64
	Markers []markerView
}

// markerView carries the marker's JavaScript identifiers, which must not be
// escaped.
type markerView struct {
	Marker
	Var    template.JS
	Window template.JS
}

// Render returns a self-contained HTML document with one marker per record
// that has usable coordinates. The map is centred on the mean marker position.
func (r *Renderer) Render(records []model.Record) string {
	markers := r.Markers(records)
	if len(markers) == 0 {
		return EmptyDocument
	}

	flat := make([]float64, 0, 2*len(markers))
	for _, m := range markers {
		flat = append(flat, m.Lng, m.Lat)
	}
	c := xy.MultiPointCentroid(geom.NewMultiPointFlat(geom.XY, flat))

	p := page{
		APIKey:  r.apiKey,
		Zoom:    DefaultZoom,
		Center:  [2]float64{c.Y(), c.X()},
		Markers: make([]markerView, len(markers)),
	}
	for i, m := range markers {
		p.Markers[i] = markerView{
			Marker: m,
			Var:    template.JS("marker_" + strconv.Itoa(m.Index)),
			Window: template.JS("infowindow_" + strconv.Itoa(m.Index)),
		}
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, p); err != nil {
		zap.L().Error("geomap: render template", zap.Error(err))
		return EmptyDocument
	}
	return buf.String()
}

// Markers converts records to markers, skipping records without usable
// coordinates. Skipped records keep their index unused.
func (r *Renderer) Markers(records []model.Record) []Marker {
	var out []Marker
	for i, rec := range records {
		lat, okLat := coordinate(lookup(rec, "latitude", "lat"), 90)
		lng, okLng := coordinate(lookup(rec, "longitude", "lng", "lon"), 180)
		if !okLat || !okLng {
			continue
		}
		out = append(out, Marker{Index: i, Lat: lat, Lng: lng, Popup: r.popup(rec)})
	}
	return out
}

func (r *Renderer) popup(rec model.Record) string {
	var b strings.Builder
	title := "Property"
	if v := lookup(rec, "title"); v != nil {
		title = fmt.Sprint(v)
	}
	fmt.Fprintf(&b, `<div style="font-size: 16px; font-weight: bold;">%s</div>`, template.HTMLEscapeString(title))

	line := func(label, value string) {
		fmt.Fprintf(&b, `<div>%s: %s</div>`, label, template.HTMLEscapeString(value))
	}
	if v := lookup(rec, "price"); v != nil {
		line("Price", r.price(v))
	}
	if v := lookup(rec, "bedrooms"); v != nil {
		line("Bedrooms", fmt.Sprint(v))
	}
	if v := lookup(rec, "bathrooms"); v != nil {
		line("Bathrooms", fmt.Sprint(v))
	}
	if v := lookup(rec, "area"); v != nil {
		line("Area", fmt.Sprint(v))
	}
	if v := lookup(rec, "features"); v != nil {
		line("Features", Features(v))
	}
	return b.String()
}

func (r *Renderer) price(v any) string {
	f, ok := number(v)
	if !ok {
		return fmt.Sprint(v)
	}
	if f == math.Trunc(f) {
		return r.printer.Sprintf("£%d", int64(f))
	}
	return r.printer.Sprintf("£%.2f", f)
}

// Features renders a feature list. Anything that is not a list of strings is
// shown as its string representation.
func Features(v any) string {
	switch f := v.(type) {
	case string:
		return f
	case []string:
		return strings.Join(f, ", ")
	case []any:
		parts := make([]string, 0, len(f))
		for _, item := range f {
			s, ok := item.(string)
			if !ok {
				return fmt.Sprint(v)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// lookup returns the first non-nil value among names, matching columns
// case-insensitively.
func lookup(rec model.Record, names ...string) any {
	for _, name := range names {
		for _, col := range rec.Columns() {
			if strings.EqualFold(col, name) {
				if v, _ := rec.Get(col); v != nil {
					return v
				}
			}
		}
	}
	return nil
}

func coordinate(v any, limit float64) (float64, bool) {
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > limit {
		return 0, false
	}
	return f, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

var mapTemplate = template.Must(template.New("map").Parse(`<html>
<head>
    <meta charset="utf-8">
    <title>Properties Map</title>
    <style>
        body, html { height: 100%; margin: 0; padding: 0; font-family: Arial, sans-serif; }
        #map { height: 100%; width: 100%; }
    </style>
</head>
<body>
    <div id="map"></div>
    <script>
      function initMap() {
        var map = new google.maps.Map(document.getElementById('map'), {
          zoom: {{.Zoom}},
          center: { lat: {{index .Center 0}}, lng: {{index .Center 1}} }
        });
{{- range .Markers}}

        var {{.Var}} = new google.maps.Marker({
          position: { lat: {{.Lat}}, lng: {{.Lng}} },
          map: map
        });
        var {{.Window}} = new google.maps.InfoWindow({
          content: {{.Popup}}
        });
        {{.Var}}.addListener('click', function() {
          {{.Window}}.open(map, {{.Var}});
        });
{{- end}}
      }
    </script>
    <script src="https://maps.googleapis.com/maps/api/js?key={{.APIKey}}&callback=initMap" async defer></script>
</body>
</html>
`))
