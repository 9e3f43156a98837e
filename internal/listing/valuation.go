package listing

import (
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/listing-assistant/internal/model"
)

// Jitter bounds applied to a parsed rent to produce the expected rent.
const (
	JitterMin = 0.85
	JitterMax = 1.15
)

var pricePattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

// ParsePrice reads the first number in a display price such as "£2,362 pcm".
// It returns nil when there is none ("POA", "").
func ParsePrice(s string) *float64 {
	m := pricePattern.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Valuations derives the compact pricing view for each record. rng supplies
// the expected-rent jitter; pass a seeded source for reproducible output.
func Valuations(records []model.PropertyRecord, rng *rand.Rand) []model.Valuation {
	out := make([]model.Valuation, 0, len(records))
	for _, r := range records {
		v := model.Valuation{
			Bedrooms:       r.Bedrooms,
			DisplayAddress: r.Address.DisplayAddress,
			URL:            r.URL,
		}
		if r.Prices.PrimaryPrice != nil {
			v.Rent = ParsePrice(*r.Prices.PrimaryPrice)
		}
		if v.Rent != nil {
			factor := JitterMin + rng.Float64()*(JitterMax-JitterMin)
			expected := math.Round(*v.Rent*factor*100) / 100
			v.ExpectedRent = &expected
		}
		out = append(out, v)
	}
	return out
}
