package choropleth

import (
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// DefaultSteps is the number of swatches in a legend
const DefaultSteps = 5

// Swatch is one legend entry
type Swatch struct {
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
	Color string  `json:"color" yaml:"color"`
}

// Legend describes the color buckets of one panel
type Legend struct {
	Title    string   `json:"title" yaml:"title"`
	Carrier  string   `json:"carrier" yaml:"carrier"`
	Field    string   `json:"field" yaml:"field"`
	Range    *Range   `json:"range,omitempty" yaml:"range,omitempty"`
	Swatches []Swatch `json:"swatches" yaml:"swatches"`
	NoData   bool     `json:"noData" yaml:"noData"`
}

// NoDataLegend is the placeholder shown when a panel has nothing to color
func NoDataLegend(carrier, field string) Legend {
	return Legend{
		Title:    "No data available",
		Carrier:  carrier,
		Field:    field,
		Swatches: []Swatch{},
		NoData:   true,
	}
}

// BuildLegend emits steps evenly spaced swatches between the min and max of field
// over the matching features, using the same ramp as the style resolver.
func BuildLegend(features []*geojson.Feature, carrier, field string, steps int) Legend {
	if steps <= 0 {
		steps = DefaultSteps
	}
	r, ok := ValueRange(features, carrier, field)
	if !ok {
		return NoDataLegend(carrier, field)
	}

	decimals := 3
	if r.Max/2-r.Min/2 < 0.005 {
		decimals = 4
	}
	gradient := GradientFor(carrier)
	swatches := make([]Swatch, 0, steps)
	for i := 0; i < steps; i++ {
		value := r.Min
		if steps > 1 {
			f := float64(i) / float64(steps-1)
			value = r.Min*(1-f) + r.Max*f
			if i == steps-1 {
				value = r.Max
			}
		}
		swatches = append(swatches, Swatch{
			Value: value,
			Label: strconv.FormatFloat(value, 'f', decimals, 64),
			Color: gradient.scale(value, r).Hex(),
		})
	}

	return Legend{
		Title:    "Legend - " + carrier,
		Carrier:  carrier,
		Field:    field,
		Range:    &r,
		Swatches: swatches,
	}
}
