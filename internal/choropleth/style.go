package choropleth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

const (
	// CarrierProperty is the attribute holding a feature's category
	CarrierProperty = "carrier"

	noDataFill  = "rgba(200, 200, 200, 0.5)"
	fillOpacity = 0.7
	strokeColor = "#000000"
	strokeWidth = 0.1
)

// Style is the resolved paint for one visible feature
type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	NoData      bool    `json:"noData"`
}

// Range is the min/max of a value field over the loaded matching features
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Matches reports whether f belongs to carrier
func Matches(f *geojson.Feature, carrier string) bool {
	if f == nil || f.Properties == nil {
		return false
	}
	c, ok := f.Properties[CarrierProperty].(string)
	return ok && c == carrier
}

// Value reads a finite numeric attribute; numeric strings are accepted
func Value(f *geojson.Feature, field string) (float64, bool) {
	if f == nil || f.Properties == nil {
		return 0, false
	}
	var v float64
	switch raw := f.Properties[field].(type) {
	case float64:
		v = raw
	case float32:
		v = float64(raw)
	case int:
		v = float64(raw)
	case int64:
		v = float64(raw)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ValueRange computes the range of field over features of carrier.
// ok is false when no matching feature carries a finite value.
func ValueRange(features []*geojson.Feature, carrier, field string) (r Range, ok bool) {
	for _, f := range features {
		if !Matches(f, carrier) {
			continue
		}
		v, valid := Value(f, field)
		if !valid {
			continue
		}
		if !ok {
			r = Range{Min: v, Max: v}
			ok = true
			continue
		}
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	return r, ok
}

// StyleFor resolves the paint of feature against the current feature set.
// A nil result means the feature is not drawn.
func StyleFor(features []*geojson.Feature, feature *geojson.Feature, carrier, field string) *Style {
	if !Matches(feature, carrier) {
		return nil
	}
	r, ok := ValueRange(features, carrier, field)
	return resolve(feature, carrier, field, r, ok)
}

func resolve(feature *geojson.Feature, carrier, field string, r Range, hasRange bool) *Style {
	v, ok := Value(feature, field)
	if !ok || !hasRange {
		return &Style{Fill: noDataFill, Stroke: strokeColor, StrokeWidth: strokeWidth, NoData: true}
	}
	red, green, blue := GradientFor(carrier).scale(v, r).RGB255()
	return &Style{
		Fill:        fmt.Sprintf("rgba(%d, %d, %d, %g)", red, green, blue, fillOpacity),
		Stroke:      strokeColor,
		StrokeWidth: strokeWidth,
	}
}

// Apply returns a new collection holding only the visible features of fc,
// each annotated with its resolved style properties.
func Apply(fc *geojson.FeatureCollection, carrier, field string) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	r, hasRange := ValueRange(fc.Features, carrier, field)
	for _, f := range fc.Features {
		if !Matches(f, carrier) {
			continue
		}
		style := resolve(f, carrier, field, r, hasRange)
		styled := geojson.NewFeature(f.Geometry)
		styled.ID = f.ID
		styled.Properties = f.Properties.Clone()
		styled.Properties["fill"] = style.Fill
		styled.Properties["stroke"] = style.Stroke
		styled.Properties["stroke-width"] = style.StrokeWidth
		styled.Properties["no_data"] = style.NoData
		out.Append(styled)
	}
	return out
}
