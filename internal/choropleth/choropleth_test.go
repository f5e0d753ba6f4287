package choropleth

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feature(carrier string, field string, value interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{-98, 39})
	f.Properties["carrier"] = carrier
	if value != nil {
		f.Properties[field] = value
	}
	return f
}

func solarSet() []*geojson.Feature {
	return []*geojson.Feature{
		feature("solar", "cf", 0.0),
		feature("solar", "cf", 0.5),
		feature("solar", "cf", 1.0),
		feature("onwind", "cf", 9.0),
	}
}

func TestStyleForCategoryMismatch(t *testing.T) {
	features := solarSet()
	assert.Nil(t, StyleFor(features, features[3], "solar", "cf"))
	assert.Nil(t, StyleFor(features, nil, "solar", "cf"))
	assert.Nil(t, StyleFor(features, geojson.NewFeature(orb.Point{}), "solar", "cf"))
}

func TestStyleForInterpolates(t *testing.T) {
	features := solarSet()
	var testCases = []struct {
		feature *geojson.Feature
		fill    string
	}{
		{features[0], "rgba(255, 255, 0, 0.7)"},
		{features[1], "rgba(255, 128, 0, 0.7)"},
		{features[2], "rgba(255, 0, 0, 0.7)"},
	}
	for i, tc := range testCases {
		style := StyleFor(features, tc.feature, "solar", "cf")
		require.NotNil(t, style, i)
		assert.Equal(t, tc.fill, style.Fill, i)
		assert.False(t, style.NoData, i)
		assert.Equal(t, "#000000", style.Stroke)
		assert.Equal(t, 0.1, style.StrokeWidth)
	}
}

func TestStyleForNoData(t *testing.T) {
	features := append(solarSet(),
		feature("solar", "cf", nil),
		feature("solar", "cf", math.NaN()),
		feature("solar", "cf", math.Inf(1)),
		feature("solar", "cf", "n/a"),
	)
	for _, f := range features[4:] {
		style := StyleFor(features, f, "solar", "cf")
		require.NotNil(t, style)
		assert.True(t, style.NoData)
		assert.Equal(t, "rgba(200, 200, 200, 0.5)", style.Fill)
	}
}

func TestStyleForDefaultGradient(t *testing.T) {
	features := []*geojson.Feature{
		feature("hydro", "cf", 10.0),
		feature("hydro", "cf", "20"),
		feature("hydro", "cf", 30.0),
	}
	style := StyleFor(features, features[1], "hydro", "cf")
	require.NotNil(t, style)
	assert.Equal(t, "rgba(128, 128, 128, 0.7)", style.Fill)
}

func TestStyleForFlatRange(t *testing.T) {
	features := []*geojson.Feature{feature("onwind", "crt", 2.0), feature("onwind", "crt", 2.0)}
	style := StyleFor(features, features[0], "onwind", "crt")
	require.NotNil(t, style)
	assert.Equal(t, "rgba(0, 0, 255, 0.7)", style.Fill)
}

func TestValueRange(t *testing.T) {
	r, ok := ValueRange(solarSet(), "solar", "cf")
	require.True(t, ok)
	assert.Equal(t, Range{Min: 0, Max: 1}, r)

	_, ok = ValueRange(solarSet(), "ror", "cf")
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for _, f := range solarSet() {
		fc.Append(f)
	}
	fc.Append(feature("solar", "cf", nil))

	styled := Apply(fc, "solar", "cf")
	require.Len(t, styled.Features, 4)
	assert.Equal(t, "rgba(255, 255, 0, 0.7)", styled.Features[0].Properties["fill"])
	assert.Equal(t, true, styled.Features[3].Properties["no_data"])
	_, touched := fc.Features[0].Properties["fill"]
	assert.False(t, touched, "source collection must not be mutated")

	assert.Empty(t, Apply(nil, "solar", "cf").Features)
}

func TestBuildLegendUnitRange(t *testing.T) {
	legend := BuildLegend(solarSet(), "solar", "cf", 5)
	require.False(t, legend.NoData)
	require.Len(t, legend.Swatches, 5)

	var values []float64
	var labels []string
	for _, s := range legend.Swatches {
		values = append(values, s.Value)
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, values)
	assert.Equal(t, []string{"0.000", "0.250", "0.500", "0.750", "1.000"}, labels)
	assert.Equal(t, "#ffff00", legend.Swatches[0].Color)
	assert.Equal(t, "#ff0000", legend.Swatches[4].Color)
	assert.Equal(t, "Legend - solar", legend.Title)
}

func TestBuildLegendSmallSpan(t *testing.T) {
	features := []*geojson.Feature{feature("ror", "usdpt", 0.1), feature("ror", "usdpt", 0.105)}
	legend := BuildLegend(features, "ror", "usdpt", 0)
	require.Len(t, legend.Swatches, DefaultSteps)
	assert.Equal(t, "0.1000", legend.Swatches[0].Label)
	assert.Equal(t, "0.1050", legend.Swatches[4].Label)
}

func TestBuildLegendNoData(t *testing.T) {
	for _, features := range [][]*geojson.Feature{
		nil,
		{feature("onwind", "cf", 1.0)},
		{feature("solar", "cf", math.NaN())},
	} {
		legend := BuildLegend(features, "solar", "cf", 5)
		assert.True(t, legend.NoData)
		assert.Empty(t, legend.Swatches)
		assert.Nil(t, legend.Range)
	}
}

func TestExtremeRangeStaysFinite(t *testing.T) {
	features := []*geojson.Feature{
		feature("solar", "cf", -math.MaxFloat64),
		feature("solar", "cf", 0.0),
		feature("solar", "cf", math.MaxFloat64),
	}

	legend := BuildLegend(features, "solar", "cf", 5)
	require.Len(t, legend.Swatches, 5)
	prev := math.Inf(-1)
	for _, s := range legend.Swatches {
		assert.False(t, math.IsNaN(s.Value) || math.IsInf(s.Value, 0), "swatch %q", s.Label)
		assert.GreaterOrEqual(t, s.Value, prev)
		prev = s.Value
	}
	assert.Equal(t, -math.MaxFloat64, legend.Swatches[0].Value)
	assert.Equal(t, 0.0, legend.Swatches[2].Value)
	assert.Equal(t, math.MaxFloat64, legend.Swatches[4].Value)
	assert.Equal(t, "#ffff00", legend.Swatches[0].Color)
	assert.Equal(t, "#ff0000", legend.Swatches[4].Color)

	_, err := json.Marshal(legend)
	require.NoError(t, err)

	assert.Equal(t, "rgba(255, 255, 0, 0.7)", StyleFor(features, features[0], "solar", "cf").Fill)
	assert.Equal(t, "rgba(255, 0, 0, 0.7)", StyleFor(features, features[2], "solar", "cf").Fill)
}
