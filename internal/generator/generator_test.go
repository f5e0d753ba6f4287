package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/energy-dashboard/internal/fetcher"
	"github.com/Zachdehooge/energy-dashboard/internal/panel"
	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

type staticSource struct{}

func (staticSource) FetchFeatures(ctx context.Context, s scenario.Scenario) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for i, v := range []float64{0.1, 0.3} {
		f := geojson.NewFeature(orb.Point{float64(-100 + i), 40})
		f.Properties["carrier"] = "solar"
		f.Properties["cf"] = v
		fc.Append(f)
	}
	return fc, nil
}

func newController(t *testing.T) *panel.Controller {
	t.Helper()
	c := panel.New(staticSource{}, nil, panel.Options{Sync: true})
	require.NoError(t, c.Init(context.Background(), scenario.Defaults()))
	return c
}

func TestRenderPage(t *testing.T) {
	data, err := NewPageData("Scenario Comparison", newController(t), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, data))
	html := buf.String()
	assert.Contains(t, html, `id="carrierSelector-map1"`)
	assert.Contains(t, html, `id="scenarioSelector-map2"`)
	assert.Contains(t, html, "Legend - solar")
	assert.Contains(t, html, "0.100")
	assert.Contains(t, html, "sync-control sync-enabled")
	assert.Contains(t, html, "/api/panels/map1/charts")
	assert.Nil(t, data.Features)
}

func TestWriteSnapshot(t *testing.T) {
	c := newController(t)
	data, err := NewPageData("Scenario Comparison", c, true)
	require.NoError(t, err)
	require.Len(t, data.Features, 2)

	path := filepath.Join(t.TempDir(), "scenarios.html")
	require.NoError(t, WriteSnapshot(path, data))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "rgba(255, 255, 0, 0.7)")
	assert.NotContains(t, string(content), "/api/panels/map1/charts")
}

func TestStaticPageSyncsLocally(t *testing.T) {
	data, err := NewPageData("Scenario Comparison", newController(t), true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, data))
	html := buf.String()

	assert.Regexp(t, regexp.MustCompile(`let syncEnabled =\s*true\s*;`), html)
	assert.Contains(t, html, "function mirrorCamera(originId)")
	assert.Contains(t, html, "if (id !== originId) applyCamera(id, camera);")
	assert.Contains(t, html, "if (applyingRemote || !syncEnabled) return;")

	// camera listeners and the sync button are wired before the static page stops
	staticStop := strings.Index(html, "if (isStatic) return;")
	require.Positive(t, staticStop)
	for _, hook := range []string{
		"map.on('moveend'",
		"map.on('zoomend'",
		"getElementById('sync-control').addEventListener('click'",
	} {
		at := strings.Index(html, hook)
		require.Positive(t, at, hook)
		assert.Less(t, at, staticStop, hook)
	}
	assert.Contains(t, html, `data-map="map1" disabled`)
}

func TestRenderCharts(t *testing.T) {
	records := []fetcher.EconomicRecord{
		{CapitalExpenditure: 100, OperationalExpenditure: 20, InstalledCapacity: 5, OptimalCapacity: 8},
		{CapitalExpenditure: 50, OperationalExpenditure: 10, InstalledCapacity: 3, OptimalCapacity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCharts(&buf, "map1 2021", records))
	html := buf.String()
	assert.Contains(t, html, "CAPEX vs OPEX per Generator")
	assert.Contains(t, html, "Total Cost Distribution")
	assert.Contains(t, html, "Installed vs Optimal Capacity")
	assert.Contains(t, html, "Generator 2")

	pie := CostDistributionChart(records)
	require.Len(t, pie.MultiSeries, 1)

	buf.Reset()
	require.NoError(t, RenderCharts(&buf, "map2 2050", nil))
	assert.Contains(t, buf.String(), "No data available")
}
