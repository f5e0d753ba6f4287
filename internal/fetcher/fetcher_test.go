package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-98.1, 39.2]}, "properties": {"carrier": "solar", "cf": 0.21}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-97.0, 38.0]}, "properties": {"carrier": "solar", "cf": 0.18}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-90.0, 35.5]}, "properties": {"carrier": "onwind", "cf": 0.41}}
  ]
}`

func TestFetchFeatures(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geoserver/wfs", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(featureCollection))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/geoserver/", "PyPSAEarthDashboard", srv.URL, "United States", 5*time.Second)
	fc, err := client.FetchFeatures(context.Background(), scenario.Scenario{MapID: "map1", Carrier: "solar", Variable: "cf", Year: "2050"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, []string{"PyPSAEarthDashboard:geojson_generators_combined_data_US_2050"}, gotQuery["typeName"])
	assert.Equal(t, []string{"GetFeature"}, gotQuery["request"])

	counts := CarrierCounts(fc)
	assert.Equal(t, []CarrierCount{{"solar", 2}, {"onwind", 1}}, counts)
}

func TestFetchFeaturesErrors(t *testing.T) {
	var testCases = []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not found", http.StatusNotFound, "no such layer"},
		{"malformed", http.StatusOK, "{not json"},
	}

	for _, tc := range testCases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		client := NewClient(srv.URL, "ws", srv.URL, "United States", time.Second)
		_, err := client.FetchFeatures(context.Background(), scenario.Scenario{Year: "2021"})
		assert.Error(t, err, tc.name)
		srv.Close()
	}

	client := NewClient("http://127.0.0.1:1", "ws", "", "Narnia", time.Second)
	_, err := client.FetchFeatures(context.Background(), scenario.Scenario{Year: "2021"})
	assert.Error(t, err)
}

func TestFetchEconomicData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/economic-data/United States/2021/", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"Capital Expenditure": 100.5, "Operational Expenditure": 20, "Installed Capacity": 50, "Optimal Capacity": 75, "carrier": "solar"},
			{"Capital Expenditure": 10, "Operational Expenditure": null, "Installed Capacity": 5, "Optimal Capacity": 0}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "ws", srv.URL, "United States", time.Second)
	records, err := client.FetchEconomicData(context.Background(), "United States", "2021")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 120.5, records[0].TotalCost())
	assert.Equal(t, 75.0, records[0].OptimalCapacity)
	assert.Equal(t, 10.0, records[1].TotalCost())
}

func TestFetchEconomicDataEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "ws", srv.URL, "United States", time.Second)
	records, err := client.FetchEconomicData(context.Background(), "United States", "2050")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
