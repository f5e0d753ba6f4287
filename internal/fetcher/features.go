package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

const userAgent = "energy-dashboard/1.0 (github.com/Zachdehooge/energy-dashboard)"

// Client talks to the GeoServer feature source and the economic data endpoint
type Client struct {
	BaseURL     string
	Workspace   string
	EconomicURL string
	Country     string
	HTTP        *http.Client
}

// NewClient creates a client with a bounded request timeout
func NewClient(baseURL, workspace, economicURL, country string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Workspace:   workspace,
		EconomicURL: strings.TrimRight(economicURL, "/"),
		Country:     country,
		HTTP:        &http.Client{Timeout: timeout},
	}
}

// FeatureURL builds the WFS GetFeature request for a dataset
func (c *Client) FeatureURL(dataset string) string {
	q := url.Values{}
	q.Set("service", "WFS")
	q.Set("version", "1.0.0")
	q.Set("request", "GetFeature")
	q.Set("typeName", c.Workspace+":"+dataset)
	q.Set("outputFormat", "application/json")
	return c.BaseURL + "/wfs?" + q.Encode()
}

// FetchFeatures retrieves the feature collection for the scenario year
func (c *Client) FetchFeatures(ctx context.Context, s scenario.Scenario) (*geojson.FeatureCollection, error) {
	dataset, err := scenario.DatasetName(c.Country, s.Year)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, c.FeatureURL(dataset), "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", dataset, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", dataset, err)
	}
	return fc, nil
}

// get performs a GET and returns the body of a 200 response
func (c *Client) get(ctx context.Context, target, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snip := body
		if len(snip) > 200 {
			snip = snip[:200]
		}
		return nil, fmt.Errorf("server returned HTTP %d: %s", resp.StatusCode, string(snip))
	}
	return body, nil
}

// CarrierCount is the number of features of one carrier
type CarrierCount struct {
	Carrier string
	Count   int
}

// CarrierCounts tallies features by carrier, largest first
func CarrierCounts(fc *geojson.FeatureCollection) []CarrierCount {
	if fc == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, f := range fc.Features {
		carrier, _ := f.Properties["carrier"].(string)
		if carrier == "" {
			carrier = "unknown"
		}
		counts[carrier]++
	}

	ret := make([]CarrierCount, 0, len(counts))
	for carrier, n := range counts {
		ret = append(ret, CarrierCount{Carrier: carrier, Count: n})
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Count != ret[j].Count {
			return ret[i].Count > ret[j].Count
		}
		return ret[i].Carrier < ret[j].Carrier
	})
	return ret
}
