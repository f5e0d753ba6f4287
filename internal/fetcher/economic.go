package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// EconomicRecord is one generator row of the scenario statistics table
type EconomicRecord struct {
	CapitalExpenditure     float64 `json:"Capital Expenditure"`
	OperationalExpenditure float64 `json:"Operational Expenditure"`
	InstalledCapacity      float64 `json:"Installed Capacity"`
	OptimalCapacity        float64 `json:"Optimal Capacity"`
}

// TotalCost is capital plus operational expenditure
func (r EconomicRecord) TotalCost() float64 {
	return r.CapitalExpenditure + r.OperationalExpenditure
}

// EconomicDataURL builds the statistics request for a country and scenario year
func (c *Client) EconomicDataURL(country, year string) string {
	return fmt.Sprintf("%s/api/economic-data/%s/%s/", c.EconomicURL, url.PathEscape(country), url.PathEscape(year))
}

// FetchEconomicData retrieves the ordered statistics rows for a scenario year
func (c *Client) FetchEconomicData(ctx context.Context, country, year string) ([]EconomicRecord, error) {
	body, err := c.get(ctx, c.EconomicDataURL(country, year), "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch economic data: %w", err)
	}

	var records []EconomicRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to parse economic data: %w", err)
	}
	if records == nil {
		records = []EconomicRecord{}
	}
	return records, nil
}
