package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidScenario is returned when a selection falls outside the known options
var ErrInvalidScenario = errors.New("invalid scenario")

// Options offered by the panel selectors
var (
	Carriers  = []string{"solar", "onwind", "offwind-ac", "offwind-dc", "ror"}
	Variables = []string{"cf", "crt", "usdpt"}
	Years     = []string{"2021", "2050"}
)

var countryCodes = map[string]string{
	"united states": "US",
	"colombia":      "CO",
	"nigeria":       "NG",
}

// Scenario identifies the dataset and value field shown on one map panel
type Scenario struct {
	MapID    string `json:"mapId"`
	Carrier  string `json:"carrier"`
	Variable string `json:"variable"`
	Year     string `json:"year"`
}

// Defaults returns the two panels shown when the comparison view opens
func Defaults() []Scenario {
	return []Scenario{
		{MapID: "map1", Carrier: "solar", Variable: "cf", Year: "2021"},
		{MapID: "map2", Carrier: "solar", Variable: "cf", Year: "2050"},
	}
}

// Validate checks the scenario against the selector options
func (s Scenario) Validate() error {
	if s.MapID == "" {
		return fmt.Errorf("%w: missing map id", ErrInvalidScenario)
	}
	if !slices.Contains(Carriers, s.Carrier) {
		return fmt.Errorf("%w: unknown carrier %q", ErrInvalidScenario, s.Carrier)
	}
	if !slices.Contains(Variables, s.Variable) {
		return fmt.Errorf("%w: unknown variable %q", ErrInvalidScenario, s.Variable)
	}
	if !slices.Contains(Years, s.Year) {
		return fmt.Errorf("%w: unknown year %q", ErrInvalidScenario, s.Year)
	}
	return nil
}

func (s Scenario) String() string {
	return fmt.Sprintf("%s[%s/%s/%s]", s.MapID, s.Carrier, s.Variable, s.Year)
}

// CountryCode maps a country name to the suffix used in dataset names
func CountryCode(country string) (string, error) {
	code, ok := countryCodes[strings.ToLower(strings.TrimSpace(country))]
	if !ok {
		return "", fmt.Errorf("country not supported: %q", country)
	}
	return code, nil
}

// DatasetName builds the feature type name holding the combined generator data for a year
func DatasetName(country, year string) (string, error) {
	code, err := CountryCode(country)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("geojson_generators_combined_data_%s_%s", code, year), nil
}
