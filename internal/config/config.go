// Package config loads dashboard settings from defaults, an optional YAML
// file, DASHBOARD_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var keys = []string{"listen", "geoserver_url", "workspace", "economic_url", "country", "fetch_timeout", "sync", "legend_steps"}

// Config holds the dashboard settings
type Config struct {
	Listen       string        `mapstructure:"listen"`
	GeoServerURL string        `mapstructure:"geoserver_url"`
	Workspace    string        `mapstructure:"workspace"`
	EconomicURL  string        `mapstructure:"economic_url"`
	Country      string        `mapstructure:"country"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	Sync         bool          `mapstructure:"sync"`
	LegendSteps  int           `mapstructure:"legend_steps"`
}

// New returns a viper instance populated with defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("listen", ":8080")
	v.SetDefault("geoserver_url", "http://localhost:8081/geoserver")
	v.SetDefault("workspace", "PyPSAEarthDashboard")
	v.SetDefault("economic_url", "http://localhost:8000")
	v.SetDefault("country", "United States")
	v.SetDefault("fetch_timeout", 15*time.Second)
	v.SetDefault("sync", true)
	v.SetDefault("legend_steps", 5)

	v.SetEnvPrefix("dashboard")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file, binds flags and decodes the result
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}
	if flags != nil {
		for _, key := range keys {
			f := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded settings
func (c *Config) Validate() error {
	if c.GeoServerURL == "" {
		return errors.New("geoserver_url is required")
	}
	if c.Workspace == "" {
		return errors.New("workspace is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.LegendSteps < 2 {
		return fmt.Errorf("legend_steps must be at least 2, got %d", c.LegendSteps)
	}
	return nil
}
