package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "PyPSAEarthDashboard", cfg.Workspace)
	assert.Equal(t, "United States", cfg.Country)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.Sync)
	assert.Equal(t, 5, cfg.LegendSteps)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("geoserver_url: http://geo.example/geoserver\nfetch_timeout: 3s\nsync: false\ncountry: Colombia\n"), 0644))
	t.Setenv("DASHBOARD_WORKSPACE", "energy")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen", ":8080", "")
	require.NoError(t, flags.Parse([]string{"--listen", ":9090"}))

	cfg, err := Load(New(), path, flags)
	require.NoError(t, err)
	assert.Equal(t, "http://geo.example/geoserver", cfg.GeoServerURL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.Sync)
	assert.Equal(t, "Colombia", cfg.Country)
	assert.Equal(t, "energy", cfg.Workspace)
	assert.Equal(t, ":9090", cfg.Listen)
}

func TestLoadInvalid(t *testing.T) {
	v := New()
	v.Set("legend_steps", 1)
	_, err := Load(v, "", nil)
	assert.Error(t, err)

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
