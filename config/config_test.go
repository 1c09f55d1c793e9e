package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtkav/casemap/aggregate"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"SP_LIST_TITLE", "CASEMAP_LIST_TITLE", "CASEMAP_STORAGE_KIND", "CASEMAP_DSN", "CASEMAP_ADDR", "CASEMAP_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "casemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
list_title: AI Use Cases
storage:
  kind: postgres
  dsn: postgres://localhost/casemap
charts:
  pie_top_n: 5
  country_scale:
    low: "#ffffff"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AI Use Cases", cfg.ListTitle)
	assert.Equal(t, "postgres", cfg.Storage.Kind)
	assert.Equal(t, 5, cfg.Charts.PieTopN)
	assert.Equal(t, 10, cfg.Charts.CountryTopN)

	opts := cfg.ChartOptions()
	assert.Equal(t, aggregate.RGB{R: 255, G: 255, B: 255}, opts.CountryScale.Low)
	assert.Equal(t, aggregate.CountryScale.High, opts.CountryScale.High)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("charts: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("SP_LIST_TITLE is honoured", func(t *testing.T) {
		t.Setenv("SP_LIST_TITLE", "Legacy List")
		t.Setenv("CASEMAP_LIST_TITLE", "")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "Legacy List", cfg.ListTitle)
	})

	t.Run("CASEMAP_LIST_TITLE wins", func(t *testing.T) {
		t.Setenv("SP_LIST_TITLE", "Legacy List")
		t.Setenv("CASEMAP_LIST_TITLE", "New List")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "New List", cfg.ListTitle)
	})

	t.Run("storage and server", func(t *testing.T) {
		t.Setenv("CASEMAP_STORAGE_KIND", "postgres")
		t.Setenv("CASEMAP_DSN", "postgres://db/casemap")
		t.Setenv("CASEMAP_ADDR", ":9090")
		t.Setenv("CASEMAP_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "postgres", cfg.Storage.Kind)
		assert.Equal(t, "postgres://db/casemap", cfg.Storage.DSN)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank list", func(c *Config) { c.ListTitle = "  " }},
		{"unknown storage", func(c *Config) { c.Storage.Kind = "mssql" }},
		{"missing dsn", func(c *Config) { c.Storage.DSN = "" }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestChartOptionsFallsBackOnBadAnchor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Charts.MaturityScale.High = "not-a-colour"
	cfg.Charts.MaturityOrder = []string{"Production/Scale"}
	cfg.Charts.CountryTopN = -2

	opts := cfg.ChartOptions()
	assert.Equal(t, aggregate.MaturityScale, opts.MaturityScale)
	assert.Equal(t, []string{"Production/Scale"}, opts.MaturityOrder)
	assert.Equal(t, -2, opts.CountryTopN)
}

func TestServerTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "30s", cfg.GetServerTimeout().String())
	cfg.Server.Timeout = "garbage"
	assert.Equal(t, "30s", cfg.GetServerTimeout().String())
	cfg.Server.Timeout = "5s"
	assert.Equal(t, "5s", cfg.GetServerTimeout().String())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "casemap.yaml")
	cfg := DefaultConfig()
	cfg.ListTitle = "Saved"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
