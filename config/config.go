package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/logging"
)

// Config holds all casemap configuration.
type Config struct {
	// ListTitle scopes every store query to one list.
	ListTitle string `yaml:"list_title"`

	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Charts  ChartsConfig  `yaml:"charts"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig selects the store backend.
type StorageConfig struct {
	Kind string `yaml:"kind"` // sqlite, postgres
	DSN  string `yaml:"dsn"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit is the sustained requests per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
	Timeout   string  `yaml:"timeout"`
}

// ChartsConfig tunes the dashboard widgets.
type ChartsConfig struct {
	PieTopN       int         `yaml:"pie_top_n"`
	CountryTopN   int         `yaml:"country_top_n"`
	MaturityOrder []string    `yaml:"maturity_order"`
	MinLabelShare float64     `yaml:"min_label_share"`
	CountryScale  ScaleConfig `yaml:"country_scale"`
	MaturityScale ScaleConfig `yaml:"maturity_scale"`
}

// ScaleConfig holds colour anchors as hex strings.
type ScaleConfig struct {
	Low  string `yaml:"low"`
	High string `yaml:"high"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// StorageKinds lists the supported store backends.
var StorageKinds = []string{"sqlite", "postgres"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	chart := aggregate.DefaultOptions()
	return &Config{
		ListTitle: "UseCases",
		Storage: StorageConfig{
			Kind: "sqlite",
			DSN:  "data/casemap.db",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 20,
			Burst:     40,
			Timeout:   "30s",
		},
		Charts: ChartsConfig{
			PieTopN:       chart.PieTopN,
			CountryTopN:   chart.CountryTopN,
			MaturityOrder: chart.MaturityOrder,
			MinLabelShare: chart.MinLabelShare,
			CountryScale:  ScaleConfig{Low: chart.CountryScale.Low.Hex(), High: chart.CountryScale.High.Hex()},
			MaturityScale: ScaleConfig{Low: chart.MaturityScale.Low.Hex(), High: chart.MaturityScale.High.Hex()},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// SP_LIST_TITLE is what the list functions were deployed with.
	if v := os.Getenv("SP_LIST_TITLE"); v != "" {
		c.ListTitle = v
	}
	if v := os.Getenv("CASEMAP_LIST_TITLE"); v != "" {
		c.ListTitle = v
	}
	if v := os.Getenv("CASEMAP_STORAGE_KIND"); v != "" {
		c.Storage.Kind = v
	}
	if v := os.Getenv("CASEMAP_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("CASEMAP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CASEMAP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListTitle) == "" {
		return fmt.Errorf("list title not configured (set list_title or CASEMAP_LIST_TITLE)")
	}

	valid := false
	for _, k := range StorageKinds {
		if c.Storage.Kind == k {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid storage kind: %s (valid: %v)", c.Storage.Kind, StorageKinds)
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage dsn not configured")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %v", c.Server.RateLimit)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// GetServerTimeout returns the per-request timeout as a duration.
func (c *Config) GetServerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ChartOptions converts the chart section into engine options. Unreadable
// colour anchors fall back to the defaults with a warning.
func (c *Config) ChartOptions() aggregate.Options {
	opts := aggregate.DefaultOptions()
	opts.PieTopN = c.Charts.PieTopN
	opts.CountryTopN = c.Charts.CountryTopN
	opts.MinLabelShare = c.Charts.MinLabelShare
	if len(c.Charts.MaturityOrder) > 0 {
		opts.MaturityOrder = append([]string(nil), c.Charts.MaturityOrder...)
	}
	opts.CountryScale = scale("country_scale", c.Charts.CountryScale, opts.CountryScale)
	opts.MaturityScale = scale("maturity_scale", c.Charts.MaturityScale, opts.MaturityScale)
	return opts
}

func scale(name string, sc ScaleConfig, def aggregate.Scale) aggregate.Scale {
	out := def
	if sc.Low != "" {
		if low, err := aggregate.ParseHex(sc.Low); err == nil {
			out.Low = low
		} else {
			logging.Warn("invalid colour anchor, using default", "scale", name, "anchor", "low", "err", err)
		}
	}
	if sc.High != "" {
		if high, err := aggregate.ParseHex(sc.High); err == nil {
			out.High = high
		} else {
			logging.Warn("invalid colour anchor, using default", "scale", name, "anchor", "high", "err", err)
		}
	}
	return out
}
