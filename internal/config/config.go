package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). Every field has a
// working default so an empty file yields a runnable local setup; the
// Supabase section is only required when a project URL is set.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Refresh  RefreshConfig  `yaml:"refresh"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// SupabaseConfig points at the Supabase project backing the product
// catalog and price ledger. APIKey should be the service-role key; prefer
// supplying it via SUPABASE_SERVICE_ROLE_KEY instead of the file.
type SupabaseConfig struct {
	ProjectURL     string `yaml:"project_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type PricingConfig struct {
	// Workers bounds per-cycle store concurrency.
	Workers int `yaml:"workers"`
	// ReferenceURL overrides the CoinGecko base URL (tests, mirrors).
	ReferenceURL string `yaml:"reference_url"`
	// ReferenceTimeoutSeconds caps the reference-price lookup; on expiry
	// the engine falls back rather than hang.
	ReferenceTimeoutSeconds int `yaml:"reference_timeout_seconds"`
}

// RefreshConfig drives the refresher daemon: how often to trigger a
// pricing cycle against APIURL.
type RefreshConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	APIURL          string `yaml:"api_url"`
}

// Defaults applied by Load.
const (
	DefaultPort                 = "8080"
	DefaultWorkers              = 8
	DefaultSupabaseTimeoutSecs  = 15
	DefaultReferenceTimeoutSecs = 10
	DefaultRefreshIntervalSecs  = 60

	// The refresh interval must land in the documented 30s-5min window.
	MinRefreshIntervalSecs = 30
	MaxRefreshIntervalSecs = 300
)

// Load reads, defaults, and validates a config file. An empty path yields
// a defaulted config without touching the filesystem.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, err
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Supabase.TimeoutSeconds == 0 {
		c.Supabase.TimeoutSeconds = DefaultSupabaseTimeoutSecs
	}
	if c.Pricing.Workers == 0 {
		c.Pricing.Workers = DefaultWorkers
	}
	if c.Pricing.ReferenceTimeoutSeconds == 0 {
		c.Pricing.ReferenceTimeoutSeconds = DefaultReferenceTimeoutSecs
	}
	if c.Refresh.IntervalSeconds == 0 {
		c.Refresh.IntervalSeconds = DefaultRefreshIntervalSecs
	}
	if c.Refresh.APIURL == "" {
		c.Refresh.APIURL = "http://localhost:" + c.Server.Port
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Supabase.ProjectURL != "" && c.Supabase.APIKey == "" {
		return errors.New("supabase.api_key is required when supabase.project_url is set")
	}
	if c.Pricing.Workers < 0 {
		return errors.New("pricing.workers must not be negative")
	}
	if c.Pricing.ReferenceTimeoutSeconds < 0 {
		return errors.New("pricing.reference_timeout_seconds must not be negative")
	}
	if c.Refresh.IntervalSeconds < MinRefreshIntervalSecs || c.Refresh.IntervalSeconds > MaxRefreshIntervalSecs {
		return fmt.Errorf("refresh.interval_seconds must be between %d and %d",
			MinRefreshIntervalSecs, MaxRefreshIntervalSecs)
	}
	return nil
}

func (c *Config) SupabaseTimeout() time.Duration {
	return time.Duration(c.Supabase.TimeoutSeconds) * time.Second
}

func (c *Config) ReferenceTimeout() time.Duration {
	return time.Duration(c.Pricing.ReferenceTimeoutSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}
