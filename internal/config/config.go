package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding the config file. These match the
// provider's conventional variable names so the tool works without any
// config file at all.
const (
	EnvAPIKey = "PINGDOM_API_KEY"
	EnvAPIURL = "PINGDOM_API_URL"
)

const defaultBaseURL = "https://api.pingdom.com/api/3.1"

// Duration is a time.Duration that unmarshals from a YAML string like "200ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// ProviderConfig holds provider API settings.
type ProviderConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"api_key"`
	Timeout Duration `yaml:"timeout"`
}

// ReportConfig holds pipeline tuning.
type ReportConfig struct {
	Concurrency  int      `yaml:"concurrency"`
	PaceInterval Duration `yaml:"pace_interval"`
}

// StorageConfig holds run history settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// Config is the root application configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Report   ReportConfig   `yaml:"report"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
}

// Load reads the config file at path if it exists, applies defaults and
// environment overrides, and validates the result. A missing file is not an
// error: the environment alone can supply the credentials.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults and environment.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	// Apply defaults.
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = defaultBaseURL
	}
	if cfg.Provider.Timeout.Duration == 0 {
		cfg.Provider.Timeout = Duration{30 * time.Second}
	}
	if cfg.Report.Concurrency == 0 {
		cfg.Report.Concurrency = 10
	}
	if cfg.Report.PaceInterval.Duration == 0 {
		cfg.Report.PaceInterval = Duration{200 * time.Millisecond}
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "upreport.db"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	// Environment overrides the file.
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.Provider.BaseURL = v
	}

	if cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required (set provider.api_key or %s)", EnvAPIKey)
	}
	if cfg.Report.Concurrency < 1 {
		return nil, fmt.Errorf("report concurrency must be at least 1, got %d", cfg.Report.Concurrency)
	}
	if cfg.Report.PaceInterval.Duration < 0 {
		return nil, fmt.Errorf("report pace interval must not be negative, got %s", cfg.Report.PaceInterval.Duration)
	}

	return cfg, nil
}
