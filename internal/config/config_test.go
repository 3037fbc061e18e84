package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazz-dev/upreport/internal/config"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "*.yml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return f.Name()
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvAPIURL, "")
	os.Unsetenv(config.EnvAPIKey)
	os.Unsetenv(config.EnvAPIURL)
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `
provider:
  base_url: "https://pingdom.example.com/api/3.1"
  api_key: "abc123"
  timeout: "10s"
report:
  concurrency: 5
  pace_interval: "100ms"
storage:
  path: "/tmp/reports.db"
server:
  address: ":9090"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider.BaseURL != "https://pingdom.example.com/api/3.1" {
		t.Errorf("BaseURL = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.APIKey != "abc123" {
		t.Errorf("APIKey = %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Timeout.Duration != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Provider.Timeout.Duration)
	}
	if cfg.Report.Concurrency != 5 {
		t.Errorf("Concurrency = %d", cfg.Report.Concurrency)
	}
	if cfg.Report.PaceInterval.Duration != 100*time.Millisecond {
		t.Errorf("PaceInterval = %v", cfg.Report.PaceInterval.Duration)
	}
	if cfg.Storage.Path != "/tmp/reports.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `
provider:
  api_key: "abc123"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(cfg.Provider.BaseURL, "pingdom.com") {
		t.Errorf("BaseURL default = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout default = %v", cfg.Provider.Timeout.Duration)
	}
	if cfg.Report.Concurrency != 10 {
		t.Errorf("Concurrency default = %d", cfg.Report.Concurrency)
	}
	if cfg.Report.PaceInterval.Duration != 200*time.Millisecond {
		t.Errorf("PaceInterval default = %v", cfg.Report.PaceInterval.Duration)
	}
	if cfg.Storage.Path != "upreport.db" {
		t.Errorf("Storage.Path default = %q", cfg.Storage.Path)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("Server.Address default = %q", cfg.Server.Address)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTemp(t, `
provider:
  base_url: "https://file.example.com"
  api_key: "from-file"
`)

	t.Setenv(config.EnvAPIKey, "from-env")
	t.Setenv(config.EnvAPIURL, "https://env.example.com")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env value", cfg.Provider.APIKey)
	}
	if cfg.Provider.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, want env value", cfg.Provider.BaseURL)
	}
}

func TestLoad_MissingFileEnvOnly(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "env-key")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Errorf("APIKey = %q", cfg.Provider.APIKey)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("expected error when API key is missing everywhere")
	}
	if !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error should mention %s: %v", config.EnvAPIKey, err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "provider: [broken")
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_InvalidPaceInterval(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `
provider:
  api_key: "abc123"
report:
  pace_interval: "soon"
`)
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoad_NegativeConcurrency(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `
provider:
  api_key: "abc123"
report:
  concurrency: -3
`)
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for negative concurrency")
	}
}
