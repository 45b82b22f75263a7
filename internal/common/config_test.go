package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Clients.Yahoo.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Yahoo.BaseURL default = %q", cfg.Clients.Yahoo.BaseURL)
	}
	if cfg.Cache.Disabled {
		t.Error("Cache.Disabled should default to false")
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("STOCKLENS_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_CacheDisabledEnvOverride(t *testing.T) {
	t.Setenv("STOCKLENS_CACHE_DISABLED", "true")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if !cfg.Cache.Disabled {
		t.Error("Cache.Disabled = false after env override, want true")
	}
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
environment = "production"

[server]
port = 9191

[clients.yahoo]
rate_limit = 2
timeout = "5s"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "production")
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if got := cfg.Clients.Yahoo.GetTimeout(); got != 5*time.Second {
		t.Errorf("Yahoo timeout = %v, want 5s", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Unset keys keep defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
}

func TestConfig_LoadMissingFileIsSkipped(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestYahooConfig_BadTimeoutFallsBack(t *testing.T) {
	c := YahooConfig{Timeout: "nonsense"}
	if got := c.GetTimeout(); got != 10*time.Second {
		t.Errorf("GetTimeout = %v, want 10s fallback", got)
	}
}
