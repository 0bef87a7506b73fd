package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", config.Server.Port)
	}
	if config.Server.Host != "localhost" {
		t.Errorf("Server.Host = %s, want localhost", config.Server.Host)
	}
	if config.Server.TrustProxy {
		t.Error("Server.TrustProxy should default to false")
	}
	if config.Research.MaxPages != 20 {
		t.Errorf("Research.MaxPages = %d, want 20", config.Research.MaxPages)
	}
	if config.Metrics.BatchSize != 50 {
		t.Errorf("Metrics.BatchSize = %d, want 50", config.Metrics.BatchSize)
	}
	if config.Metrics.MinSearchVolume != 10 {
		t.Errorf("Metrics.MinSearchVolume = %d, want 10", config.Metrics.MinSearchVolume)
	}
	if config.Metrics.MaxKeywords != 500 {
		t.Errorf("Metrics.MaxKeywords = %d, want 500", config.Metrics.MaxKeywords)
	}
	if config.RateLimit.MaxRequests != 10 {
		t.Errorf("RateLimit.MaxRequests = %d, want 10", config.RateLimit.MaxRequests)
	}
	if config.RateLimit.Window != "1h" {
		t.Errorf("RateLimit.Window = %s, want 1h", config.RateLimit.Window)
	}
	if config.AI.DefaultProvider != "claude" {
		t.Errorf("AI.DefaultProvider = %s, want claude", config.AI.DefaultProvider)
	}
	if config.IsProduction() {
		t.Error("default environment should not be production")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	baseContent := `
environment = "production"

[server]
port = 9090

[research]
max_pages = 35

[metrics]
service_url = "http://metrics.internal:5000"
`
	if err := os.WriteFile(base, []byte(baseContent), 0644); err != nil {
		t.Fatalf("failed to write base config: %v", err)
	}

	override := filepath.Join(dir, "override.toml")
	overrideContent := `
[server]
port = 9191
`
	if err := os.WriteFile(override, []byte(overrideContent), 0644); err != nil {
		t.Fatalf("failed to write override config: %v", err)
	}

	config, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles() error = %v", err)
	}

	// Later files win
	if config.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", config.Server.Port)
	}
	// Values from the first file survive when not overridden
	if config.Research.MaxPages != 35 {
		t.Errorf("Research.MaxPages = %d, want 35", config.Research.MaxPages)
	}
	if config.Metrics.ServiceURL != "http://metrics.internal:5000" {
		t.Errorf("Metrics.ServiceURL = %s, want http://metrics.internal:5000", config.Metrics.ServiceURL)
	}
	// Defaults survive for untouched sections
	if config.Metrics.BatchSize != 50 {
		t.Errorf("Metrics.BatchSize = %d, want 50", config.Metrics.BatchSize)
	}
	if !config.IsProduction() {
		t.Error("environment from file should mark config as production")
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("LoadFromFiles() expected error for missing file")
	}
}

func TestLoadFromFiles_EmptyPathSkipped(t *testing.T) {
	config, err := LoadFromFiles("")
	if err != nil {
		t.Fatalf("LoadFromFiles() error = %v", err)
	}
	if config.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", config.Server.Port)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("INDAGO_SERVER_PORT", "7070")
	t.Setenv("INDAGO_SERVER_TRUST_PROXY", "true")
	t.Setenv("INDAGO_MAX_PAGES_TO_SCAN", "50")
	t.Setenv("INDAGO_SCRAPER_TIMEOUT", "45s")
	t.Setenv("INDAGO_METRICS_SERVICE_URL", "http://example.com:5000")
	t.Setenv("INDAGO_MIN_SEARCH_VOLUME", "25")
	t.Setenv("INDAGO_MAX_KEYWORDS", "200")
	t.Setenv("INDAGO_AI_API_KEY", "test-key")
	t.Setenv("INDAGO_AI_DEFAULT_PROVIDER", "gemini")

	config := NewDefaultConfig()
	applyEnvOverrides(config)

	if config.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", config.Server.Port)
	}
	if !config.Server.TrustProxy {
		t.Error("Server.TrustProxy should be true")
	}
	if config.Research.MaxPages != 50 {
		t.Errorf("Research.MaxPages = %d, want 50", config.Research.MaxPages)
	}
	if config.Scraper.Timeout != "45s" {
		t.Errorf("Scraper.Timeout = %s, want 45s", config.Scraper.Timeout)
	}
	if config.Metrics.ServiceURL != "http://example.com:5000" {
		t.Errorf("Metrics.ServiceURL = %s, want http://example.com:5000", config.Metrics.ServiceURL)
	}
	if config.Metrics.MinSearchVolume != 25 {
		t.Errorf("Metrics.MinSearchVolume = %d, want 25", config.Metrics.MinSearchVolume)
	}
	if config.Metrics.MaxKeywords != 200 {
		t.Errorf("Metrics.MaxKeywords = %d, want 200", config.Metrics.MaxKeywords)
	}
	if config.Claude.APIKey != "test-key" {
		t.Errorf("Claude.APIKey = %s, want test-key", config.Claude.APIKey)
	}
	if config.AI.DefaultProvider != "gemini" {
		t.Errorf("AI.DefaultProvider = %s, want gemini", config.AI.DefaultProvider)
	}
}

func TestApplyEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("INDAGO_SERVER_PORT", "not-a-number")
	t.Setenv("INDAGO_SCRAPER_TIMEOUT", "not-a-duration")
	t.Setenv("INDAGO_MAX_KEYWORDS", "-5")

	config := NewDefaultConfig()
	applyEnvOverrides(config)

	if config.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", config.Server.Port)
	}
	if config.Scraper.Timeout != "30s" {
		t.Errorf("Scraper.Timeout = %s, want default 30s", config.Scraper.Timeout)
	}
	if config.Metrics.MaxKeywords != 500 {
		t.Errorf("Metrics.MaxKeywords = %d, want default 500", config.Metrics.MaxKeywords)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 3000, "0.0.0.0")
	if config.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", config.Server.Port)
	}
	if config.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %s, want 0.0.0.0", config.Server.Host)
	}

	// Zero values leave config untouched
	ApplyFlagOverrides(config, 0, "")
	if config.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000 after no-op override", config.Server.Port)
	}
}

func TestParseDurationOr(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"valid duration", "45s", time.Minute, 45 * time.Second},
		{"empty uses fallback", "", time.Minute, time.Minute},
		{"malformed uses fallback", "banana", 30 * time.Second, 30 * time.Second},
		{"hours", "168h", time.Minute, 168 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDurationOr(tt.value, tt.fallback)
			if got != tt.want {
				t.Errorf("ParseDurationOr(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestAllowTestURLs(t *testing.T) {
	tests := []struct {
		environment string
		want        bool
	}{
		{"development", true},
		{"", true},
		{"production", false},
		{"prod", false},
		{"PRODUCTION", false},
		{" production ", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			config := &Config{Environment: tt.environment}
			if got := config.AllowTestURLs(); got != tt.want {
				t.Errorf("AllowTestURLs() with env %q = %v, want %v", tt.environment, got, tt.want)
			}
		})
	}
}
