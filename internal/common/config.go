package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production" - controls test URL validation
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Research    ResearchConfig  `toml:"research"`
	Metrics     MetricsConfig   `toml:"metrics"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	AI          AIConfig        `toml:"ai"`
}

type ServerConfig struct {
	Port          int    `toml:"port"`
	Host          string `toml:"host"`
	TrustProxy    bool   `toml:"trust_proxy"`    // Honor X-Forwarded-For for rate limiting (behind a reverse proxy only)
	AllowedOrigin string `toml:"allowed_origin"` // CORS Access-Control-Allow-Origin value
	MaxBodyBytes  int64  `toml:"max_body_bytes"` // Request body size limit
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration for the metrics cache
type BadgerConfig struct {
	Path string `toml:"path"` // Database directory path
}

// ScraperConfig controls page fetching behavior for both strategies
type ScraperConfig struct {
	UserAgent         string  `toml:"user_agent"`          // Desktop Chrome user agent sent by both strategies
	Timeout           string  `toml:"timeout"`             // Navigation/request timeout (default: "30s")
	BodyWaitTimeout   string  `toml:"body_wait_timeout"`   // Extra wait for body element after DOM ready (default: "5s")
	RetryAttempts     int     `toml:"retry_attempts"`      // Attempts per strategy (default: 3)
	RetryDelay        string  `toml:"retry_delay"`         // Base delay between attempts, scaled by attempt number (default: "1s")
	RequestsPerSecond float64 `toml:"requests_per_second"` // Politeness pacing for plain HTTP fetches (default: 2)
	Headless          bool    `toml:"headless"`            // Run the browser headless (default: true)
	BrowserInstances  int     `toml:"browser_instances"`   // Headless browser pool size (default: 2)
}

// ResearchConfig controls pipeline-wide defaults
type ResearchConfig struct {
	MaxPages       int    `toml:"max_pages"`        // Default crawl budget per job, clamped to [1,100] (default: 20)
	ScrapeCacheTTL string `toml:"scrape_cache_ttl"` // In-memory scrape result cache lifetime, "0" disables (default: "15m")
}

// MetricsConfig controls the remote keyword-metrics provider client
type MetricsConfig struct {
	ServiceURL      string `toml:"service_url"`       // Base URL of the metrics provider
	Timeout         string `toml:"timeout"`           // Per-batch request timeout (default: "120s")
	BatchSize       int    `toml:"batch_size"`        // Seeds per provider call (default: 50)
	MinSearchVolume int    `toml:"min_search_volume"` // Drop keywords below this volume (default: 10)
	MaxKeywords     int    `toml:"max_keywords"`      // Cap on total keywords per job (default: 500)
	CacheTTL        string `toml:"cache_ttl"`         // Freshness window for cached metrics (default: "168h")
}

// RateLimitConfig controls per-IP job creation limits
type RateLimitConfig struct {
	MaxRequests int    `toml:"max_requests"` // Job creations per window per IP (default: 10)
	Window      string `toml:"window"`       // Sliding window length (default: "1h")
}

// WebSocketConfig contains configuration for WebSocket log streaming
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // Minimum log level to broadcast ("debug", "info", "warn", "error")
	ExcludePatterns []string `toml:"exclude_patterns"` // Log message patterns to exclude from broadcasting
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// AIConfig selects the generative AI provider
type AIConfig struct {
	DefaultProvider string `toml:"default_provider"` // "claude" or "gemini" (default: "claude")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in indago.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:          8080,
			Host:          "localhost",
			TrustProxy:    false,
			AllowedOrigin: "*",
			MaxBodyBytes:  1 << 20, // 1 MB
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Scraper: ScraperConfig{
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:           "30s",
			BodyWaitTimeout:   "5s",
			RetryAttempts:     3,
			RetryDelay:        "1s",
			RequestsPerSecond: 2,
			Headless:          true,
			BrowserInstances:  2,
		},
		Research: ResearchConfig{
			MaxPages:       20,
			ScrapeCacheTTL: "15m",
		},
		Metrics: MetricsConfig{
			ServiceURL:      "http://localhost:5000",
			Timeout:         "120s",
			BatchSize:       50,
			MinSearchVolume: 10,
			MaxKeywords:     500,
			CacheTTL:        "168h", // one week
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 10,
			Window:      "1h",
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info",
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
				"Publishing event",
			},
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		AI: AIConfig{
			DefaultProvider: "claude",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("INDAGO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("INDAGO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("INDAGO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if trustProxy := os.Getenv("INDAGO_SERVER_TRUST_PROXY"); trustProxy != "" {
		if tp, err := strconv.ParseBool(trustProxy); err == nil {
			config.Server.TrustProxy = tp
		}
	}

	// Logging configuration
	if level := os.Getenv("INDAGO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("INDAGO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("INDAGO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("INDAGO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Scraper configuration
	if userAgent := os.Getenv("INDAGO_SCRAPER_USER_AGENT"); userAgent != "" {
		config.Scraper.UserAgent = userAgent
	}
	if timeout := os.Getenv("INDAGO_SCRAPER_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Scraper.Timeout = timeout
		}
	}
	if attempts := os.Getenv("INDAGO_SCRAPER_RETRY_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil && a > 0 {
			config.Scraper.RetryAttempts = a
		}
	}

	// Research configuration
	if maxPages := os.Getenv("INDAGO_MAX_PAGES_TO_SCAN"); maxPages != "" {
		if mp, err := strconv.Atoi(maxPages); err == nil && mp > 0 {
			config.Research.MaxPages = mp
		}
	}
	if cacheTTL := os.Getenv("INDAGO_SCRAPE_CACHE_TTL"); cacheTTL != "" {
		if _, err := time.ParseDuration(cacheTTL); err == nil {
			config.Research.ScrapeCacheTTL = cacheTTL
		}
	}

	// Metrics configuration
	if serviceURL := os.Getenv("INDAGO_METRICS_SERVICE_URL"); serviceURL != "" {
		config.Metrics.ServiceURL = serviceURL
	}
	if timeout := os.Getenv("INDAGO_METRICS_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Metrics.Timeout = timeout
		}
	}
	if minVolume := os.Getenv("INDAGO_MIN_SEARCH_VOLUME"); minVolume != "" {
		if mv, err := strconv.Atoi(minVolume); err == nil && mv >= 0 {
			config.Metrics.MinSearchVolume = mv
		}
	}
	if maxKeywords := os.Getenv("INDAGO_MAX_KEYWORDS"); maxKeywords != "" {
		if mk, err := strconv.Atoi(maxKeywords); err == nil && mk > 0 {
			config.Metrics.MaxKeywords = mk
		}
	}

	// Rate limit configuration
	if maxRequests := os.Getenv("INDAGO_RATE_LIMIT_MAX"); maxRequests != "" {
		if mr, err := strconv.Atoi(maxRequests); err == nil && mr > 0 {
			config.RateLimit.MaxRequests = mr
		}
	}
	if window := os.Getenv("INDAGO_RATE_LIMIT_WINDOW"); window != "" {
		if _, err := time.ParseDuration(window); err == nil {
			config.RateLimit.Window = window
		}
	}

	// WebSocket configuration
	if minLevel := os.Getenv("INDAGO_WEBSOCKET_MIN_LEVEL"); minLevel != "" {
		config.WebSocket.MinLevel = minLevel
	}

	// Claude configuration. ANTHROPIC_API_KEY is honored; the INDAGO_
	// prefixed variables take priority.
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("INDAGO_AI_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("INDAGO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("INDAGO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("INDAGO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil && mt > 0 {
			config.Claude.MaxTokens = mt
		}
	}

	// Gemini configuration
	if apiKey := os.Getenv("INDAGO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("INDAGO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// AI provider selection
	if provider := os.Getenv("INDAGO_AI_DEFAULT_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, falling back when it is empty or
// malformed.
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// AllowTestURLs returns true if test URLs (localhost, 127.0.0.1, etc.) are
// allowed as research targets. Test URLs are only allowed in development.
func (c *Config) AllowTestURLs() bool {
	return !c.IsProduction()
}
