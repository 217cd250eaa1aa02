// Package config loads trendmix settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the YAML file when --config is not given.
const EnvConfigPath = "TRENDMIX_CONFIG"

// Config is read once at startup and treated as immutable.
type Config struct {
	APIKey     string `yaml:"api_key"`
	APIBaseURL string `yaml:"api_base_url"`

	// Chart
	RegionCode string `yaml:"region_code"`
	CategoryID string `yaml:"category_id"`
	MaxResults int    `yaml:"max_results"`
	MaxPages   int    `yaml:"max_pages"`

	// Fetch
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Views
	RecentWindow time.Duration `yaml:"recent_window"`
	RisingWindow time.Duration `yaml:"rising_window"`
	SnippetChars int           `yaml:"snippet_chars"`

	// Server
	ServerPort           string `yaml:"server_port"`
	RefreshRatePerMinute int    `yaml:"refresh_rate_per_minute"`

	LogLevel        string `yaml:"log_level"`
	DisplayTimezone string `yaml:"display_timezone"`
}

// Default returns the built-in settings: Canadian News & Politics.
func Default() *Config {
	return &Config{
		RegionCode:           "CA",
		CategoryID:           "25",
		MaxResults:           50,
		MaxPages:             1,
		CacheTTL:             4 * time.Hour,
		RetryBackoff:         time.Minute,
		RequestTimeout:       15 * time.Second,
		RecentWindow:         24 * time.Hour,
		RisingWindow:         8 * time.Hour,
		SnippetChars:         260,
		ServerPort:           "8080",
		RefreshRatePerMinute: 6,
		LogLevel:             "info",
		DisplayTimezone:      "America/Toronto",
	}
}

// Load applies the YAML file at path (or $TRENDMIX_CONFIG) over the
// defaults, then the environment over that. A .env file in the working
// directory is loaded first when present; real environment variables win
// over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIKey = getEnvString("TRENDMIX_API_KEY", getEnvString("YOUTUBE_API_KEY", c.APIKey))
	c.APIBaseURL = getEnvString("TRENDMIX_API_URL", c.APIBaseURL)
	c.RegionCode = getEnvString("TRENDMIX_REGION", c.RegionCode)
	c.CategoryID = getEnvString("TRENDMIX_CATEGORY", c.CategoryID)
	c.MaxResults = getEnvInt("TRENDMIX_MAX_RESULTS", c.MaxResults)
	c.MaxPages = getEnvInt("TRENDMIX_MAX_PAGES", c.MaxPages)
	c.CacheTTL = getEnvDuration("TRENDMIX_CACHE_TTL", c.CacheTTL)
	c.RetryBackoff = getEnvDuration("TRENDMIX_RETRY_BACKOFF", c.RetryBackoff)
	c.RequestTimeout = getEnvDuration("TRENDMIX_REQUEST_TIMEOUT", c.RequestTimeout)
	c.RecentWindow = getEnvDuration("TRENDMIX_RECENT_WINDOW", c.RecentWindow)
	c.RisingWindow = getEnvDuration("TRENDMIX_RISING_WINDOW", c.RisingWindow)
	c.SnippetChars = getEnvInt("TRENDMIX_SNIPPET_CHARS", c.SnippetChars)
	c.ServerPort = getEnvString("TRENDMIX_PORT", c.ServerPort)
	c.RefreshRatePerMinute = getEnvInt("TRENDMIX_REFRESH_RATE", c.RefreshRatePerMinute)
	c.LogLevel = getEnvString("TRENDMIX_LOG_LEVEL", c.LogLevel)
	c.DisplayTimezone = getEnvString("TRENDMIX_TIMEZONE", c.DisplayTimezone)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.APIKey) == "" {
		problems = append(problems, "api_key is required (set TRENDMIX_API_KEY)")
	}
	if strings.TrimSpace(c.RegionCode) == "" {
		problems = append(problems, "region_code must not be empty")
	}
	if c.MaxResults < 1 || c.MaxResults > 50 {
		problems = append(problems, fmt.Sprintf("max_results must be between 1 and 50, got %d", c.MaxResults))
	}
	if c.MaxPages < 1 {
		problems = append(problems, fmt.Sprintf("max_pages must be at least 1, got %d", c.MaxPages))
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "cache_ttl must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.RetryBackoff < 0 {
		problems = append(problems, "retry_backoff must not be negative")
	}
	if c.RecentWindow <= 0 || c.RisingWindow <= 0 {
		problems = append(problems, "recent_window and rising_window must be positive")
	}
	if c.SnippetChars < 1 {
		problems = append(problems, "snippet_chars must be positive")
	}
	if c.RefreshRatePerMinute < 1 {
		problems = append(problems, "refresh_rate_per_minute must be positive")
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("display_timezone %q is not a known time zone", c.DisplayTimezone))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the display time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// String renders the effective settings with the API key masked.
func (c *Config) String() string {
	masked := *c
	masked.APIKey = maskKey(c.APIKey)
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Sprintf("%+v", masked)
	}
	return string(out)
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
