// Package config loads application configuration from defaults, an optional
// YAML file, and environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress  = ":8060"
	defaultServerTimeout  = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultCacheTTL       = 3 * time.Minute
	defaultFetchTimeout   = 15 * time.Second
	defaultBrowserTimeout = 45 * time.Second
	defaultSettleDelay    = 2 * time.Second
	defaultMaxRetries     = 3
	defaultBrowserRetries = 2
	defaultTeamSize       = 3
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Config is the root application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Allocator  AllocatorConfig  `mapstructure:"allocator"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Debug bool   `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds the optional Postgres connection for the assignment
// store. When URL is empty the in-memory store is used instead.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// AllocatorConfig holds the allocator's data snapshot locations and defaults.
type AllocatorConfig struct {
	UsersFile       string `mapstructure:"users_file"`
	ProjectsFile    string `mapstructure:"projects_file"`
	DefaultTeamSize int    `mapstructure:"default_team_size"`
}

// AggregatorConfig holds the aggregation pipeline settings.
type AggregatorConfig struct {
	SourcesFile string        `mapstructure:"sources_file"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Fetch       FetchConfig   `mapstructure:"fetch"`
	Proxy       ProxyConfig   `mapstructure:"proxy"`
	Browser     BrowserConfig `mapstructure:"browser"`
}

// FetchConfig controls the direct HTTP fetch tier.
type FetchConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ProxyConfig holds the optional anti-bot render proxy credentials.
// Provider is one of "scraperapi" or "scrapingbee"; any other value leaves
// the proxy tier disabled.
type ProxyConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
}

// BrowserConfig controls the headless-browser fallback tier.
type BrowserConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// Validate checks the configuration for required values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}
	if c.Allocator.UsersFile == "" {
		return errors.New("allocator.users_file is required")
	}
	if c.Allocator.DefaultTeamSize <= 0 {
		return errors.New("allocator.default_team_size must be positive")
	}
	if c.Aggregator.SourcesFile == "" {
		return errors.New("aggregator.sources_file is required")
	}
	if c.Aggregator.CacheTTL <= 0 {
		return errors.New("aggregator.cache_ttl must be positive")
	}
	if c.Aggregator.Fetch.MaxRetries < 1 {
		return errors.New("aggregator.fetch.max_retries must be at least 1")
	}
	return nil
}

// Load builds the configuration from viper's current state. Callers are
// expected to have initialized viper (config file, env bindings, defaults)
// beforehand; SetDefaults covers anything left unset.
func Load() (*Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// decodeHook parses duration strings and comma-separated string slices.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		durationFromNumberHook(),
	)
}

// durationFromNumberHook converts bare numbers to durations in seconds so
// config files may write "cache_ttl: 180" as well as "3m".
func durationFromNumberHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

// SetDefaults registers production-safe defaults with viper.
func SetDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":  "teamforge",
		"debug": false,
	})

	viper.SetDefault("server", map[string]any{
		"address":       defaultServerAddress,
		"read_timeout":  defaultServerTimeout.String(),
		"write_timeout": defaultServerTimeout.String(),
		"idle_timeout":  defaultIdleTimeout.String(),
		"cors_origins":  []string{"http://localhost:3000"},
	})

	viper.SetDefault("allocator", map[string]any{
		"users_file":        "data/users.json",
		"projects_file":     "data/projects.json",
		"default_team_size": defaultTeamSize,
	})

	viper.SetDefault("aggregator", map[string]any{
		"sources_file": "sources.yml",
		"cache_ttl":    defaultCacheTTL.String(),
		"fetch": map[string]any{
			"user_agent":      defaultUserAgent,
			"max_retries":     defaultMaxRetries,
			"request_timeout": defaultFetchTimeout.String(),
		},
		"browser": map[string]any{
			"enabled":      false,
			"nav_timeout":  defaultBrowserTimeout.String(),
			"settle_delay": defaultSettleDelay.String(),
			"max_retries":  defaultBrowserRetries,
		},
	})
}

// BindEnv maps environment variables onto config keys.
func BindEnv() error {
	bindings := map[string][]string{
		"app.debug":                 {"APP_DEBUG"},
		"server.address":            {"SERVER_ADDRESS"},
		"server.cors_origins":       {"CORS_ORIGINS"},
		"database.url":              {"DATABASE_URL"},
		"allocator.users_file":      {"USERS_FILE"},
		"allocator.projects_file":   {"PROJECTS_FILE"},
		"aggregator.sources_file":   {"SOURCES_FILE"},
		"aggregator.cache_ttl":      {"CACHE_TTL"},
		"aggregator.proxy.provider": {"SCRAPER_PROVIDER"},
		"aggregator.proxy.api_key":  {"SCRAPER_API_KEY"},
		"aggregator.browser.enabled": {
			"BROWSER_FALLBACK_ENABLED",
		},
	}

	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}
