// Package common provides shared utilities for nepsewatch
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultUserAgent is a desktop Chrome identification string. The market page
// serves a reduced layout (or refuses the request) for non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds all configuration for nepsewatch
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Market      MarketConfig  `toml:"market"`
	Feed        FeedConfig    `toml:"feed"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// MarketConfig describes the scraped market page and how to reach it.
type MarketConfig struct {
	URL           string            `toml:"url"`
	UserAgent     string            `toml:"user_agent"`
	Timeout       string            `toml:"timeout"`
	RateLimit     int               `toml:"rate_limit"` // outbound requests per second
	MaxBodyBytes  int64             `toml:"max_body_bytes"`
	TableSelector string            `toml:"table_selector"`
	Headers       map[string]string `toml:"headers"`
	Aliases       AliasConfig       `toml:"aliases"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// AliasConfig overrides the header spellings used to find each quote column.
// An empty list keeps the built-in aliases for that field.
type AliasConfig struct {
	Symbol         []string `toml:"symbol"`
	LastPrice      []string `toml:"last_price"`
	PreviousClose  []string `toml:"previous_close"`
	PercentChange  []string `toml:"percent_change"`
	AbsoluteChange []string `toml:"absolute_change"`
	OpenPrice      []string `toml:"open_price"`
}

// FeedConfig controls the background quote poller.
type FeedConfig struct {
	Interval          string `toml:"interval"`
	SimulateOnFailure bool   `toml:"simulate_on_failure"`
}

// GetInterval parses and returns the polling interval
func (c *FeedConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// StorageConfig holds the portfolio store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Market: MarketConfig{
			URL:           "https://merolagani.com/LatestMarket.aspx",
			UserAgent:     DefaultUserAgent,
			Timeout:       "15s",
			RateLimit:     2,
			MaxBodyBytes:  10 << 20,
			TableSelector: "table.table-hover",
		},
		Feed: FeedConfig{
			Interval: "10s",
		},
		Storage: StorageConfig{
			Path: "data/portfolio",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NEPSEWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("NEPSEWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("NEPSEWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("NEPSEWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("NEPSEWATCH_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "portfolio")
	}

	if u := os.Getenv("NEPSEWATCH_MARKET_URL"); u != "" {
		config.Market.URL = u
	}

	if iv := os.Getenv("NEPSEWATCH_FEED_INTERVAL"); iv != "" {
		config.Feed.Interval = iv
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
