// Package config loads the collector configuration from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override, e.g. MTGC_STORAGE_DRIVER.
const EnvPrefix = "MTGC"

// Config represents the application configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Import  ImportConfig  `toml:"import"`
}

// CatalogConfig configures the Scryfall client.
type CatalogConfig struct {
	BaseURL   string `toml:"base_url" split_words:"true"`
	UserAgent string `toml:"user_agent" split_words:"true"`
	// Minimum spacing between requests (e.g., "100ms")
	RequestInterval string `toml:"request_interval" split_words:"true"`
	// Per-request timeout (e.g., "30s")
	Timeout    string `toml:"timeout" split_words:"true"`
	MaxRetries int    `toml:"max_retries" split_words:"true"`
}

// StorageConfig selects where the collection is persisted.
type StorageConfig struct {
	Driver   string `toml:"driver"` // sqlite, redis or memory
	Path     string `toml:"path"`   // SQLite database file
	RedisURL string `toml:"redis_url" split_words:"true"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port    int    `toml:"port"`
	Timeout string `toml:"timeout"` // Request timeout (e.g., "60s")
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or console
}

// ImportConfig holds decklist import defaults.
type ImportConfig struct {
	Language string `toml:"language"` // Preferred print language when none is saved
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:         "https://api.scryfall.com",
			UserAgent:       "MTG-Collector/1.0",
			RequestInterval: "100ms",
			Timeout:         "30s",
			MaxRetries:      2,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   defaultDataPath("collector.db"),
		},
		Server: ServerConfig{
			Port:    8080,
			Timeout: "60s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Import: ImportConfig{
			Language: "en",
		},
	}
}

// Dir returns the configuration directory, ~/.mtg-collector.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mtg-collector"), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func defaultDataPath(name string) string {
	dir, err := Dir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// Load loads the configuration from the default path, then applies
// environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration file at path. A missing file yields the
// defaults. Environment overrides are applied last.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return config, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("invalid catalog base URL %q: %w", c.Catalog.BaseURL, err)
	}
	if d, err := time.ParseDuration(c.Catalog.RequestInterval); err != nil || d < 0 {
		return fmt.Errorf("invalid request interval %q", c.Catalog.RequestInterval)
	}
	if d, err := time.ParseDuration(c.Catalog.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid catalog timeout %q", c.Catalog.Timeout)
	}
	if c.Catalog.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.Catalog.MaxRetries)
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the sqlite driver")
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage redis_url is required for the redis driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if d, err := time.ParseDuration(c.Server.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid server timeout %q", c.Server.Timeout)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// RequestInterval returns the catalog request spacing.
func (c *Config) RequestInterval() time.Duration {
	d, _ := time.ParseDuration(c.Catalog.RequestInterval)
	return d
}

// CatalogTimeout returns the catalog per-request timeout.
func (c *Config) CatalogTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Catalog.Timeout)
	return d
}

// ServerTimeout returns the HTTP request timeout.
func (c *Config) ServerTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.Timeout)
	return d
}
