package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Images   ImageConfig    `toml:"images"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
}

// APIConfig contains connection settings for the catalog backend.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"` // requests per second, 0 disables throttling
}

// ImageConfig contains settings for resolving poster and backdrop URLs.
type ImageConfig struct {
	BaseURL     string `toml:"base_url"`
	DefaultSize string `toml:"default_size"`
	Placeholder string `toml:"placeholder"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SessionConfig contains token persistence and watcher settings.
type SessionConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// Timeout returns the configured API timeout as a [time.Duration].
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the configured session poll interval as a [time.Duration].
func (c SessionConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&config)
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	applyEnvOverrides(&config)
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvOverrides layers MVX_* environment variables over file-based settings.
//
// Variables may come from the process environment or a .env file loaded at startup.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MVX_API_BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("MVX_IMAGE_BASE_URL"); v != "" {
		config.Images.BaseURL = v
	}
	if v := os.Getenv("MVX_DATABASE_PATH"); v != "" {
		config.Database.Path = v
	}
}
