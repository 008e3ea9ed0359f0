// Package config provides YAML-based configuration loading for Atelier.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Atelier configuration, loaded from atelier.yaml.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig holds the listen address for the collaboration server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects and configures the project store backend.
type StorageConfig struct {
	Driver   string `yaml:"driver"` // sqlite (default) or mysql
	Path     string `yaml:"path"`   // sqlite file
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
}

// AIConfig configures the suggestion generator. An empty provider
// disables ai-request handling.
type AIConfig struct {
	Provider  string `yaml:"provider"` // "" | "none" | "gemini"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// SessionConfig controls the idle-session sweep. A zero idle timeout
// disables sweeping.
type SessionConfig struct {
	IdleTimeoutSec   int `yaml:"idle_timeout_sec"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		c.Storage.Path = "atelier.db"
	}
	if c.Storage.Driver == "mysql" {
		if c.Storage.Host == "" {
			c.Storage.Host = "127.0.0.1"
		}
		if c.Storage.Port == 0 {
			c.Storage.Port = 3306
		}
	}
	if c.AI.Provider == "gemini" && c.AI.APIKeyEnv == "" {
		c.AI.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Session.IdleTimeoutSec > 0 && c.Session.SweepIntervalSec == 0 {
		c.Session.SweepIntervalSec = 60
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Storage.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q is not supported (sqlite, mysql)", c.Storage.Driver))
	}
	if c.Storage.Driver == "mysql" && c.Storage.Database == "" {
		errs = append(errs, "storage.database is required for mysql")
	}
	switch c.AI.Provider {
	case "", "none", "gemini":
	default:
		errs = append(errs, fmt.Sprintf("ai.provider %q is not supported (none, gemini)", c.AI.Provider))
	}
	if c.Session.IdleTimeoutSec < 0 {
		errs = append(errs, "session.idle_timeout_sec must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
