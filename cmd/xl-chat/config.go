// ABOUTME: Per-user configuration loading for the xl-chat terminal client
// ABOUTME: Loads TOML config from XDG path with environment variable expansion

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/comp423-25s/csxl-a2/internal/config"
)

type Config struct {
	Backend BackendConfig `toml:"backend"`
	Session SessionConfig `toml:"session"`
	Logging LoggingConfig `toml:"logging"`
}

type BackendConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type SessionConfig struct {
	Backend      string `toml:"backend"`       // sqlite (default), redis, or memory
	DatabasePath string `toml:"database_path"` // sqlite only
	RedisAddr    string `toml:"redis_addr"`    // redis only
	RedisPrefix  string `toml:"redis_prefix"`  // redis only
	Retention    string `toml:"retention"`     // duration string, default 24h
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// defaultConfigPath resolves the config location.
// Priority: XL_CHAT_CONFIG env var > XDG_CONFIG_HOME/xl-chat/config.toml > ~/.config/xl-chat/config.toml
func defaultConfigPath() string {
	if path := os.Getenv("XL_CHAT_CONFIG"); path != "" {
		return path
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "xl-chat", "config.toml")
}

// defaultDatabasePath puts the session database under the user's state dir.
func defaultDatabasePath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "session.db"
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateDir, "xl-chat", "session.db")
}

// loadConfig reads config from the given path, expanding environment variables.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	switch c.Session.Backend {
	case "", config.SessionBackendSQLite, config.SessionBackendMemory:
	case config.SessionBackendRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("session.backend must be sqlite, redis, or memory, got %q", c.Session.Backend)
	}
	return nil
}

// retention parses the configured retention window, defaulting on empty.
func (c *Config) retention() (time.Duration, error) {
	if c.Session.Retention == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Session.Retention)
	if err != nil {
		return 0, fmt.Errorf("parsing retention %q: %w", c.Session.Retention, err)
	}
	return d, nil
}
