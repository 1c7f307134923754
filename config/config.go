// Package config loads the server configuration from an optional INI file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const DefaultDB = "sqlite3:newsroom.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL"

type Config struct {
	Listen        string `ini:"listen"`
	Base          string `ini:"base"` // path prefix, the reverse proxy must not strip it
	DB            string `ini:"db"`   // see github.com/xo/dburl
	MetricsListen string `ini:"metrics_listen"`

	// PublicRedactors makes the redactor list and detail pages accessible without login.
	PublicRedactors bool `ini:"public_redactors"`

	LogLevel  string `ini:"log_level"`
	LogFormat string `ini:"log_format"` // "text" or "json"

	SessionIdleTimeout time.Duration `ini:"session_idle_timeout"`
	SessionLifetime    time.Duration `ini:"session_lifetime"`

	LoginRate  float64 `ini:"login_rate"` // login attempts per second and client
	LoginBurst int     `ini:"login_burst"`
}

func Default() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		DB:                 DefaultDB,
		PublicRedactors:    true,
		LogLevel:           "info",
		LogFormat:          "text",
		SessionIdleTimeout: 12 * time.Hour,
		SessionLifetime:    720 * time.Hour,
		LoginRate:          0.2,
		LoginBurst:         5,
	}
}

// Load returns the default config, overwritten by the values from the given INI file.
// An empty path returns the default config.
func Load(path string) (*Config, error) {
	var cfg = Default()
	if path == "" {
		return cfg, nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := file.Section("").MapTo(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, cfg.Validate()
}

func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Listen) == "" {
		return errors.New("listen address is empty")
	}
	if strings.TrimSpace(cfg.DB) == "" {
		return errors.New("database url is empty")
	}
	if _, err := cfg.Level(); err != nil {
		return err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", cfg.LogFormat)
	}
	if cfg.LoginRate <= 0 || cfg.LoginBurst <= 0 {
		return errors.New("login rate and burst must be positive")
	}
	return nil
}

// Level parses LogLevel.
func (cfg *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return level, fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}
	return level, nil
}

// NormalizedBase returns Base with a leading slash and without trailing slash, or "".
func (cfg *Config) NormalizedBase() string {
	var base = strings.Trim(cfg.Base, "/")
	if base != "" {
		base = "/" + base
	}
	return base
}
