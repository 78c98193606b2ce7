// Package config loads process configuration for the planner binaries.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Rasterizer names.
const (
	RasterizerNative = "native"
	RasterizerChrome = "chrome"
)

// Config is the environment configuration shared by the CLI and the server.
type Config struct {
	Output      string        `env:"PLANNER_OUTPUT" envDefault:"."`
	Rasterizer  string        `env:"PLANNER_RASTERIZER" envDefault:"native"`
	ChromePath  string        `env:"PLANNER_CHROME_PATH"`
	NoSandbox   bool          `env:"PLANNER_NO_SANDBOX"`
	Timeout     time.Duration `env:"PLANNER_TIMEOUT" envDefault:"30s"`
	LogLevel    string        `env:"PLANNER_LOG_LEVEL" envDefault:"info"`
	StickerRoot string        `env:"PLANNER_STICKER_ROOT" envDefault:"."`
	Addr        string        `env:"PLANNER_ADDR" envDefault:":8080"`
	ExportScale float64       `env:"PLANNER_EXPORT_SCALE" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	switch c.Rasterizer {
	case RasterizerNative, RasterizerChrome:
	default:
		return fmt.Errorf("config: unknown rasterizer %q (want %s or %s)", c.Rasterizer, RasterizerNative, RasterizerChrome)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.ExportScale <= 0 {
		return fmt.Errorf("config: export scale must be positive, got %g", c.ExportScale)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level. Invalid levels fall back to info.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}
