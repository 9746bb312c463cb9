// Package config loads identification run configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/milosgajdos/go-oma/estimate"
	"github.com/milosgajdos/go-oma/sim"
	"github.com/milosgajdos/go-oma/ssi"
	"github.com/milosgajdos/go-oma/stabdiag"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Variant is SSI variant: "cov" or "dat"
	Variant string `yaml:"variant"`
	// Method is estimator method: "1" or "2"
	Method string `yaml:"method"`
	// SampleRate is sampling frequency in Hz
	SampleRate float64 `yaml:"sample_rate"`
	// BlockRows is number of block rows
	BlockRows int `yaml:"block_rows"`
	// MinOrder is minimum model order
	MinOrder int `yaml:"min_order"`
	// MaxOrder is maximum model order; zero means block_rows * channels
	MaxOrder int `yaml:"max_order"`
	// Workers limits the number of concurrently realized orders
	Workers int `yaml:"workers"`
	// Limits are pole stability limits
	Limits stabdiag.Limits `yaml:"limits"`
	// Extract configures modal extraction
	Extract Extract `yaml:"extract"`
	// Simulate configures synthetic data generation
	Simulate sim.Config `yaml:"simulate"`
	// Log configures logging
	Log Log `yaml:"log"`
}

// Extract configures modal extraction.
type Extract struct {
	// Targets are target frequencies in Hz
	Targets         []float64 `yaml:"targets"`
	estimate.Config `yaml:",inline"`
}

// Log configures logging.
type Log struct {
	// File is JSON log file; empty logs to stderr only
	File string `yaml:"file"`
	// Level is log level: DEBUG, INFO, WARN or ERROR
	Level string `yaml:"level"`
}

// Default returns default configuration
func Default() Config {
	return Config{
		Variant:   string(ssi.Cov),
		Method:    ssi.Method1.String(),
		BlockRows: 20,
		Limits:    stabdiag.DefaultLimits(),
		Extract: Extract{
			Config: estimate.DefaultConfig(),
		},
		Simulate: sim.DefaultConfig(),
		Log: Log{
			Level: "INFO",
		},
	}
}

// Load reads configuration from YAML file at path on top of the defaults
// and applies environment overrides. Empty path loads only the defaults and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Log.File = getEnv("OMA_LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("OMA_LOG_LEVEL", cfg.Log.Level)

	return cfg, nil
}

// Validate checks the identification settings.
func (c Config) Validate() error {
	if _, err := ssi.ParseVariant(c.Variant); err != nil {
		return err
	}

	if _, err := ssi.ParseMethod(c.Method); err != nil {
		return err
	}

	if err := ssi.ValidateRate(c.SampleRate); err != nil {
		return err
	}

	if c.BlockRows < 2 {
		return fmt.Errorf("invalid block rows: %d", c.BlockRows)
	}

	if c.MinOrder < 0 || c.MinOrder%2 != 0 {
		return fmt.Errorf("invalid minimum order: %d", c.MinOrder)
	}

	if c.MaxOrder != 0 && c.MaxOrder < c.MinOrder {
		return fmt.Errorf("invalid order range: [%d, %d]", c.MinOrder, c.MaxOrder)
	}

	if err := c.Limits.Validate(); err != nil {
		return err
	}

	return c.Extract.Config.Validate()
}

// LogLevel returns the configured log level
func (c Config) LogLevel() slog.Level {
	return parseLogLevel(c.Log.Level)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
