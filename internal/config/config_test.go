package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	oma "github.com/milosgajdos/go-oma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ssi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("OMA_LOG_FILE", "")
	t.Setenv("OMA_LOG_LEVEL", "")

	cfg, err := Load("")
	assert.NoError(err)
	assert.Equal(Default(), cfg)

	assert.Equal("cov", cfg.Variant)
	assert.Equal("1", cfg.Method)
	assert.Equal(0.01, cfg.Limits.Freq)
	assert.Equal(0.05, cfg.Limits.Damping)
	assert.Equal(0.02, cfg.Limits.Shape)
	assert.Equal(0.1, cfg.Limits.MaxDamping)
	assert.Equal(0.05, cfg.Extract.DeltaF)
	assert.Equal(0.95, cfg.Extract.MACLimit)
	assert.Equal(5, cfg.Simulate.DOF)
	assert.Equal(slog.LevelInfo, cfg.LogLevel())
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("OMA_LOG_FILE", "")
	t.Setenv("OMA_LOG_LEVEL", "")

	path := writeConfig(t, `
variant: dat
method: "2"
sample_rate: 100
block_rows: 30
min_order: 2
max_order: 60
limits:
  freq: 0.02
  damping: 0.05
  shape: 0.02
  max_damping: 0.2
extract:
  targets: [0.89, 2.6]
  delta_f: 0.1
  mac_limit: 0.9
simulate:
  samples: 1000
  snr: .inf
log:
  level: debug
`)

	cfg, err := Load(path)
	assert.NoError(err)
	assert.NoError(cfg.Validate())

	assert.Equal("dat", cfg.Variant)
	assert.Equal("2", cfg.Method)
	assert.Equal(100.0, cfg.SampleRate)
	assert.Equal(30, cfg.BlockRows)
	assert.Equal(2, cfg.MinOrder)
	assert.Equal(60, cfg.MaxOrder)
	assert.Equal(0.02, cfg.Limits.Freq)
	assert.Equal(0.2, cfg.Limits.MaxDamping)
	assert.Equal([]float64{0.89, 2.6}, cfg.Extract.Targets)
	assert.Equal(0.1, cfg.Extract.DeltaF)
	assert.Equal(0.9, cfg.Extract.MACLimit)
	assert.Equal(1000, cfg.Simulate.Samples)
	assert.True(cfg.Simulate.SNR > 1e300)
	// unset simulation values keep their defaults
	assert.Equal(25.91, cfg.Simulate.Mass)
	assert.Equal(slog.LevelDebug, cfg.LogLevel())
}

func TestLoadEnv(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("OMA_LOG_FILE", "/tmp/ssi.log")
	t.Setenv("OMA_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	assert.NoError(err)
	assert.Equal("/tmp/ssi.log", cfg.Log.File)
	assert.Equal(slog.LevelWarn, cfg.LogLevel())
}

func TestLoadErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(err)

	_, err = Load(writeConfig(t, "block_rows: [1, 2\n"))
	assert.Error(err)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	valid := Default()
	valid.SampleRate = 20
	assert.NoError(valid.Validate())

	testCases := []func(c *Config){
		func(c *Config) { c.Variant = "fdd" },
		func(c *Config) { c.Method = "3" },
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.Limits.Freq = -1 },
		func(c *Config) { c.Extract.MACLimit = 2 },
	}

	for _, tc := range testCases {
		c := valid
		tc(&c)
		assert.True(errors.Is(c.Validate(), oma.ErrInvalidInput))
	}

	for _, tc := range []func(c *Config){
		func(c *Config) { c.BlockRows = 1 },
		func(c *Config) { c.MinOrder = 3 },
		func(c *Config) { c.MinOrder, c.MaxOrder = 10, 4 },
	} {
		c := valid
		tc(&c)
		assert.Error(c.Validate())
	}
}

func TestParseLogLevel(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		in  string
		exp slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		assert.Equal(tc.exp, parseLogLevel(tc.in))
	}
}

func TestNewLogger(t *testing.T) {
	assert := assert.New(t)

	var stderr, file bytes.Buffer
	logger := newLogger(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("sweep done", "orders", 21)

	assert.Contains(stderr.String(), "sweep done")
	assert.NotContains(stderr.String(), "hidden")
	assert.True(strings.HasPrefix(file.String(), "{"))
	assert.Contains(file.String(), `"orders":21`)

	stderr.Reset()
	logger = newLogger(&stderr, nil, slog.LevelDebug)
	logger.Debug("realized model", "order", 4)
	assert.Contains(stderr.String(), "order=4")
}

func TestSetupLogger(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "ssi.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("hello")
	assert.NoError(cleanup())

	data, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Contains(string(data), `"msg":"hello"`)

	logger, cleanup = SetupLogger("", slog.LevelInfo)
	assert.NotNil(logger)
	assert.NoError(cleanup())
}
