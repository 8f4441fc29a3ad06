package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("newtown", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.ReadyQueueCapacity)
	assert.Equal(t, 4, cfg.WakerPoolSize)
	assert.Equal(t, 100, cfg.ScancodeQueueCapacity)
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"NEWTOWN_HEADLESS":         "true",
		"NEWTOWN_HZ":               "100",
		"NEWTOWN_TICKS":            "500",
		"NEWTOWN_WAKER_POOL_SIZE":  "8",
		"NEWTOWN_LOG_LEVEL":        "debug",
		"NEWTOWN_METRICS":          "1",
		"NEWTOWN_METRICS_INTERVAL": "2s",
	}
	cfg := Default()
	require.NoError(t, cfg.FromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.True(t, cfg.Headless)
	assert.Equal(t, 100, cfg.Hz)
	assert.Equal(t, uint64(500), cfg.Ticks)
	assert.Equal(t, 8, cfg.WakerPoolSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, 2*time.Second, cfg.MetricsInterval)
}

func TestFromEnvReportsEveryBadValue(t *testing.T) {
	env := map[string]string{
		"NEWTOWN_HZ":    "fast",
		"NEWTOWN_TICKS": "-1",
	}
	cfg := Default()
	err := cfg.FromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEWTOWN_HZ")
	assert.Contains(t, err.Error(), "NEWTOWN_TICKS")
	assert.Equal(t, Default().Hz, cfg.Hz)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Hz = 0
	cfg.WakerPoolSize = -1
	cfg.LogLevel = "shouty"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hz must be > 0")
	assert.Contains(t, err.Error(), "waker pool size must be > 0")
	assert.Contains(t, err.Error(), "unknown level")
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NEWTOWN_HZ=30\nNEWTOWN_TICKS=9\n"), 0o600))
	t.Setenv("NEWTOWN_TICKS", "12")
	// godotenv only fills unset variables; t.Setenv restores the original
	// state of NEWTOWN_HZ afterwards.
	t.Setenv("NEWTOWN_HZ", "")
	require.NoError(t, os.Unsetenv("NEWTOWN_HZ"))

	cfg, err := Load(newFlagSet(), envFile, []string{"-headless", "-ready-queue", "50"})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Hz)
	assert.Equal(t, uint64(12), cfg.Ticks)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 50, cfg.ReadyQueueCapacity)
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(newFlagSet(), filepath.Join(t.TempDir(), "missing.env"), []string{"-hz", "10"})
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Hz)
}

func TestLoadRejectsBadFlags(t *testing.T) {
	_, err := Load(newFlagSet(), "", []string{"-hz", "0"})
	assert.ErrorContains(t, err, "hz must be > 0")
}
