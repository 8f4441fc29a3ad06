// Package config collects the host runner settings from defaults, an
// optional .env file, NEWTOWN_* environment variables and command-line
// flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"newtown/hal"
	"newtown/internal/klog"
	"newtown/internal/telemetry"
	"newtown/kernel/keyboard"
	"newtown/kernel/tick"
)

// DefaultReadyQueueCapacity bounds the executor's ready queue.
const DefaultReadyQueueCapacity = 100

type Config struct {
	Headless bool
	Hz       int
	Ticks    uint64
	// Dump prints the text screen to stdout when a headless run ends.
	Dump bool

	ReadyQueueCapacity    int
	WakerPoolSize         int
	ScancodeQueueCapacity int

	LogLevel        string
	Metrics         bool
	MetricsInterval time.Duration
}

func Default() Config {
	return Config{
		Hz:                    hal.DefaultHz,
		ReadyQueueCapacity:    DefaultReadyQueueCapacity,
		WakerPoolSize:         tick.DefaultPoolSize,
		ScancodeQueueCapacity: keyboard.DefaultCapacity,
		LogLevel:              "info",
		MetricsInterval:       telemetry.DefaultInterval,
	}
}

// Load builds the configuration for a run. envFile may be missing; any other
// read error is returned. args excludes the program name.
func Load(flags *flag.FlagSet, envFile string, args []string) (Config, error) {
	cfg := Default()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !isNotExist(err) {
			return cfg, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}
	if err := cfg.FromEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// FromEnv overrides fields from NEWTOWN_* variables found by lookup.
func (c *Config) FromEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	boolean("NEWTOWN_HEADLESS", &c.Headless)
	integer("NEWTOWN_HZ", &c.Hz)
	if v, ok := lookup("NEWTOWN_TICKS"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: NEWTOWN_TICKS: %w", err))
		} else {
			c.Ticks = n
		}
	}
	integer("NEWTOWN_READY_QUEUE_CAPACITY", &c.ReadyQueueCapacity)
	integer("NEWTOWN_WAKER_POOL_SIZE", &c.WakerPoolSize)
	integer("NEWTOWN_SCANCODE_QUEUE_CAPACITY", &c.ScancodeQueueCapacity)
	str("NEWTOWN_LOG_LEVEL", &c.LogLevel)
	boolean("NEWTOWN_METRICS", &c.Metrics)
	if v, ok := lookup("NEWTOWN_METRICS_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: NEWTOWN_METRICS_INTERVAL: %w", err))
		} else {
			c.MetricsInterval = d
		}
	}
	return errors.Join(errs...)
}

// RegisterFlags binds the fields to flags, using the current values as
// defaults.
func (c *Config) RegisterFlags(flags *flag.FlagSet) {
	flags.BoolVar(&c.Headless, "headless", c.Headless, "Run without a window.")
	flags.IntVar(&c.Hz, "hz", c.Hz, "Timer interrupt rate.")
	flags.Uint64Var(&c.Ticks, "ticks", c.Ticks, "Stop after N ticks in headless mode (0 = run forever).")
	flags.BoolVar(&c.Dump, "dump", c.Dump, "Print the text screen when a headless run ends.")
	flags.IntVar(&c.ReadyQueueCapacity, "ready-queue", c.ReadyQueueCapacity, "Executor ready queue capacity.")
	flags.IntVar(&c.WakerPoolSize, "waker-pool", c.WakerPoolSize, "Number of timer wake slots.")
	flags.IntVar(&c.ScancodeQueueCapacity, "scancode-queue", c.ScancodeQueueCapacity, "Scancode queue capacity.")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Serial log level (debug, info, notice, warning, err).")
	flags.BoolVar(&c.Metrics, "metrics", c.Metrics, "Export kernel metrics to stderr.")
	flags.DurationVar(&c.MetricsInterval, "metrics-interval", c.MetricsInterval, "Metrics export period.")
}

func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("config: %s must be > 0, got %d", name, v))
		}
	}
	positive("hz", c.Hz)
	positive("ready queue capacity", c.ReadyQueueCapacity)
	positive("waker pool size", c.WakerPoolSize)
	positive("scancode queue capacity", c.ScancodeQueueCapacity)
	if c.Metrics && c.MetricsInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: metrics interval must be > 0, got %s", c.MetricsInterval))
	}
	if _, err := klog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	return errors.Join(errs...)
}
