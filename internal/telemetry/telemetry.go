// Package telemetry sets up the OpenTelemetry meter used by the kernel's
// executor and interrupt counters.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "newtown/kernel"

// DefaultInterval is the export period used when none is configured.
const DefaultInterval = 10 * time.Second

type Config struct {
	// Enabled turns on the periodic exporter. When false Meter returns a
	// no-op meter.
	Enabled  bool
	Interval time.Duration
	// Writer receives the exported metrics as JSON.
	Writer io.Writer
}

// Provider owns the meter provider for the lifetime of one boot.
type Provider struct {
	mp    *sdkmetric.MeterProvider
	meter metric.Meter
}

// Setup builds a Provider from cfg. Shutdown must be called to flush the
// last export.
func Setup(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{meter: noop.NewMeterProvider().Meter(instrumentationName)}, nil
	}
	if cfg.Writer == nil {
		return nil, errors.New("telemetry: no writer configured")
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
	if err != nil {
		return nil, fmt.Errorf("telemetry: exporter: %w", err)
	}
	return newProvider(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))), nil
}

func newProvider(r sdkmetric.Reader) *Provider {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(r))
	return &Provider{mp: mp, meter: mp.Meter(instrumentationName)}
}

func (p *Provider) Meter() metric.Meter { return p.meter }

// Shutdown flushes and stops the exporter. It is a no-op when telemetry is
// disabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.mp == nil {
		return nil
	}
	return p.mp.Shutdown(ctx)
}
