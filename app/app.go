// Package app wires the host configuration, the serial logger and the
// metrics exporter into a kernel boot.
package app

import (
	"context"
	"sync/atomic"

	"newtown/hal"
	"newtown/internal/config"
	"newtown/internal/klog"
	"newtown/internal/telemetry"
	"newtown/kernel/kmain"
)

// System is one machine run. Boot is handed to the hal runners.
type System struct {
	cfg  config.Config
	kern atomic.Pointer[kmain.Kernel]
	tel  atomic.Pointer[telemetry.Provider]
}

func New(cfg config.Config) *System {
	return &System{cfg: cfg}
}

// Boot starts the kernel on h. It matches the newApp signature of
// hal.RunHeadless and hal.RunWindow. The returned step function reports a
// setup failure on the first tick.
func (s *System) Boot(h hal.HAL) func() error {
	level, err := klog.ParseLevel(s.cfg.LogLevel)
	if err != nil {
		return func() error { return err }
	}
	log := klog.New(h.Serial(), klog.WithLevel(level))

	tel, err := telemetry.Setup(telemetry.Config{
		Enabled:  s.cfg.Metrics,
		Interval: s.cfg.MetricsInterval,
		Writer:   h.Serial(),
	})
	if err != nil {
		log.Err().Err(err).Log("metrics setup failed")
		return func() error { return err }
	}
	s.tel.Store(tel)

	k := kmain.Start(h, kmain.Config{
		ReadyQueueCapacity:    s.cfg.ReadyQueueCapacity,
		WakerPoolSize:         s.cfg.WakerPoolSize,
		ScancodeQueueCapacity: s.cfg.ScancodeQueueCapacity,
		Log:                   log,
		Meter:                 tel.Meter(),
	})
	s.kern.Store(k)
	return nil
}

// Kernel returns the booted kernel, or nil before Boot.
func (s *System) Kernel() *kmain.Kernel { return s.kern.Load() }

// Screen returns the text screen contents, or "" before Boot.
func (s *System) Screen() string {
	k := s.Kernel()
	if k == nil {
		return ""
	}
	return k.Writer.Text()
}

// Close flushes the metrics exporter.
func (s *System) Close(ctx context.Context) error {
	return s.tel.Load().Shutdown(ctx)
}
