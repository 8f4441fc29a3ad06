// Package klog builds the kernel logger: JSON lines on the serial port.
package klog

import (
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logger type passed around the kernel. A nil *Logger is valid
// and discards everything.
type Logger = logiface.Logger[logiface.Event]

// DefaultLevel is used when no level is configured.
const DefaultLevel = logiface.LevelInformational

// Option configures New.
type Option func(*options)

type options struct {
	level     logiface.Level
	timeField string
}

// WithLevel sets the minimum level written.
func WithLevel(l logiface.Level) Option {
	return func(o *options) { o.level = l }
}

// WithoutTime drops the timestamp field, which keeps output deterministic.
func WithoutTime() Option {
	return func(o *options) { o.timeField = "" }
}

// New returns a logger writing one JSON object per line to w.
func New(w io.Writer, opts ...Option) *Logger {
	o := options{level: DefaultLevel, timeField: "time"}
	for _, opt := range opts {
		opt(&o)
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w), stumpy.WithTimeField(o.timeField)),
		stumpy.L.WithLevel(o.level),
	).Logger()
}

// ParseLevel accepts the syslog keywords logiface prints ("debug", "info",
// "notice", "warning", "err", ...) plus "warn", "error" and "none".
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info", "informational":
		return logiface.LevelInformational, nil
	case "trace":
		return logiface.LevelTrace, nil
	case "debug":
		return logiface.LevelDebug, nil
	case "notice":
		return logiface.LevelNotice, nil
	case "warning", "warn":
		return logiface.LevelWarning, nil
	case "err", "error":
		return logiface.LevelError, nil
	case "crit", "critical":
		return logiface.LevelCritical, nil
	case "disabled", "none", "off":
		return logiface.LevelDisabled, nil
	}
	return logiface.LevelDisabled, fmt.Errorf("klog: unknown level %q", s)
}
