package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrExitFailure is returned when the kernel powers off through the debug
// exit device with a code other than ExitSuccess.
var ErrExitFailure = errors.New("kernel exited with failure")

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Hz is the timer interrupt rate.
	Hz int
	// Ticks stops the runner after that many timer interrupts (0 = forever).
	Ticks uint64
	// Input, if set, is typed on the keyboard. A terminal is put into
	// unbuffered mode while the runner is active.
	Input io.Reader
}

// RunHeadless boots the kernel without opening a window. newApp is called
// once with the machine; the returned step function, if any, runs after
// every timer interrupt is raised.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost(cfg.Hz)
	defer h.close()

	if cfg.Input != nil {
		restore, err := h.attachInput(cfg.Input)
		if err != nil {
			return fmt.Errorf("keyboard input: %w", err)
		}
		defer restore()
	}

	step := newApp(h)

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.cpu.halted:
			return ErrHalted
		case code := <-h.ports.power:
			return exitError(code)
		case <-t.C:
			h.pit.stepN(1)
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

func exitError(code uint32) error {
	if code == ExitSuccess {
		return nil
	}
	return fmt.Errorf("%w: code %#x", ErrExitFailure, code)
}
