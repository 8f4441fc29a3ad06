package interrupts

import (
	"context"
	"fmt"

	"github.com/joeycumines/logiface"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"newtown/hal"
	"newtown/kernel"
	"newtown/kernel/keyboard"
	"newtown/kernel/tick"
)

// Config holds what the handlers touch. Handlers are closures over it; they
// never take a lock held by task context.
type Config struct {
	CPU   hal.CPU
	PIC   hal.PIC
	Ports hal.Ports

	Ticks    *tick.Source
	Keyboard *keyboard.Queue

	Log   *logiface.Logger[logiface.Event]
	Meter metric.Meter
}

type handlers struct {
	cfg   Config
	count metric.Int64Counter
	attrs map[hal.Vector]metric.AddOption
}

// NewTable returns a table with every kernel handler installed.
func NewTable(cfg Config) *Table {
	meter := cfg.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("newtown/kernel/interrupts")
	}
	count, err := meter.Int64Counter("newtown.interrupts",
		metric.WithDescription("Interrupts and exceptions serviced."))
	if err != nil {
		count, _ = noop.NewMeterProvider().Meter("").Int64Counter("newtown.interrupts")
	}

	h := &handlers{cfg: cfg, count: count, attrs: make(map[hal.Vector]metric.AddOption)}
	for v, name := range map[hal.Vector]string{
		Breakpoint:  "breakpoint",
		DoubleFault: "double_fault",
		PageFault:   "page_fault",
		Timer:       "timer",
		Keyboard:    "keyboard",
	} {
		h.attrs[v] = metric.WithAttributeSet(attribute.NewSet(attribute.String("vector", name)))
	}

	var t Table
	t.Set(Breakpoint, h.breakpoint)
	t.SetWithCode(PageFault, h.pageFault)
	t.SetWithCode(DoubleFault, h.doubleFault).SetStackIndex(DoubleFaultStackIndex)
	t.Set(Timer, h.timer)
	t.Set(Keyboard, h.keyboard)
	return &t
}

// Init remaps the interrupt controllers, loads a fresh table into the CPU and
// enables interrupts.
func Init(cfg Config) *Table {
	t := NewTable(cfg)
	cfg.CPU.LoadIDT(t)
	cfg.PIC.Init(PIC1Offset, PIC2Offset)
	cfg.CPU.EnableInterrupts()
	return t
}

func (h *handlers) record(v hal.Vector) {
	h.count.Add(context.Background(), 1, h.attrs[v])
}

func (h *handlers) breakpoint(frame *hal.Frame) {
	h.record(Breakpoint)
	h.cfg.Log.Warning().
		Str("frame", frame.String()).
		Log("EXCEPTION: BREAKPOINT")
}

func (h *handlers) pageFault(errorCode uint64, frame *hal.Frame) {
	h.record(PageFault)
	code := PageFaultErrorCode(errorCode)
	h.cfg.Log.Crit().
		Str("address", fmt.Sprintf("%#x", h.cfg.CPU.ReadCR2())).
		Str("error_code", code.String()).
		Str("reason", code.Reason()).
		Str("frame", frame.String()).
		Log("EXCEPTION: PAGE FAULT")
	h.cfg.CPU.Halt()
}

func (h *handlers) doubleFault(_ uint64, frame *hal.Frame) {
	h.record(DoubleFault)
	panicFn(kernel.Errorf("interrupts", "EXCEPTION: DOUBLE FAULT\n%s", frame))
}

func (h *handlers) timer(*hal.Frame) {
	h.record(Timer)
	h.cfg.Ticks.Tick()
	h.cfg.PIC.NotifyEndOfInterrupt(Timer)
}

func (h *handlers) keyboard(*hal.Frame) {
	h.record(Keyboard)
	code := h.cfg.Ports.ReadPort8(hal.PortKeyboardData)
	h.cfg.Keyboard.AddScancode(code)
	h.cfg.PIC.NotifyEndOfInterrupt(Keyboard)
}
