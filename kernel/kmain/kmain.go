// Package kmain owns the kernel context object and the boot sequence.
//
// The Kernel is the only process-wide state: interrupt handlers are closures
// bound to its tick source and scancode queue when the table is built, and
// tasks receive what they need at spawn time.
package kmain

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joeycumines/logiface"
	"go.opentelemetry.io/otel/metric"

	"newtown/driver/vga"
	"newtown/hal"
	"newtown/internal/buildinfo"
	"newtown/kernel"
	"newtown/kernel/executor"
	"newtown/kernel/interrupts"
	"newtown/kernel/keyboard"
	"newtown/kernel/task"
	"newtown/kernel/tick"
	"newtown/tasks/shell"
	"newtown/tasks/statusbar"
)

type Config struct {
	ReadyQueueCapacity    int
	WakerPoolSize         int
	ScancodeQueueCapacity int

	Log   *logiface.Logger[logiface.Event]
	Meter metric.Meter

	// BootID identifies this boot in logs and uname. A new random id is used
	// when zero.
	BootID uuid.UUID
}

// Kernel is the kernel context object.
type Kernel struct {
	BootID   uuid.UUID
	Ticks    *tick.Source
	Keyboard *keyboard.Queue
	Registry *task.Registry
	Executor *executor.Executor
	Writer   *vga.Writer
	Log      *logiface.Logger[logiface.Event]

	hal   hal.HAL
	meter metric.Meter
	table *interrupts.Table
}

var active atomic.Pointer[Kernel]

// Active returns the booted kernel, or nil before Boot.
func Active() *Kernel { return active.Load() }

// New builds the kernel objects. It does not touch the CPU.
func New(h hal.HAL, cfg Config) *Kernel {
	id := cfg.BootID
	if id == uuid.Nil {
		id = uuid.New()
	}
	reg := task.NewRegistry()
	k := &Kernel{
		BootID:   id,
		Ticks:    tick.NewSource(cfg.WakerPoolSize),
		Keyboard: keyboard.New(cfg.ScancodeQueueCapacity, cfg.Log),
		Registry: reg,
		Writer:   vga.NewWriter(),
		Log:      cfg.Log,
		hal:      h,
		meter:    cfg.Meter,
	}
	k.Executor = executor.New(reg, h.CPU(),
		executor.WithCapacity(cfg.ReadyQueueCapacity),
		executor.WithLogger(cfg.Log),
		executor.WithMeter(cfg.Meter),
	)
	if d := h.Display(); d != nil {
		if screen := vga.NewDisplay(vga.FramebufferDisplayer(d.Framebuffer())); screen != nil {
			k.Writer.Attach(screen)
		}
	}
	return k
}

// Boot brings the machine up and spawns the initial tasks. The executor is
// not started; call Run.
func (k *Kernel) Boot() {
	active.Store(k)
	kernel.SetHaltFunc(k.hal.CPU().Halt)
	kernel.SetPanicHandler(k.onPanic)

	_, _ = fmt.Fprintln(k.Writer, "Hello World!")
	k.Log.Info().
		Str("boot_id", k.BootID.String()).
		Str("version", buildinfo.Short()).
		Log("booting")

	k.table = interrupts.Init(interrupts.Config{
		CPU:      k.hal.CPU(),
		PIC:      k.hal.PIC(),
		Ports:    k.hal.Ports(),
		Ticks:    k.Ticks,
		Keyboard: k.Keyboard,
		Log:      k.Log,
		Meter:    k.meter,
	})
	k.Log.Info().Log("interrupts enabled")

	k.hal.CPU().Breakpoint()
	k.Log.Info().Log("breakpoint exception handled, resuming")

	k.Executor.Spawn(task.NewNamed(statusbar.Name, statusbar.New(k.Writer, k.Ticks)))
	k.Executor.Spawn(task.NewNamed(shell.Name, shell.New(shell.Config{
		Writer:   k.Writer,
		Keys:     k.Keyboard.Stream(),
		Ticks:    k.Ticks,
		Registry: k.Registry,
		Ports:    k.hal.Ports(),
		BootID:   k.BootID,
		Log:      k.Log,
	})))
}

// Run schedules tasks forever. A Go panic escaping a task is a kernel panic.
func (k *Kernel) Run() {
	defer func() {
		if r := recover(); r != nil {
			kernel.Panic(r)
		}
	}()
	k.Executor.Run()
}

// Start boots k and runs it on a new goroutine, the host's stand-in for the
// boot processor.
func Start(h hal.HAL, cfg Config) *Kernel {
	k := New(h, cfg)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				kernel.Panic(r)
			}
		}()
		k.Boot()
		k.Run()
	}()
	return k
}

var panicColor = vga.NewColorCode(vga.LightRed, vga.Black)

func (k *Kernel) onPanic(info kernel.PanicInfo) {
	ev := k.Log.Crit()
	if info.Err != nil {
		ev = ev.Str("module", info.Err.Module).Str("message", info.Err.Message)
	}
	ev.Str("stack", string(info.Stack)).Log("KERNEL PANIC")

	msg := "unknown"
	if info.Err != nil {
		msg = info.Err.Error()
	}
	k.Writer.SetColor(panicColor)
	_, _ = fmt.Fprintf(k.Writer, "\nKERNEL PANIC: %s\n", strings.TrimSpace(msg))
}
