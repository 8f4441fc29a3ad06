package hal

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrHalted is returned by the host runners when the CPU halted for good
	// after a fatal kernel condition.
	ErrHalted = errors.New("cpu halted")
)

// Vector is an interrupt or exception number.
type Vector uint8

// Frame is the state the CPU saves when it takes an interrupt.
type Frame struct {
	InstructionPointer uint64
	CodeSegment        uint64
	CPUFlags           uint64
	StackPointer       uint64
	StackSegment       uint64
}

func (f *Frame) String() string {
	if f == nil {
		return "InterruptStackFrame{}"
	}
	return fmt.Sprintf(
		"InterruptStackFrame{instruction_pointer: %#x, code_segment: %#x, cpu_flags: %#x, stack_pointer: %#x, stack_segment: %#x}",
		f.InstructionPointer, f.CodeSegment, f.CPUFlags, f.StackPointer, f.StackSegment,
	)
}

// Dispatcher is the interrupt descriptor table as seen by the CPU.
type Dispatcher interface {
	// Dispatch runs the handler for v. errorCode is zero for vectors that do
	// not push one.
	Dispatch(v Vector, frame *Frame, errorCode uint64)
	// StackIndex reports whether v must run on a reserved interrupt stack.
	StackIndex(v Vector) (index int, ok bool)
}

// CPU is the processor as seen by the kernel.
//
// Interrupt handlers run with interrupts masked; they must not call
// DisableInterrupts or EnableInterrupts.
type CPU interface {
	LoadIDT(d Dispatcher)

	EnableInterrupts()
	DisableInterrupts()
	InterruptsEnabled() bool
	// EnableAndHalt enables interrupts and halts until the next one arrives,
	// as one step.
	EnableAndHalt()
	// Halt stops the CPU for good. It does not return.
	Halt()

	// Breakpoint raises the breakpoint exception from the calling context.
	Breakpoint()
	// ReadCR2 returns the address of the last page fault.
	ReadCR2() uint64
}

// PIC is a chained pair of interrupt controllers.
type PIC interface {
	// Init remaps the primary and secondary controllers to the given vector
	// offsets and unmasks every line.
	Init(offset1, offset2 uint8)
	// NotifyEndOfInterrupt acknowledges the interrupt delivered on v.
	NotifyEndOfInterrupt(v Vector)
}

// Ports is the I/O port space.
type Ports interface {
	ReadPort8(port uint16) uint8
	WritePort32(port uint16, v uint32)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Serial is the debug serial line. Kernel logs are written to it.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// HAL provides the only contact point between the kernel and the machine.
type HAL interface {
	CPU() CPU
	PIC() PIC
	Ports() Ports
	Serial() Serial
	Display() Display
}
