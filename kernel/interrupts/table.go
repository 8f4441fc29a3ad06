// Package interrupts installs the exception and hardware interrupt handlers
// and connects the timer and keyboard lines to the kernel's wake bridge.
package interrupts

import (
	"newtown/hal"
	"newtown/kernel"
)

// Interrupt controller vector offsets. IRQ n of the primary controller is
// delivered on PIC1Offset+n.
const (
	PIC1Offset uint8 = 32
	PIC2Offset uint8 = PIC1Offset + 8
)

// DoubleFaultStackIndex is the interrupt stack reserved for double faults, so
// a fault caused by a kernel stack overflow can still be reported.
const DoubleFaultStackIndex = 0

// Vectors serviced by the kernel.
const (
	Breakpoint  hal.Vector = 3
	DoubleFault hal.Vector = 8
	PageFault   hal.Vector = 14
	Timer       hal.Vector = hal.Vector(PIC1Offset)
	Keyboard    hal.Vector = Timer + 1
)

// Handler handles an interrupt that does not push an error code.
type Handler func(frame *hal.Frame)

// HandlerWithCode handles an exception that pushes an error code.
type HandlerWithCode func(errorCode uint64, frame *hal.Frame)

// panicFn is mocked by tests.
var panicFn = kernel.Panic

type entry struct {
	handler  Handler
	withCode HandlerWithCode
	stack    int
	hasStack bool
}

// Table maps vectors to handlers. It implements hal.Dispatcher.
type Table struct {
	entries [256]entry
}

// EntryOptions configures an installed entry.
type EntryOptions struct {
	e *entry
}

// SetStackIndex makes the entry run on the given interrupt stack.
func (o EntryOptions) SetStackIndex(i int) {
	o.e.stack = i
	o.e.hasStack = true
}

// Set installs h for v.
func (t *Table) Set(v hal.Vector, h Handler) EntryOptions {
	t.entries[v] = entry{handler: h}
	return EntryOptions{e: &t.entries[v]}
}

// SetWithCode installs h for an exception vector that pushes an error code.
func (t *Table) SetWithCode(v hal.Vector, h HandlerWithCode) EntryOptions {
	t.entries[v] = entry{withCode: h}
	return EntryOptions{e: &t.entries[v]}
}

// StackIndex implements hal.Dispatcher.
func (t *Table) StackIndex(v hal.Vector) (int, bool) {
	e := &t.entries[v]
	return e.stack, e.hasStack
}

// Dispatch implements hal.Dispatcher. A vector with no handler is escalated
// to the double fault handler. A Go panic escaping a handler is a kernel bug
// and goes to the kernel panic path.
func (t *Table) Dispatch(v hal.Vector, frame *hal.Frame, errorCode uint64) {
	defer func() {
		if r := recover(); r != nil {
			panicFn(r)
		}
	}()

	e := &t.entries[v]
	switch {
	case e.handler != nil:
		e.handler(frame)
	case e.withCode != nil:
		e.withCode(errorCode, frame)
	case t.entries[DoubleFault].withCode != nil && v != DoubleFault:
		t.entries[DoubleFault].withCode(0, frame)
	default:
		panicFn(kernel.Errorf("interrupts", "unhandled interrupt %d", v))
	}
}
