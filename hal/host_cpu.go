package hal

import (
	"runtime"
	"sync"
	"sync/atomic"
)

const (
	vectorBreakpoint Vector = 3
	vectorPageFault  Vector = 14

	interruptStacks = 7

	flagsReserved  = 0x2
	flagsInterrupt = 0x200

	kernelCodeSegment = 0x8
	kernelDataSegment = 0x10
)

type pendingInterrupt struct {
	v         Vector
	errorCode uint64
}

// hostCPU simulates the interrupt flag of a single CPU.
//
// Task context is the goroutine that calls Enable/DisableInterrupts; it is
// the only one that touches masked. gate is held whenever task context runs
// with interrupts disabled and while a handler runs, so handlers never
// overlap each other or a masked critical section. Interrupts are delivered
// one at a time by loop.
type hostCPU struct {
	gate   sync.Mutex
	masked atomic.Bool

	idt  atomic.Pointer[dispatcherRef]
	intr chan pendingInterrupt
	wake chan struct{}

	ist [interruptStacks]chan func()

	cr2 atomic.Uint64

	halted   chan struct{}
	haltOnce sync.Once
	stop     chan struct{}
	stopOnce sync.Once
}

type dispatcherRef struct{ d Dispatcher }

func newHostCPU() *hostCPU {
	c := &hostCPU{
		intr:   make(chan pendingInterrupt, 64),
		wake:   make(chan struct{}, 1),
		halted: make(chan struct{}),
		stop:   make(chan struct{}),
	}
	// Interrupts start disabled.
	c.gate.Lock()
	c.masked.Store(true)

	for i := range c.ist {
		ch := make(chan func())
		c.ist[i] = ch
		go func() {
			for {
				select {
				case fn := <-ch:
					fn()
				case <-c.stop:
					return
				}
			}
		}()
	}
	go c.loop()
	return c
}

func (c *hostCPU) LoadIDT(d Dispatcher) {
	c.idt.Store(&dispatcherRef{d: d})
}

func (c *hostCPU) EnableInterrupts() {
	if c.masked.Load() {
		c.masked.Store(false)
		c.gate.Unlock()
	}
}

func (c *hostCPU) DisableInterrupts() {
	if !c.masked.Load() {
		c.gate.Lock()
		c.masked.Store(true)
	}
}

func (c *hostCPU) InterruptsEnabled() bool { return !c.masked.Load() }

// EnableAndHalt behaves like "sti; hlt": an interrupt that arrives after the
// caller disabled interrupts still ends the halt.
func (c *hostCPU) EnableAndHalt() {
	if !c.masked.Load() {
		c.gate.Lock()
		c.masked.Store(true)
	}
	// Wakes posted before the caller masked interrupts were already visible
	// to it; only interrupts from here on may end the halt.
	select {
	case <-c.wake:
	default:
	}
	c.masked.Store(false)
	c.gate.Unlock()

	select {
	case <-c.wake:
	case <-c.stop:
		// Powered off: nothing will ever wake the CPU again.
		select {}
	}
}

func (c *hostCPU) Halt() {
	c.haltOnce.Do(func() { close(c.halted) })
	select {}
}

func (c *hostCPU) Breakpoint() {
	frame := c.frame(callerPC(2))
	if !c.masked.Load() {
		c.gate.Lock()
		defer c.gate.Unlock()
	}
	c.dispatch(vectorBreakpoint, frame, 0)
}

func (c *hostCPU) ReadCR2() uint64 { return c.cr2.Load() }

// pageFault raises a page fault at addr as if the current instruction had
// accessed it.
func (c *hostCPU) pageFault(addr, errorCode uint64) {
	c.cr2.Store(addr)
	c.interrupt(vectorPageFault, errorCode)
}

// interrupt queues v for delivery. It never blocks; the interrupt is dropped
// if too many are already pending.
func (c *hostCPU) interrupt(v Vector, errorCode uint64) {
	select {
	case c.intr <- pendingInterrupt{v: v, errorCode: errorCode}:
	default:
	}
}

func (c *hostCPU) loop() {
	for {
		select {
		case p := <-c.intr:
			c.gate.Lock()
			c.dispatch(p.v, c.frame(0), p.errorCode)
			select {
			case c.wake <- struct{}{}:
			default:
			}
			c.gate.Unlock()
		case <-c.stop:
			return
		}
	}
}

func (c *hostCPU) dispatch(v Vector, frame *Frame, errorCode uint64) {
	ref := c.idt.Load()
	if ref == nil || ref.d == nil {
		// No table: the machine would triple fault and reset.
		c.Halt()
		return
	}
	d := ref.d
	if idx, ok := d.StackIndex(v); ok && idx >= 0 && idx < len(c.ist) {
		done := make(chan struct{})
		c.ist[idx] <- func() {
			defer close(done)
			d.Dispatch(v, frame, errorCode)
		}
		<-done
		return
	}
	d.Dispatch(v, frame, errorCode)
}

func (c *hostCPU) frame(pc uintptr) *Frame {
	flags := uint64(flagsReserved)
	if !c.masked.Load() {
		flags |= flagsInterrupt
	}
	return &Frame{
		InstructionPointer: uint64(pc),
		CodeSegment:        kernelCodeSegment,
		CPUFlags:           flags,
		StackSegment:       kernelDataSegment,
	}
}

func (c *hostCPU) close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip+1, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}
