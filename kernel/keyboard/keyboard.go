// Package keyboard buffers raw scancodes between the keyboard interrupt
// handler and the task that decodes them.
package keyboard

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"

	"newtown/kernel"
	"newtown/kernel/queue"
	"newtown/kernel/task"
)

// DefaultCapacity is the scancode queue capacity used when none is given.
const DefaultCapacity = 100

// Queue is the scancode queue. The zero value is valid but uninitialised:
// scancodes pushed before Init are dropped. Drops are counted in interrupt
// context and logged as warnings by the consuming Stream.
type Queue struct {
	q     atomic.Pointer[queue.ArrayQueue[byte]]
	waker task.AtomicWaker
	taken atomic.Bool
	log   *logiface.Logger[logiface.Event]

	early atomic.Uint64
	full  atomic.Uint64
}

// New returns an initialised queue.
func New(capacity int, log *logiface.Logger[logiface.Event]) *Queue {
	k := &Queue{log: log}
	k.Init(capacity)
	return k
}

// Init allocates the queue. Only the first call has any effect.
func (k *Queue) Init(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	k.q.CompareAndSwap(nil, queue.New[byte](capacity))
}

// AddScancode is called by the keyboard interrupt handler. It does not
// block, allocate or log.
func (k *Queue) AddScancode(code byte) {
	q := k.q.Load()
	if q == nil {
		k.early.Add(1)
		return
	}
	if !q.Push(code) {
		k.full.Add(1)
	}
	k.waker.Wake()
}

// Pop returns the next scancode without waiting.
func (k *Queue) Pop() (byte, bool) {
	q := k.q.Load()
	if q == nil {
		return 0, false
	}
	return q.Pop()
}

// Dropped returns the number of scancodes lost to a full or uninitialised
// queue.
func (k *Queue) Dropped() uint64 { return k.early.Load() + k.full.Load() }

// Stream returns the single consumer stream for the queue. It panics with a
// *kernel.Error if called twice.
func (k *Queue) Stream() *Stream {
	if !k.taken.CompareAndSwap(false, true) {
		panic(kernel.Errorf("keyboard", "scancode stream already taken"))
	}
	return &Stream{k: k}
}

// Stream yields scancodes to one task.
type Stream struct {
	k *Queue

	// drop counts already logged
	early, full uint64
}

func (s *Stream) reportDrops() {
	if n := s.k.early.Load(); n != s.early {
		s.k.log.Warning().Uint64("dropped", n-s.early).Log("scancode queue uninitialized")
		s.early = n
	}
	if n := s.k.full.Load(); n != s.full {
		s.k.log.Warning().Uint64("dropped", n-s.full).Log("scancode queue full; dropping keyboard input")
		s.full = n
	}
}

// PollNext returns the next scancode, or registers cx's waker and returns
// Suspended when the queue is empty.
func (s *Stream) PollNext(cx *task.Context) (byte, task.Status) {
	s.reportDrops()
	if b, ok := s.k.Pop(); ok {
		return b, task.Completed
	}
	s.k.waker.Register(cx.Waker())
	if b, ok := s.k.Pop(); ok {
		s.k.waker.Take()
		return b, task.Completed
	}
	return 0, task.Suspended
}

// Pop returns the next scancode without registering for a wake.
func (s *Stream) Pop() (byte, bool) {
	s.reportDrops()
	return s.k.Pop()
}
