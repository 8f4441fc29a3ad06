// Package tick bridges the timer interrupt to suspended tasks.
//
// A Source owns the tick counter and a fixed pool of wake slots. The timer
// handler calls Tick, which bumps the counter and wakes every stream in every
// slot. Tasks observe the counter through a Stream, which registers its
// task's waker in its own cell only when it has nothing new to report.
package tick

import (
	"sync"
	"sync/atomic"

	"newtown/kernel/task"
)

// DefaultPoolSize is the number of wake slots used when NewSource is given a
// non-positive size.
const DefaultPoolSize = 4

// Test seams around registration in Stream.PollNext.
var (
	hookBeforeRegister func()
	hookAfterRegister  func()
)

// Source is the tick counter together with its wake slots.
type Source struct {
	count atomic.Uint64
	next  atomic.Uint64
	slots []wakeSlot

	// mu serialises membership changes. Tick never takes it.
	mu sync.Mutex
}

// wakeSlot is the set of stream cells sharing one pool entry. The member
// list is copy-on-write so Tick can walk it without locking or allocating.
type wakeSlot struct {
	members atomic.Pointer[[]*task.AtomicWaker]
}

func (w *wakeSlot) wake() {
	if m := w.members.Load(); m != nil {
		for _, c := range *m {
			c.Wake()
		}
	}
}

func (w *wakeSlot) size() int {
	if m := w.members.Load(); m != nil {
		return len(*m)
	}
	return 0
}

// NewSource returns a Source at tick 0 with poolSize wake slots.
func NewSource(poolSize int) *Source {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Source{slots: make([]wakeSlot, poolSize)}
}

// Now returns the current tick count.
func (s *Source) Now() uint64 { return s.count.Load() }

// PoolSize returns the number of wake slots.
func (s *Source) PoolSize() int { return len(s.slots) }

// Tick advances the counter by one and wakes every stream registered in any
// slot. It is called from the timer interrupt handler: it takes no locks and
// does not allocate.
func (s *Source) Tick() uint64 {
	n := s.count.Add(1)
	for i := range s.slots {
		s.slots[i].wake()
	}
	return n
}

// Subscribe returns a new stream that reports ticks after the current one.
//
// Slots are claimed round-robin. Streams sharing a slot are all woken by
// every tick, so sharing costs spurious polls but never a lost wake.
func (s *Source) Subscribe() *Stream {
	idx := (s.next.Add(1) - 1) % uint64(len(s.slots))
	st := &Stream{src: s, slot: &s.slots[idx], cell: new(task.AtomicWaker), last: s.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	var members []*task.AtomicWaker
	if m := st.slot.members.Load(); m != nil {
		members = append(members, *m...)
	}
	members = append(members, st.cell)
	st.slot.members.Store(&members)
	return st
}

func (s *Source) unsubscribe(st *Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := st.slot.members.Load()
	if m == nil {
		return
	}
	members := make([]*task.AtomicWaker, 0, len(*m))
	for _, c := range *m {
		if c != st.cell {
			members = append(members, c)
		}
	}
	st.slot.members.Store(&members)
}

// Stream is a non-restartable sequence of strictly increasing tick values.
// A Stream belongs to one task and must not be polled concurrently.
type Stream struct {
	src    *Source
	slot   *wakeSlot
	cell   *task.AtomicWaker
	last   uint64
	closed bool
}

// PollNext returns the latest tick count if it is greater than the last value
// this stream reported. Otherwise it registers cx's waker and returns
// Suspended; the next Tick re-polls the task.
func (st *Stream) PollNext(cx *task.Context) (uint64, task.Status) {
	if now := st.src.Now(); now > st.last {
		st.last = now
		return now, task.Completed
	}

	if hookBeforeRegister != nil {
		hookBeforeRegister()
	}
	st.cell.Register(cx.Waker())
	if hookAfterRegister != nil {
		hookAfterRegister()
	}

	// A tick between the first check and the registration would otherwise be
	// missed until the next one.
	if now := st.src.Now(); now > st.last {
		st.cell.Take()
		st.last = now
		return now, task.Completed
	}
	return 0, task.Suspended
}

// Last returns the last tick value reported, or the tick at subscription.
func (st *Stream) Last() uint64 { return st.last }

// Close removes the stream from its wake slot. Close is idempotent.
func (st *Stream) Close() {
	if st.closed {
		return
	}
	st.closed = true
	st.cell.Take()
	st.src.unsubscribe(st)
}
