package task

import "sync/atomic"

const (
	wakerWaiting     uint32 = 0
	wakerRegistering uint32 = 1
	wakerWaking      uint32 = 2
)

// AtomicWaker stores at most one Waker and hands it to whichever side wakes
// first. Register runs in task context; Wake and Take may run in interrupt
// context. None of them block.
//
// If Wake races with Register, the registering side wakes the new waker
// itself, so a wake is never lost.
type AtomicWaker struct {
	state atomic.Uint32
	waker Waker
}

// Register stores w, replacing any previous waker.
func (a *AtomicWaker) Register(w Waker) {
	for {
		switch a.state.Load() {
		case wakerWaiting:
			if !a.state.CompareAndSwap(wakerWaiting, wakerRegistering) {
				continue
			}
			a.waker = w
			if a.state.CompareAndSwap(wakerRegistering, wakerWaiting) {
				return
			}
			// A concurrent Wake set the waking bit while we held the slot.
			stored := a.waker
			a.waker = nil
			a.state.Store(wakerWaiting)
			if stored != nil {
				stored.Wake()
			}
			return
		default:
			// The previous waker is being consumed by Wake. Wake the new one
			// directly so the caller is polled again.
			w.Wake()
			return
		}
	}
}

// Take removes and returns the stored waker, or nil.
func (a *AtomicWaker) Take() Waker {
	switch a.state.Or(wakerWaking) {
	case wakerWaiting:
		w := a.waker
		a.waker = nil
		a.state.And(^wakerWaking)
		return w
	default:
		// A register is in progress (it will observe the waking bit and
		// wake), or another Take/Wake already owns the slot.
		return nil
	}
}

// Wake takes the stored waker, if any, and invokes it.
func (a *AtomicWaker) Wake() {
	if w := a.Take(); w != nil {
		w.Wake()
	}
}
