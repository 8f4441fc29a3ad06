// Package queue provides the bounded FIFO shared between interrupt context
// and task context.
package queue

import "sync/atomic"

// ArrayQueue is a fixed-capacity, lock-free, multi-producer multi-consumer
// FIFO. Push and Pop never block and never allocate, so both are safe to call
// from interrupt handlers.
//
// Every slot carries a sequence number: a slot at position pos is free for a
// producer when seq == pos and holds a value for a consumer when
// seq == pos+1. After a pop the slot is recycled for the next lap with
// seq == pos+capacity.
type ArrayQueue[T any] struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint64
	tail  atomic.Uint64
	slots []slot[T]
}

type slot[T any] struct {
	seq atomic.Uint64
	val T
}

// New returns an empty queue holding at most capacity values.
func New[T any](capacity int) *ArrayQueue[T] {
	if capacity <= 0 {
		panic("queue: capacity must be positive")
	}
	q := &ArrayQueue[T]{slots: make([]slot[T], capacity)}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

// Push appends v, returning false if the queue is full.
func (q *ArrayQueue[T]) Push(v T) bool {
	n := uint64(len(q.slots))
	pos := q.tail.Load()
	for {
		s := &q.slots[pos%n]
		seq := s.seq.Load()
		switch dif := int64(seq - pos); {
		case dif == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				s.val = v
				s.seq.Store(pos + 1)
				return true
			}
			pos = q.tail.Load()
		case dif < 0:
			return false
		default:
			pos = q.tail.Load()
		}
	}
}

// Pop removes the oldest value, returning false if the queue is empty.
func (q *ArrayQueue[T]) Pop() (T, bool) {
	var zero T
	n := uint64(len(q.slots))
	pos := q.head.Load()
	for {
		s := &q.slots[pos%n]
		seq := s.seq.Load()
		switch dif := int64(seq - (pos + 1)); {
		case dif == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				v := s.val
				s.val = zero
				s.seq.Store(pos + n)
				return v, true
			}
			pos = q.head.Load()
		case dif < 0:
			return zero, false
		default:
			pos = q.head.Load()
		}
	}
}

// Len returns the number of values currently claimed by producers and not
// yet popped. A push that is still in flight is counted.
func (q *ArrayQueue[T]) Len() int {
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		if q.tail.Load() != tail {
			continue
		}
		if head >= tail {
			return 0
		}
		return int(tail - head)
	}
}

// IsEmpty reports whether the queue holds no values.
func (q *ArrayQueue[T]) IsEmpty() bool { return q.Len() == 0 }

// IsFull reports whether a Push would currently fail.
func (q *ArrayQueue[T]) IsFull() bool { return q.Len() >= len(q.slots) }
