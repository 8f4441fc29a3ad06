// Package task defines the unit of cooperative work scheduled by the
// executor and the process-wide registry describing live tasks.
package task

import (
	"strconv"
	"sync/atomic"
)

// DefaultName is used by New for tasks spawned without a name.
const DefaultName = "task"

// ID identifies a task. IDs are allocated in increasing order and never
// reused.
type ID uint64

var nextID atomic.Uint64

func newID() ID {
	return ID(nextID.Add(1) - 1)
}

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Status is the result of polling a Future.
type Status uint8

const (
	// Suspended means the future has arranged for its waker to be invoked
	// once it can make progress.
	Suspended Status = iota
	Completed
)

func (s Status) String() string {
	switch s {
	case Suspended:
		return "Suspended"
	case Completed:
		return "Completed"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Future is a computation advanced by repeated polls.
//
// Poll must not block. Before returning Suspended it must register
// cx.Waker() with whatever event source will let it continue.
type Future interface {
	Poll(cx *Context) Status
}

// FutureFunc adapts a function to the Future interface.
type FutureFunc func(cx *Context) Status

func (f FutureFunc) Poll(cx *Context) Status { return f(cx) }

// Task pairs a Future with its ID and a static diagnostic name.
type Task struct {
	id     ID
	name   string
	future Future
}

// New returns a task named DefaultName.
func New(f Future) *Task {
	return NewNamed(DefaultName, f)
}

// NewNamed returns a task with the given name. A fresh ID is allocated.
func NewNamed(name string, f Future) *Task {
	if f == nil {
		panic("task: nil future")
	}
	if name == "" {
		name = DefaultName
	}
	return &Task{id: newID(), name: name, future: f}
}

func (t *Task) ID() ID { return t.id }

func (t *Task) Name() string { return t.name }

// Poll advances the task once.
func (t *Task) Poll(cx *Context) Status {
	return t.future.Poll(cx)
}
