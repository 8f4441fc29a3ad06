// Package executor implements the cooperative scheduler.
//
// The executor owns every spawned task. Ready task ids wait in a bounded
// queue; wakers push ids back onto it, possibly from interrupt context. When
// nothing is ready the executor halts the CPU until the next interrupt.
package executor

import (
	"context"

	"github.com/joeycumines/logiface"
	"go.opentelemetry.io/otel/metric"

	"newtown/kernel"
	"newtown/kernel/queue"
	"newtown/kernel/task"
)

// DefaultCapacity is the ready queue capacity used when none is configured.
const DefaultCapacity = 100

// CPU is the part of the processor the executor needs to idle safely.
type CPU interface {
	DisableInterrupts()
	EnableInterrupts()
	// EnableAndHalt enables interrupts and halts until the next one, with no
	// window in between where an interrupt could be delivered.
	EnableAndHalt()
}

// Option configures an Executor.
type Option func(*options)

type options struct {
	capacity int
	log      *logiface.Logger[logiface.Event]
	meter    metric.Meter
}

// WithCapacity sets the ready queue capacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(o *options) { o.log = l }
}

// WithMeter records scheduling counters with m.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		if m != nil {
			o.meter = m
		}
	}
}

// Executor polls tasks until they complete or are killed.
//
// Spawn, Run and RunReady must be called from task context only; the task
// table is not shared with interrupt handlers.
type Executor struct {
	reg    *task.Registry
	cpu    CPU
	ready  *queue.ArrayQueue[task.ID]
	tasks  map[task.ID]*task.Task
	wakers map[task.ID]*task.Context
	log    *logiface.Logger[logiface.Event]
	m      instruments
}

// New returns an executor recording task lifecycles in reg.
func New(reg *task.Registry, cpu CPU, opts ...Option) *Executor {
	o := options{capacity: DefaultCapacity, meter: noopMeter}
	for _, opt := range opts {
		opt(&o)
	}
	e := &Executor{
		reg:    reg,
		cpu:    cpu,
		ready:  queue.New[task.ID](o.capacity),
		tasks:  make(map[task.ID]*task.Task),
		wakers: make(map[task.ID]*task.Context),
		log:    o.log,
	}
	e.m = newInstruments(o.meter, reg)
	return e
}

// Len returns the number of live tasks.
func (e *Executor) Len() int { return len(e.tasks) }

// Spawn adds t to the schedule and queues its first poll.
//
// A duplicate id or a full ready queue is a kernel invariant violation and
// panics with a *kernel.Error.
func (e *Executor) Spawn(t *task.Task) {
	id := t.ID()
	if _, dup := e.tasks[id]; dup {
		panic(kernel.Errorf("executor", "task with id %d already spawned", id))
	}
	e.reg.Register(id, t.Name())
	e.tasks[id] = t
	e.enqueue(id)
	e.reg.SetState(id, task.Ready)

	e.log.Debug().
		Uint64("task", uint64(id)).
		Str("name", t.Name()).
		Log("task spawned")
}

func (e *Executor) enqueue(id task.ID) {
	if !e.ready.Push(id) {
		panic(kernel.Errorf("executor", "ready queue full"))
	}
}

// Run schedules tasks forever.
func (e *Executor) Run() {
	for {
		e.RunReady()
		e.sleepIfIdle()
	}
}

// RunReady polls every queued task once, applying kill requests before the
// first poll, after each poll and once the queue is drained.
func (e *Executor) RunReady() {
	e.applyKillRequests()
	for {
		id, ok := e.ready.Pop()
		if !ok {
			break
		}
		t, ok := e.tasks[id]
		if !ok {
			// completed or killed since it was woken
			continue
		}
		cx, ok := e.wakers[id]
		if !ok {
			cx = task.NewContext(&taskWaker{id: id, e: e})
			e.wakers[id] = cx
		}

		e.reg.SetState(id, task.Running)
		e.reg.BumpPollCount(id)
		e.m.polls.Add(context.Background(), 1)

		switch t.Poll(cx) {
		case task.Completed:
			e.remove(id)
			e.m.completions.Add(context.Background(), 1)
			e.log.Debug().
				Uint64("task", uint64(id)).
				Str("name", t.Name()).
				Log("task completed")
		default:
			e.reg.SetState(id, task.Waiting)
		}
		e.applyKillRequests()
	}
	e.applyKillRequests()
}

func (e *Executor) remove(id task.ID) {
	delete(e.tasks, id)
	delete(e.wakers, id)
	e.reg.Unregister(id)
}

// applyKillRequests drops every task with a pending kill request. Killed
// tasks are not polled again.
func (e *Executor) applyKillRequests() {
	for _, id := range e.reg.DrainKillRequests() {
		t, ok := e.tasks[id]
		e.remove(id)
		if !ok {
			continue
		}
		e.m.kills.Add(context.Background(), 1)
		e.log.Info().
			Uint64("task", uint64(id)).
			Str("name", t.Name()).
			Log("task killed")
	}
}

// sleepIfIdle halts the CPU when the ready queue is empty. Interrupts are
// disabled across the emptiness check so a wake cannot slip in between the
// check and the halt.
func (e *Executor) sleepIfIdle() {
	e.cpu.DisableInterrupts()
	if e.ready.IsEmpty() {
		e.m.idleHalts.Add(context.Background(), 1)
		e.cpu.EnableAndHalt()
		return
	}
	e.cpu.EnableInterrupts()
}

// taskWaker re-queues its task. It may run in interrupt context.
type taskWaker struct {
	id task.ID
	e  *Executor
}

func (w *taskWaker) Wake() { w.e.enqueue(w.id) }
