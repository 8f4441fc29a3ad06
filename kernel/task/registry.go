package task

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"newtown/kernel"
)

// State is the lifecycle state of a live task.
type State uint8

const (
	Ready State = iota
	Running
	Waiting
	// KillRequested is sticky: once set, only removal clears it.
	KillRequested
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Waiting:
		return "Waiting"
	case KillRequested:
		return "KillRequested"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// KillResult is the outcome of Registry.RequestKill.
type KillResult uint8

const (
	Queued KillResult = iota
	AlreadyQueued
	NotFound
)

func (r KillResult) String() string {
	switch r {
	case Queued:
		return "Queued"
	case AlreadyQueued:
		return "AlreadyQueued"
	case NotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("KillResult(%d)", uint8(r))
	}
}

// Snapshot is a copy of one registry entry.
type Snapshot struct {
	ID        ID
	Name      string
	State     State
	PollCount uint64
}

type entry struct {
	name      string
	state     State
	pollCount uint64
}

// Registry records the lifecycle of live tasks independently of the task
// objects, so it can be inspected without going through the executor.
//
// An entry exists exactly while the executor holds the task. All methods take
// a short lock and never call out while holding it.
type Registry struct {
	mu      sync.Mutex
	entries map[ID]*entry
	kills   map[ID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ID]*entry),
		kills:   make(map[ID]struct{}),
	}
}

// Register inserts id in state Ready. It panics with a *kernel.Error if id
// is already present.
func (r *Registry) Register(id ID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		panic(kernel.Errorf("registry", "duplicate task id %d", id))
	}
	r.entries[id] = &entry{name: name, state: Ready}
}

// Unregister removes id and any pending kill request for it.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	delete(r.entries, id)
	delete(r.kills, id)
	r.mu.Unlock()
}

// SetState updates the state of id. A KillRequested entry keeps its state.
// Unknown ids are ignored.
func (r *Registry) SetState(id ID, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return
	}
	if e.state == KillRequested && s != KillRequested {
		return
	}
	e.state = s
}

// BumpPollCount increments the poll counter of id if present.
func (r *Registry) BumpPollCount(id ID) {
	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		e.pollCount++
	}
	r.mu.Unlock()
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id ID) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{ID: id, Name: e.name, State: e.state, PollCount: e.pollCount}, true
}

// Snapshot returns every entry ordered by id.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.Lock()
	out := make([]Snapshot, 0, len(r.entries))
	for id, e := range r.entries {
		out = append(out, Snapshot{ID: id, Name: e.name, State: e.state, PollCount: e.pollCount})
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b Snapshot) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// RequestKill queues id for forced removal by the executor.
func (r *Registry) RequestKill(id ID) KillResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return NotFound
	}
	if _, queued := r.kills[id]; queued {
		return AlreadyQueued
	}
	r.kills[id] = struct{}{}
	e.state = KillRequested
	return Queued
}

// DrainKillRequests empties the kill set and returns its members in id order.
func (r *Registry) DrainKillRequests() []ID {
	r.mu.Lock()
	if len(r.kills) == 0 {
		r.mu.Unlock()
		return nil
	}
	ids := make([]ID, 0, len(r.kills))
	for id := range r.kills {
		ids = append(ids, id)
	}
	clear(r.kills)
	r.mu.Unlock()

	slices.Sort(ids)
	return ids
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
