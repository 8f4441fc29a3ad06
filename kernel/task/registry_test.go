package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newtown/kernel"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register(7, "a")

	got, ok := r.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, Snapshot{ID: 7, Name: "a", State: Ready}, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDuplicateRegisterPanics(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "a")

	defer func() {
		v := recover()
		require.NotNil(t, v)
		kerr, ok := v.(*kernel.Error)
		require.True(t, ok, "panic value %T", v)
		assert.Equal(t, "registry", kerr.Module)
	}()
	r.Register(1, "b")
}

func TestRegistrySnapshotOrderedByID(t *testing.T) {
	r := NewRegistry()
	for _, id := range []ID{9, 2, 5, 1} {
		r.Register(id, "t"+id.String())
	}
	r.BumpPollCount(5)
	r.BumpPollCount(5)
	r.SetState(2, Waiting)

	snap := r.Snapshot()
	require.Len(t, snap, 4)
	ids := make([]ID, len(snap))
	for i, s := range snap {
		ids[i] = s.ID
	}
	assert.Equal(t, []ID{1, 2, 5, 9}, ids)
	assert.Equal(t, Waiting, snap[1].State)
	assert.EqualValues(t, 2, snap[2].PollCount)
	assert.Equal(t, "t9", snap[3].Name)
}

func TestRegistryRequestKill(t *testing.T) {
	r := NewRegistry()
	r.Register(3, "b")

	assert.Equal(t, Queued, r.RequestKill(3))
	assert.Equal(t, AlreadyQueued, r.RequestKill(3))
	assert.Equal(t, NotFound, r.RequestKill(4))

	got, _ := r.Lookup(3)
	assert.Equal(t, KillRequested, got.State)
}

func TestRegistryKillRequestedIsSticky(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "a")
	require.Equal(t, Queued, r.RequestKill(1))

	for _, s := range []State{Waiting, Running, Ready} {
		r.SetState(1, s)
		got, _ := r.Lookup(1)
		assert.Equal(t, KillRequested, got.State, "after SetState(%v)", s)
	}
}

func TestRegistryDrainKillRequests(t *testing.T) {
	r := NewRegistry()
	r.Register(4, "a")
	r.Register(2, "b")
	r.RequestKill(4)
	r.RequestKill(2)

	assert.Equal(t, []ID{2, 4}, r.DrainKillRequests())
	assert.Nil(t, r.DrainKillRequests())

	// Entries stay until the executor unregisters them.
	assert.Equal(t, 2, r.Len())
}

func TestRegistryUnknownIDsAreIgnored(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "a")
	r.Unregister(1)

	r.Unregister(1)
	r.SetState(1, Running)
	r.BumpPollCount(1)

	_, ok := r.Lookup(1)
	assert.False(t, ok)
	assert.Empty(t, r.Snapshot())
}

func TestRegistryUnregisterClearsKillRequest(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "a")
	r.RequestKill(1)
	r.Unregister(1)

	assert.Nil(t, r.DrainKillRequests())
}

func TestStateStrings(t *testing.T) {
	for s, want := range map[State]string{
		Ready:         "Ready",
		Running:       "Running",
		Waiting:       "Waiting",
		KillRequested: "KillRequested",
	} {
		assert.Equal(t, want, s.String())
	}
	for r, want := range map[KillResult]string{
		Queued:        "Queued",
		AlreadyQueued: "AlreadyQueued",
		NotFound:      "NotFound",
	} {
		assert.Equal(t, want, r.String())
	}
}
