package keyboard

import (
	"bytes"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newtown/kernel"
	"newtown/kernel/task"
)

type countingWaker struct{ n int }

func (c *countingWaker) Wake() { c.n++ }

func newTestLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf), stumpy.WithTimeField("")),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()
}

func TestAddScancodeWakesStream(t *testing.T) {
	k := New(4, nil)
	s := k.Stream()
	w := &countingWaker{}
	cx := task.NewContext(w)

	_, status := s.PollNext(cx)
	require.Equal(t, task.Suspended, status)

	k.AddScancode(0x1E)
	assert.Equal(t, 1, w.n)

	b, status := s.PollNext(cx)
	require.Equal(t, task.Completed, status)
	assert.Equal(t, byte(0x1E), b)
}

func TestAddScancodeBeforeInitIsDropped(t *testing.T) {
	var buf bytes.Buffer
	k := &Queue{log: newTestLogger(&buf)}

	k.AddScancode(0x10)
	assert.EqualValues(t, 1, k.Dropped())
	assert.Empty(t, buf.String(), "nothing is logged from the interrupt handler")

	k.Init(2)
	_, ok := k.Stream().Pop()
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "scancode queue uninitialized")
	assert.Contains(t, buf.String(), `"dropped":"1"`)
}

func TestAddScancodeFullQueueDrops(t *testing.T) {
	var buf bytes.Buffer
	k := New(2, newTestLogger(&buf))

	s := k.Stream()
	w := &countingWaker{}
	cx := task.NewContext(w)
	_, status := s.PollNext(cx)
	require.Equal(t, task.Suspended, status)

	k.AddScancode(1)
	k.AddScancode(2)
	k.AddScancode(3)
	k.AddScancode(4)

	assert.EqualValues(t, 2, k.Dropped())
	assert.Empty(t, buf.String(), "nothing is logged from the interrupt handler")
	assert.Equal(t, 1, w.n)

	for _, want := range []byte{1, 2} {
		got, status := s.PollNext(cx)
		require.Equal(t, task.Completed, status)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("scancode queue full")), "drops are reported once")
	assert.Contains(t, buf.String(), `"dropped":"2"`)
}

func TestInitOnlyOnce(t *testing.T) {
	k := New(1, nil)
	k.Init(10)
	k.AddScancode(1)
	k.AddScancode(2)
	assert.EqualValues(t, 1, k.Dropped())
}

func TestStreamTakenTwicePanics(t *testing.T) {
	k := New(1, nil)
	k.Stream()

	defer func() {
		_, ok := recover().(*kernel.Error)
		assert.True(t, ok)
	}()
	k.Stream()
}
