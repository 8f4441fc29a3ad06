package task

// Waker makes a suspended task eligible to be polled again.
//
// Wake may be called from interrupt context and must not block.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the Waker interface.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

type noopWaker struct{}

func (noopWaker) Wake() {}

// NoopWaker ignores every wake.
var NoopWaker Waker = noopWaker{}

// Context is passed to Future.Poll.
type Context struct {
	waker Waker
}

// NewContext returns a Context carrying w. A nil w is replaced by NoopWaker.
func NewContext(w Waker) *Context {
	if w == nil {
		w = NoopWaker
	}
	return &Context{waker: w}
}

// Waker returns the waker for the task being polled.
func (cx *Context) Waker() Waker { return cx.waker }
