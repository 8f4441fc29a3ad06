package kernel

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// PanicInfo contains details about a fatal kernel condition.
type PanicInfo struct {
	Err   *Error
	Value any
	Stack []byte
}

var (
	panicActive atomic.Bool
	panicOnce   sync.Once

	panicHandler atomic.Value // func(PanicInfo)

	// cpuHaltFn stops the machine. It is installed at boot and mocked by tests.
	cpuHaltFn atomic.Value // func()
)

// InPanicMode reports whether the kernel has panicked.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs a process-wide panic handler.
//
// The handler is invoked at most once (on the first panic). It must not panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

// SetHaltFunc installs the function Panic uses to stop the CPU.
func SetHaltFunc(fn func()) {
	cpuHaltFn.Store(fn)
}

// Panic reports e through the panic handler and halts the CPU. Calls to Panic
// do not return unless the installed halt function returns.
func Panic(e any) {
	info := PanicInfo{Value: e, Err: asError(e)}
	panicOnce.Do(func() {
		panicActive.Store(true)
		info.Stack = debug.Stack()
		if v := panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
	halt()
}

func halt() {
	if v := cpuHaltFn.Load(); v != nil {
		if fn, ok := v.(func()); ok && fn != nil {
			fn()
			return
		}
	}
	select {}
}

func asError(e any) *Error {
	switch t := e.(type) {
	case nil:
		return nil
	case *Error:
		return t
	case error:
		return &Error{Module: "rt", Message: t.Error()}
	case string:
		return &Error{Module: "rt", Message: t}
	default:
		return &Error{Module: "rt", Message: fmt.Sprintf("unknown cause: %v", t)}
	}
}
