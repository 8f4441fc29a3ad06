package kernel

import "fmt"

// Error describes a fatal kernel condition. Invariant violations inside the
// kernel panic with an *Error; the boot goroutine recovers it and hands it to
// Panic, which halts the machine.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Module == "" {
		return e.Message
	}
	return e.Module + ": " + e.Message
}

// Errorf formats an *Error for module. It is used at panic sites.
func Errorf(module, format string, args ...any) *Error {
	return &Error{Module: module, Message: fmt.Sprintf(format, args...)}
}
