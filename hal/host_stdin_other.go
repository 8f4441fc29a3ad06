//go:build !linux

package hal

func makeCbreak(int) (func(), error) { return nil, ErrNotImplemented }

func isNotTerminal(error) bool { return true }
