package interrupts

import (
	"fmt"
	"strings"
)

// PageFaultErrorCode is the error code pushed by a page fault.
type PageFaultErrorCode uint64

const (
	ProtectionViolation PageFaultErrorCode = 1 << iota
	CausedByWrite
	UserMode
	MalformedTable
	InstructionFetch
	ProtectionKey
	ShadowStack
)

var pageFaultFlagNames = []string{
	"PROTECTION_VIOLATION",
	"CAUSED_BY_WRITE",
	"USER_MODE",
	"MALFORMED_TABLE",
	"INSTRUCTION_FETCH",
	"PROTECTION_KEY",
	"SHADOW_STACK",
}

func (c PageFaultErrorCode) String() string {
	var names []string
	rest := c
	for i, name := range pageFaultFlagNames {
		bit := PageFaultErrorCode(1) << i
		if c&bit != 0 {
			names = append(names, name)
			rest &^= bit
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("%#x", uint64(rest)))
	}
	if len(names) == 0 {
		return "PageFaultErrorCode(0x0)"
	}
	return "PageFaultErrorCode(" + strings.Join(names, " | ") + ")"
}

// Reason describes the fault in words.
func (c PageFaultErrorCode) Reason() string {
	switch {
	case c&MalformedTable != 0:
		return "page table has reserved bit set"
	case c&InstructionFetch != 0:
		return "instruction fetch"
	case c&UserMode != 0:
		return "page-fault in user-mode"
	}
	switch c & (ProtectionViolation | CausedByWrite) {
	case 0:
		return "read from non-present page"
	case ProtectionViolation:
		return "page protection violation (read)"
	case CausedByWrite:
		return "write to non-present page"
	default:
		return "page protection violation (write)"
	}
}
