package hal

// Well-known I/O ports.
const (
	PortKeyboardData   uint16 = 0x60
	PortKeyboardStatus uint16 = 0x64
	// PortDebugExit is the isa-debug-exit device: writing a code powers the
	// machine off.
	PortDebugExit uint16 = 0xf4
)

// Exit codes for PortDebugExit.
const (
	ExitSuccess uint32 = 0x10
	ExitFailed  uint32 = 0x11
)

const keyboardStatusOutputFull = 0x01
