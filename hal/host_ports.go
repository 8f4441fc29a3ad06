package hal

import "sync"

type hostPorts struct {
	kbc   *hostKeyboardController
	power chan uint32
}

func newHostPorts(kbc *hostKeyboardController) *hostPorts {
	return &hostPorts{kbc: kbc, power: make(chan uint32, 1)}
}

func (p *hostPorts) ReadPort8(port uint16) uint8 {
	switch port {
	case PortKeyboardData:
		return p.kbc.readData()
	case PortKeyboardStatus:
		return p.kbc.status()
	default:
		return 0xFF
	}
}

func (p *hostPorts) WritePort32(port uint16, v uint32) {
	if port != PortDebugExit {
		return
	}
	select {
	case p.power <- v:
	default:
	}
}

// hostKeyboardController is the data side of an 8042 controller. Bytes fed
// by the host input device are read one at a time through the data port; the
// keyboard line stays raised while bytes remain.
type hostKeyboardController struct {
	mu   sync.Mutex
	buf  []byte
	last byte
	pic  *hostPIC
}

func newHostKeyboardController(pic *hostPIC) *hostKeyboardController {
	return &hostKeyboardController{pic: pic}
}

// feed appends scancodes to the output buffer and raises the keyboard line.
func (k *hostKeyboardController) feed(codes ...byte) {
	if len(codes) == 0 {
		return
	}
	k.mu.Lock()
	k.buf = append(k.buf, codes...)
	k.mu.Unlock()
	k.pic.raise(irqKeyboard)
}

func (k *hostKeyboardController) readData() byte {
	k.mu.Lock()
	if len(k.buf) == 0 {
		b := k.last
		k.mu.Unlock()
		return b
	}
	b := k.buf[0]
	k.buf = k.buf[1:]
	k.last = b
	more := len(k.buf) > 0
	k.mu.Unlock()

	if more {
		k.pic.raise(irqKeyboard)
	}
	return b
}

func (k *hostKeyboardController) status() byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.buf) > 0 {
		return keyboardStatusOutputFull
	}
	return 0
}
