package hal

import "sync"

const (
	irqTimer    uint8 = 0
	irqKeyboard uint8 = 1
)

// hostPIC models a chained 8259 pair. A line that is in service (delivered
// and not yet acknowledged) latches further requests and delivers one more
// interrupt after its end-of-interrupt, so bursts coalesce the way they do on
// hardware.
type hostPIC struct {
	mu  sync.Mutex
	cpu *hostCPU

	offset1, offset2 uint8
	ready            bool
	isr, irr         uint16
}

func newHostPIC(cpu *hostCPU) *hostPIC {
	return &hostPIC{cpu: cpu}
}

func (p *hostPIC) Init(offset1, offset2 uint8) {
	p.mu.Lock()
	p.offset1, p.offset2 = offset1, offset2
	p.ready = true
	pending := p.irr &^ p.isr
	p.irr &^= pending
	p.isr |= pending
	p.mu.Unlock()

	for line := uint8(0); line < 16; line++ {
		if pending&(1<<line) != 0 {
			p.cpu.interrupt(p.vector(line), 0)
		}
	}
}

// raise requests an interrupt on line (0-15).
func (p *hostPIC) raise(line uint8) {
	bit := uint16(1) << line
	p.mu.Lock()
	if !p.ready || p.isr&bit != 0 {
		p.irr |= bit
		p.mu.Unlock()
		return
	}
	p.isr |= bit
	v := p.vectorLocked(line)
	p.mu.Unlock()

	p.cpu.interrupt(v, 0)
}

func (p *hostPIC) NotifyEndOfInterrupt(v Vector) {
	p.mu.Lock()
	line, ok := p.lineLocked(v)
	if !ok {
		p.mu.Unlock()
		return
	}
	bit := uint16(1) << line
	p.isr &^= bit
	if p.irr&bit == 0 {
		p.mu.Unlock()
		return
	}
	p.irr &^= bit
	p.isr |= bit
	p.mu.Unlock()

	p.cpu.interrupt(v, 0)
}

func (p *hostPIC) vector(line uint8) Vector {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vectorLocked(line)
}

func (p *hostPIC) vectorLocked(line uint8) Vector {
	if line < 8 {
		return Vector(p.offset1 + line)
	}
	return Vector(p.offset2 + line - 8)
}

func (p *hostPIC) lineLocked(v Vector) (uint8, bool) {
	switch {
	case !p.ready:
		return 0, false
	case uint8(v) >= p.offset1 && uint8(v) < p.offset1+8:
		return uint8(v) - p.offset1, true
	case uint8(v) >= p.offset2 && uint8(v) < p.offset2+8:
		return uint8(v) - p.offset2 + 8, true
	default:
		return 0, false
	}
}
