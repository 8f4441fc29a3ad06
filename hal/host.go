package hal

import (
	"os"
)

// Screen size of the host framebuffer: an 80x25 grid of 4x6 pixel cells.
const (
	ScreenWidth  = 320
	ScreenHeight = 150
)

type hostHAL struct {
	cpu    *hostCPU
	pic    *hostPIC
	kbc    *hostKeyboardController
	ports  *hostPorts
	pit    *hostPIT
	fb     *hostFramebuffer
	serial Serial
}

// New returns a host HAL implementation with the default timer rate.
func New() HAL {
	return newHost(DefaultHz)
}

func newHost(hz int) *hostHAL {
	cpu := newHostCPU()
	pic := newHostPIC(cpu)
	kbc := newHostKeyboardController(pic)
	return &hostHAL{
		cpu:    cpu,
		pic:    pic,
		kbc:    kbc,
		ports:  newHostPorts(kbc),
		pit:    newHostPIT(pic, hz),
		fb:     newHostFramebuffer(ScreenWidth, ScreenHeight),
		serial: &hostSerial{w: os.Stderr},
	}
}

func (h *hostHAL) CPU() CPU         { return h.cpu }
func (h *hostHAL) PIC() PIC         { return h.pic }
func (h *hostHAL) Ports() Ports     { return h.ports }
func (h *hostHAL) Serial() Serial   { return h.serial }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }

func (h *hostHAL) close() { h.cpu.close() }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }
