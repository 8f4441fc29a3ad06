//go:build cgo

package hal

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"newtown/internal/buildinfo"
)

const windowScale = 3

// RunWindow starts a desktop window that displays the framebuffer and types
// key presses on the simulated keyboard. It blocks until the window closes or
// the kernel powers off. A halted kernel keeps its last frame on screen.
func RunWindow(newApp func(HAL) func() error, hz int) error {
	if hz <= 0 {
		hz = DefaultHz
	}
	h := newHost(hz)
	defer h.close()
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("NewTown (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*windowScale, h.fb.height*windowScale)
	ebiten.SetTPS(hz)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return g.exit
	}
	return err
}

type hostGame struct {
	h      *hostHAL
	pix    []byte
	fbImg  *ebiten.Image
	step   func() error
	halted bool
	exit   error
}

func (g *hostGame) Update() error {
	select {
	case code := <-g.h.ports.power:
		g.exit = exitError(code)
		return ebiten.Termination
	case <-g.h.cpu.halted:
		if !g.halted {
			g.halted = true
			ebiten.SetWindowTitle("NewTown (halted)")
		}
	default:
	}
	if g.halted {
		return nil
	}

	g.pollKeyboard()
	g.h.pit.step()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.fbImg == nil {
		g.pix = make([]byte, fb.width*fb.height*4)
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGBA(g.pix)
	g.fbImg.WritePixels(g.pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
