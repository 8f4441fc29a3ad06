package vga

import (
	"image/color"
	"strings"
	"testing"

	"newtown/hal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorCode(t *testing.T) {
	c := NewColorCode(Black, LightGray)
	assert.Equal(t, ColorCode(0x70), c)
	assert.Equal(t, Black, c.Foreground())
	assert.Equal(t, LightGray, c.Background())
	assert.Equal(t, "Yellow", Yellow.String())
}

func TestWriteAt(t *testing.T) {
	w := NewWriter()
	red := NewColorCode(Red, Black)
	w.WriteAt(12, 35, 'G', red)
	w.WriteAt(-1, 0, 'x', red)
	w.WriteAt(0, Width, 'x', red)
	w.WriteAt(Height, 0, 'x', red)

	assert.Equal(t, Cell{Char: 'G', Color: red}, w.Cell(12, 35))
	assert.Equal(t, blank, w.Cell(Height, 0))
	assert.Equal(t, strings.Repeat(" ", 35)+"G", w.Line(12))
}

func TestStreamedOutputScrollsBelowStatusBar(t *testing.T) {
	w := NewWriter()
	bar := NewColorCode(Black, LightGray)
	w.WriteAt(0, 1, 'S', bar)

	_, err := w.WriteString("first\nsecond")
	require.NoError(t, err)

	assert.Equal(t, "first", w.Line(Height-2))
	assert.Equal(t, "second", w.Line(Height-1))
	assert.Equal(t, " S", w.Line(0))

	for i := 0; i < Height*2; i++ {
		_, _ = w.WriteString("\n")
	}
	assert.Equal(t, " S", w.Line(0))
	assert.Equal(t, "", w.Line(1))
}

func TestWriteWrapsLongLines(t *testing.T) {
	w := NewWriter()
	_, _ = w.WriteString(strings.Repeat("a", Width) + "b")
	assert.Equal(t, strings.Repeat("a", Width), w.Line(Height-2))
	assert.Equal(t, "b", w.Line(Height-1))
}

func TestNonPrintableBytes(t *testing.T) {
	w := NewWriter()
	_, _ = w.Write([]byte{'a', 0x01, 0x80})
	assert.Equal(t, byte(0xFE), w.Cell(Height-1, 1).Char)
	assert.Equal(t, byte(0xFE), w.Cell(Height-1, 2).Char)
}

func TestBackspace(t *testing.T) {
	w := NewWriter()
	_, _ = w.WriteString("ab")
	w.Backspace()
	assert.Equal(t, "a", w.Line(Height-1))
	w.Backspace()
	w.Backspace()
	assert.Equal(t, "", w.Line(Height-1))

	_ = w.WriteByte('c')
	assert.Equal(t, "c", w.Line(Height-1))
}

func TestClearScreenKeepsStatusBar(t *testing.T) {
	w := NewWriter()
	w.WriteAt(0, 0, 'S', DefaultColor)
	_, _ = w.WriteString("hello\nworld")
	w.ClearScreen()

	lines := strings.Split(w.Text(), "\n")
	require.Len(t, lines, Height)
	assert.Equal(t, "S", lines[0])
	for _, l := range lines[1:] {
		assert.Empty(t, l)
	}

	_ = w.WriteByte('x')
	assert.Equal(t, "x", w.Line(Height-1))
}

func TestSetColor(t *testing.T) {
	w := NewWriter()
	green := NewColorCode(Green, Black)
	w.SetColor(green)
	_ = w.WriteByte('g')
	assert.Equal(t, green, w.Cell(Height-1, 0).Color)
	assert.Equal(t, green, w.Color())
}

type memDisplay struct {
	w, h   int16
	pixels map[[2]int16]color.RGBA
}

func newMemDisplay(w, h int16) *memDisplay {
	return &memDisplay{w: w, h: h, pixels: make(map[[2]int16]color.RGBA)}
}

func (d *memDisplay) Size() (x, y int16) { return d.w, d.h }
func (d *memDisplay) Display() error     { return nil }
func (d *memDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.pixels[[2]int16{x, y}] = c
}

func (d *memDisplay) count(x0, y0, x1, y1 int16, c color.RGBA) int {
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if d.pixels[[2]int16{x, y}] == c {
				n++
			}
		}
	}
	return n
}

func TestDisplayDrawsCells(t *testing.T) {
	md := newMemDisplay(320, 150)
	d := NewDisplay(md)
	require.NotNil(t, d)

	w := NewWriter()
	w.Attach(d)
	cw, ch := d.cellWidth, d.cellHeight

	// the whole grid is painted on attach
	assert.Equal(t, int(cw)*Width*int(ch)*Height, md.count(0, 0, cw*Width, ch*Height, Black.RGBA()))

	w.WriteAt(2, 3, 'H', NewColorCode(Yellow, Blue))
	x0, y0 := 3*cw, 2*ch
	fg := md.count(x0, y0, x0+cw, y0+ch, Yellow.RGBA())
	bg := md.count(x0, y0, x0+cw, y0+ch, Blue.RGBA())
	assert.Positive(t, fg)
	assert.Equal(t, int(cw*ch), fg+bg)
	require.NoError(t, d.Flush())
}

func TestDisplayTooSmall(t *testing.T) {
	assert.Nil(t, NewDisplay(newMemDisplay(100, 100)))
	assert.Nil(t, NewDisplay(nil))
}

type memFramebuffer struct {
	buf []byte
}

func (f *memFramebuffer) Width() int              { return 4 }
func (f *memFramebuffer) Height() int             { return 2 }
func (f *memFramebuffer) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *memFramebuffer) StrideBytes() int        { return 8 }
func (f *memFramebuffer) Buffer() []byte          { return f.buf }
func (f *memFramebuffer) ClearRGB(r, g, b uint8)  {}
func (f *memFramebuffer) Present() error          { return nil }

func TestFramebufferDisplayer(t *testing.T) {
	fb := &memFramebuffer{buf: make([]byte, 16)}
	d := FramebufferDisplayer(fb)
	require.NotNil(t, d)

	x, y := d.Size()
	assert.Equal(t, int16(4), x)
	assert.Equal(t, int16(2), y)

	d.SetPixel(1, 1, color.RGBA{R: 0xFF, A: 0xFF})
	d.SetPixel(4, 0, color.RGBA{G: 0xFF, A: 0xFF})
	d.SetPixel(-1, 0, color.RGBA{G: 0xFF, A: 0xFF})

	px := uint16(fb.buf[10]) | uint16(fb.buf[11])<<8
	assert.Equal(t, hal.RGB565(0xFF, 0, 0), px)
	for i, b := range fb.buf {
		if i != 10 && i != 11 {
			assert.Zero(t, b, "byte %d", i)
		}
	}
	assert.Nil(t, FramebufferDisplayer(nil))
}
