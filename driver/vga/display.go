package vga

import (
	"image/color"

	"newtown/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var palette = [16]color.RGBA{
	Black:      {0x00, 0x00, 0x00, 0xFF},
	Blue:       {0x00, 0x00, 0xAA, 0xFF},
	Green:      {0x00, 0xAA, 0x00, 0xFF},
	Cyan:       {0x00, 0xAA, 0xAA, 0xFF},
	Red:        {0xAA, 0x00, 0x00, 0xFF},
	Magenta:    {0xAA, 0x00, 0xAA, 0xFF},
	Brown:      {0xAA, 0x55, 0x00, 0xFF},
	LightGray:  {0xAA, 0xAA, 0xAA, 0xFF},
	DarkGray:   {0x55, 0x55, 0x55, 0xFF},
	LightBlue:  {0x55, 0x55, 0xFF, 0xFF},
	LightGreen: {0x55, 0xFF, 0x55, 0xFF},
	LightCyan:  {0x55, 0xFF, 0xFF, 0xFF},
	LightRed:   {0xFF, 0x55, 0x55, 0xFF},
	Pink:       {0xFF, 0x55, 0xFF, 0xFF},
	Yellow:     {0xFF, 0xFF, 0x55, 0xFF},
	White:      {0xFF, 0xFF, 0xFF, 0xFF},
}

// RGBA returns the colour used to render c.
func (c Color) RGBA() color.RGBA { return palette[c&0x0F] }

// Display draws grid cells with a bitmap font onto a pixel display.
type Display struct {
	d          drivers.Displayer
	font       tinyfont.Fonter
	cellWidth  int16
	cellHeight int16
	fontOffset int16
}

// NewDisplay returns a Display over d, or nil if the font does not fit the
// display at 80x25.
func NewDisplay(d drivers.Displayer) *Display {
	font, width, height, offset, ok := initFont()
	if !ok || d == nil {
		return nil
	}
	w, h := d.Size()
	if w < width*Width || h < height*Height {
		return nil
	}
	return &Display{
		d:          d,
		font:       font,
		cellWidth:  width,
		cellHeight: height,
		fontOffset: offset,
	}
}

func initFont() (font tinyfont.Fonter, fontWidth, fontHeight, fontOffset int16, ok bool) {
	font = &tinyfont.TomThumb
	fontHeight = 6
	fontOffset = 5
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth = int16(outboxWidth)
	if fontWidth <= 0 || fontHeight <= 0 {
		return nil, 0, 0, 0, false
	}
	return font, fontWidth, fontHeight, fontOffset, true
}

// DrawCell paints the background of the cell and its glyph. Characters the
// font cannot show are drawn as '?'.
func (d *Display) DrawCell(row, col int, c Cell) {
	x := int16(col) * d.cellWidth
	y := int16(row) * d.cellHeight
	bg := c.Color.Background().RGBA()
	for dy := int16(0); dy < d.cellHeight; dy++ {
		for dx := int16(0); dx < d.cellWidth; dx++ {
			d.d.SetPixel(x+dx, y+dy, bg)
		}
	}
	r := rune(c.Char)
	if c.Char < 0x20 || c.Char > 0x7e {
		r = '?'
	}
	if r == ' ' {
		return
	}
	tinyfont.DrawChar(d.d, d.font, x, y+d.fontOffset, r, c.Color.Foreground().RGBA())
}

func (d *Display) Flush() error {
	return d.d.Display()
}

// fbDisplay adapts a HAL framebuffer to drivers.Displayer.
type fbDisplay struct {
	fb hal.Framebuffer
}

// FramebufferDisplayer wraps fb; it returns nil if fb is nil.
func FramebufferDisplayer(fb hal.Framebuffer) drivers.Displayer {
	if fb == nil {
		return nil
	}
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	return d.fb.Present()
}
