// Package vga implements the 80x25 colour text grid the kernel prints to.
//
// Row 0 belongs to the status bar. Streamed output (Write, WriteByte) goes
// to the bottom row and scrolls rows 1 through 24; WriteAt addresses any
// cell directly.
package vga

import (
	"strings"
	"sync"
)

const (
	Width  = 80
	Height = 25

	// firstScrollRow is the top row affected by scrolling and ClearScreen.
	firstScrollRow = 1
)

// Color is one of the 16 text mode colours.
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

var colorNames = [...]string{
	"Black", "Blue", "Green", "Cyan", "Red", "Magenta", "Brown", "LightGray",
	"DarkGray", "LightBlue", "LightGreen", "LightCyan", "LightRed", "Pink", "Yellow", "White",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "Color(?)"
}

// ColorCode packs a foreground and background colour the way the text mode
// attribute byte does: background in the high nibble.
type ColorCode uint8

func NewColorCode(fg, bg Color) ColorCode {
	return ColorCode(uint8(bg&0x0F)<<4 | uint8(fg&0x0F))
}

func (c ColorCode) Foreground() Color { return Color(c & 0x0F) }
func (c ColorCode) Background() Color { return Color(c >> 4) }

// DefaultColor is used by streamed output until SetColor changes it.
var DefaultColor = NewColorCode(Yellow, Black)

// Cell is one character position of the grid.
type Cell struct {
	Char  byte
	Color ColorCode
}

var blank = Cell{Char: ' ', Color: NewColorCode(White, Black)}

// Screen receives every cell change. Display is the framebuffer backed
// implementation.
type Screen interface {
	DrawCell(row, col int, c Cell)
}

// Writer is the text grid. It is safe for concurrent use; the panic path
// may print from any goroutine.
type Writer struct {
	mu     sync.Mutex
	cells  [Height][Width]Cell
	col    int
	color  ColorCode
	screen Screen
}

func NewWriter() *Writer {
	w := &Writer{color: DefaultColor}
	for row := range w.cells {
		for col := range w.cells[row] {
			w.cells[row][col] = blank
		}
	}
	return w
}

// Attach routes cell changes to s and redraws the whole grid on it.
func (w *Writer) Attach(s Screen) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.screen = s
	w.redrawLocked()
}

func (w *Writer) SetColor(c ColorCode) {
	w.mu.Lock()
	w.color = c
	w.mu.Unlock()
}

func (w *Writer) Color() ColorCode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.color
}

// WriteAt stores b with colour c at (row, col). Positions outside the grid
// are ignored.
func (w *Writer) WriteAt(row, col int, b byte, c ColorCode) {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return
	}
	w.mu.Lock()
	w.setLocked(row, col, Cell{Char: b, Color: c})
	w.mu.Unlock()
}

// Cell returns the cell at (row, col), or a blank cell outside the grid.
func (w *Writer) Cell(row, col int) Cell {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return blank
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cells[row][col]
}

// WriteByte appends b to the bottom row. '\n' starts a new line; a full row
// wraps.
func (w *Writer) WriteByte(b byte) error {
	w.mu.Lock()
	w.writeByteLocked(b)
	w.mu.Unlock()
	return nil
}

// Write prints p. Bytes outside printable ASCII are shown as 0xFE.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range p {
		w.writeByteLocked(b)
	}
	return len(p), nil
}

func (w *Writer) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < len(s); i++ {
		w.writeByteLocked(s[i])
	}
	return len(s), nil
}

// Backspace erases the character before the cursor on the bottom row. It
// does not move back across a line break.
func (w *Writer) Backspace() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.col == 0 {
		return
	}
	w.col--
	w.setLocked(Height-1, w.col, Cell{Char: ' ', Color: w.color})
}

// ClearScreen blanks every row below the status bar and moves the cursor to
// the start of the bottom row.
func (w *Writer) ClearScreen() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for row := firstScrollRow; row < Height; row++ {
		w.clearRowLocked(row)
	}
	w.col = 0
}

// Text returns the grid as 25 lines with trailing blanks removed.
func (w *Writer) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var sb strings.Builder
	var line [Width]byte
	for row := range w.cells {
		for col, c := range w.cells[row] {
			line[col] = c.Char
		}
		sb.WriteString(strings.TrimRight(string(line[:]), " "))
		if row < Height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Line returns one row with trailing blanks removed.
func (w *Writer) Line(row int) string {
	if row < 0 || row >= Height {
		return ""
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	var line [Width]byte
	for col, c := range w.cells[row] {
		line[col] = c.Char
	}
	return strings.TrimRight(string(line[:]), " ")
}

func (w *Writer) writeByteLocked(b byte) {
	switch {
	case b == '\n':
		w.newLineLocked()
		return
	case b < 0x20 || b > 0x7e:
		b = 0xFE
	}
	if w.col >= Width {
		w.newLineLocked()
	}
	w.setLocked(Height-1, w.col, Cell{Char: b, Color: w.color})
	w.col++
}

func (w *Writer) newLineLocked() {
	for row := firstScrollRow + 1; row < Height; row++ {
		w.cells[row-1] = w.cells[row]
	}
	w.clearRowLocked(Height - 1)
	w.col = 0
	if w.screen != nil {
		for row := firstScrollRow; row < Height-1; row++ {
			for col := 0; col < Width; col++ {
				w.screen.DrawCell(row, col, w.cells[row][col])
			}
		}
	}
}

func (w *Writer) clearRowLocked(row int) {
	for col := 0; col < Width; col++ {
		w.setLocked(row, col, blank)
	}
}

func (w *Writer) setLocked(row, col int, c Cell) {
	w.cells[row][col] = c
	if w.screen != nil {
		w.screen.DrawCell(row, col, c)
	}
}

func (w *Writer) redrawLocked() {
	if w.screen == nil {
		return
	}
	for row := range w.cells {
		for col := range w.cells[row] {
			w.screen.DrawCell(row, col, w.cells[row][col])
		}
	}
}
