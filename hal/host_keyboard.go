//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var windowKeys = []struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeyBackspace, KeyBackspace},
	{ebiten.KeyTab, KeyTab},
}

// pollKeyboard types the characters and special keys pressed since the last
// frame.
func (g *hostGame) pollKeyboard() {
	var codes []byte
	for _, r := range ebiten.AppendInputChars(nil) {
		if seq, ok := RuneScancodes(r); ok {
			codes = append(codes, seq...)
		}
	}
	for _, k := range windowKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			codes = append(codes, KeyScancodes(k.code)...)
		}
	}
	g.h.kbc.feed(codes...)
}
