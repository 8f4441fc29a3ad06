// Package snake is the text mode snake game started by the shell.
package snake

import (
	"strconv"

	"newtown/driver/kbd"
	"newtown/driver/vga"
	"newtown/kernel/task"
	"newtown/kernel/tick"
)

// enterScancode ends the game over screen.
const enterScancode = 0x1C

var (
	blankColor  = vga.NewColorCode(vga.White, vga.Black)
	borderColor = vga.NewColorCode(vga.Blue, vga.Black)
	snakeColor  = vga.NewColorCode(vga.Green, vga.Black)
	foodColor   = vga.NewColorCode(vga.Red, vga.Black)
	scoreColor  = vga.NewColorCode(vga.Yellow, vga.Blue)
	overColor   = vga.NewColorCode(vga.Red, vga.Black)
)

// Scancodes is the keyboard as the game reads it: it polls between ticks
// and never waits on the keyboard.
type Scancodes interface {
	Pop() (byte, bool)
}

type state uint8

const (
	stateStart state = iota
	statePlaying
	stateGameOver
	stateDone
)

// Task runs one game. It completes after the game over screen is dismissed
// with Enter.
type Task struct {
	w     *vga.Writer
	ticks *tick.Stream
	keys  Scancodes
	dec   kbd.Decoder
	game  *Game
	state state
	// moves happen on every second observed tick
	acc int
}

// New seeds the game from the current tick count.
func New(w *vga.Writer, src *tick.Source, keys Scancodes) *Task {
	return &Task{
		w:     w,
		ticks: src.Subscribe(),
		keys:  keys,
		game:  NewGame(src.Now()),
	}
}

func (t *Task) Game() *Game { return t.game }

func (t *Task) Poll(cx *task.Context) task.Status {
	for {
		switch t.state {
		case stateStart:
			t.clearPlayArea()
			t.drawBorder()
			t.drawFood()
			t.drawSnake()
			t.state = statePlaying

		case statePlaying:
			if _, st := t.ticks.PollNext(cx); st == task.Suspended {
				return task.Suspended
			}
			t.handleKeys()
			if t.game.Over() {
				t.gameOver()
				continue
			}
			t.drawScore()
			t.acc++
			if t.acc < 2 {
				continue
			}
			t.acc = 0
			m := t.game.Step()
			if t.game.Over() {
				t.gameOver()
				continue
			}
			t.drawMove(m)

		case stateGameOver:
			for {
				b, ok := t.keys.Pop()
				if !ok {
					break
				}
				if b == enterScancode {
					t.clearPlayArea()
					t.ticks.Close()
					t.state = stateDone
					return task.Completed
				}
			}
			if _, st := t.ticks.PollNext(cx); st == task.Suspended {
				return task.Suspended
			}

		case stateDone:
			return task.Completed
		}
	}
}

func (t *Task) handleKeys() {
	for {
		b, ok := t.keys.Pop()
		if !ok {
			return
		}
		k, ok := t.dec.AddByte(b)
		if !ok {
			continue
		}
		switch {
		case k.Rune == 'w' || k.Raw == kbd.ArrowUp:
			t.game.Turn(Up)
		case k.Rune == 's' || k.Raw == kbd.ArrowDown:
			t.game.Turn(Down)
		case k.Rune == 'a' || k.Raw == kbd.ArrowLeft:
			t.game.Turn(Left)
		case k.Rune == 'd' || k.Raw == kbd.ArrowRight:
			t.game.Turn(Right)
		case k.Rune == 'q':
			t.game.End()
			return
		}
	}
}

func (t *Task) gameOver() {
	const msg = "GAME OVER"
	score := "Score: " + strconv.Itoa(t.game.Score())
	row := Height / 2
	t.writeString(row, (Width-len(msg))/2, msg, overColor)
	t.writeString(row+1, (Width-len(score))/2, score, overColor)
	t.state = stateGameOver
}

func (t *Task) clearPlayArea() {
	for row := PlayTop - 1; row < Height; row++ {
		for col := 0; col < Width; col++ {
			t.w.WriteAt(row, col, ' ', blankColor)
		}
	}
}

func (t *Task) drawBorder() {
	for col := 0; col < Width; col++ {
		t.w.WriteAt(PlayTop-1, col, '#', borderColor)
		t.w.WriteAt(Height-1, col, '#', borderColor)
	}
	for row := PlayTop; row < Height; row++ {
		t.w.WriteAt(row, 0, '#', borderColor)
		t.w.WriteAt(row, Width-1, '#', borderColor)
	}
}

func (t *Task) drawSnake() {
	for i, p := range t.game.Body() {
		c := byte('o')
		if i == 0 {
			c = 'O'
		}
		t.w.WriteAt(p.Y, p.X, c, snakeColor)
	}
}

func (t *Task) drawFood() {
	f := t.game.Food()
	t.w.WriteAt(f.Y, f.X, '*', foodColor)
}

func (t *Task) drawMove(m Move) {
	if m.Ate {
		t.drawFood()
	}
	if m.Vacated {
		t.w.WriteAt(m.Tail.Y, m.Tail.X, ' ', blankColor)
	}
	t.w.WriteAt(m.Head.Y, m.Head.X, 'O', snakeColor)
	t.w.WriteAt(m.Neck.Y, m.Neck.X, 'o', snakeColor)
}

func (t *Task) drawScore() {
	s := "Score: " + strconv.Itoa(t.game.Score())
	t.writeString(PlayTop-1, Width-len(s)-2, s, scoreColor)
}

func (t *Task) writeString(row, col int, s string, c vga.ColorCode) {
	for i := 0; i < len(s); i++ {
		t.w.WriteAt(row, col+i, s[i], c)
	}
}
