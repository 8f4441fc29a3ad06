// Package statusbar draws the top row: a title and a tick counter with a
// spinner that turns on every observed tick.
package statusbar

import (
	"strconv"

	"newtown/driver/vga"
	"newtown/kernel/task"
	"newtown/kernel/tick"
)

const (
	// Name is the task name shown by ps.
	Name = "status_bar"

	title = "NewTownOS Multitasking Environment"
)

var (
	spinner = [...]byte{'|', '/', '-', '\\'}
	color   = vga.NewColorCode(vga.Black, vga.LightGray)
)

type Task struct {
	w     *vga.Writer
	ticks *tick.Stream
	turn  int
	drawn bool
}

func New(w *vga.Writer, src *tick.Source) *Task {
	return &Task{w: w, ticks: src.Subscribe()}
}

// Poll never completes.
func (t *Task) Poll(cx *task.Context) task.Status {
	if !t.drawn {
		t.drawBar()
		t.drawStatus(t.ticks.Last(), spinner[0])
		t.drawn = true
	}
	for {
		n, st := t.ticks.PollNext(cx)
		if st == task.Suspended {
			return task.Suspended
		}
		t.drawStatus(n, spinner[t.turn%len(spinner)])
		t.turn++
	}
}

func (t *Task) drawBar() {
	for col := 0; col < vga.Width; col++ {
		t.w.WriteAt(0, col, ' ', color)
	}
	for i := 0; i < len(title); i++ {
		t.w.WriteAt(0, i+1, title[i], color)
	}
}

func (t *Task) drawStatus(count uint64, spin byte) {
	var buf [32]byte
	s := append(buf[:0], "Ticks: "...)
	s = strconv.AppendUint(s, count, 10)
	s = append(s, ' ', spin)

	start := vga.Width - len(s) - 1
	for i, b := range s {
		t.w.WriteAt(0, start+i, b, color)
	}
}
