// Package shell is the interactive command line task.
package shell

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/joeycumines/logiface"

	"newtown/driver/kbd"
	"newtown/driver/vga"
	"newtown/hal"
	"newtown/kernel"
	"newtown/kernel/keyboard"
	"newtown/kernel/task"
	"newtown/kernel/tick"
)

const (
	// Name is the task name shown by ps.
	Name = "shell"

	prompt = "NewTownOS> "

	banner = `
  _   _                 _______                      ____   _____
 | \ | |               |__   __|                    / __ \ / ____|
 |  \| | _____      __    | | _____      ___ __    | |  | | (___
 | . ` + "`" + ` |/ _ \ \ /\ / /    | |/ _ \ \ /\ / / '_ \   | |  | |\___ \
 | |\  |  __/\ V  V /     | | (_) \ V  V /| | | |  | |__| |____) |
 |_| \_|\___| \_/\_/      |_|\___/ \_/\_/ |_| |_|   \____/|_____/
`
)

type Config struct {
	Writer   *vga.Writer
	Keys     *keyboard.Stream
	Ticks    *tick.Source
	Registry *task.Registry
	Ports    hal.Ports
	BootID   uuid.UUID
	Log      *logiface.Logger[logiface.Event]
}

// Task reads keys, edits one line and runs it as a command on Enter.
type Task struct {
	cfg     Config
	w       *vga.Writer
	dec     kbd.Decoder
	cmds    *registry
	line    []byte
	started bool

	// running is the future of a command that has not finished yet; done
	// runs once it completes.
	running task.Future
	done    func()
}

func New(cfg Config) *Task {
	s := &Task{cfg: cfg, w: cfg.Writer, cmds: newRegistry()}
	for _, cmd := range builtins() {
		if err := s.cmds.register(cmd); err != nil {
			panic(kernel.Errorf("shell", "%v", err))
		}
	}
	return s
}

// Poll never completes.
func (s *Task) Poll(cx *task.Context) task.Status {
	if !s.started {
		s.println(banner)
		s.println("Welcome to NewTownOS Shell!")
		s.print("Type 'help' to see available commands.\n\n")
		s.print(prompt)
		s.started = true
	}
	for {
		if s.running != nil {
			if s.running.Poll(cx) == task.Suspended {
				return task.Suspended
			}
			s.running = nil
			if s.done != nil {
				s.done()
				s.done = nil
			}
			s.print(prompt)
		}

		b, st := s.cfg.Keys.PollNext(cx)
		if st == task.Suspended {
			return task.Suspended
		}
		if k, ok := s.dec.AddByte(b); ok && k.IsRune() {
			s.handleRune(k.Rune)
		}
	}
}

func (s *Task) handleRune(r rune) {
	switch {
	case r == '\b':
		if len(s.line) > 0 {
			s.line = s.line[:len(s.line)-1]
			s.w.Backspace()
		}
	case r == '\n':
		s.print("\n")
		line := string(s.line)
		s.line = s.line[:0]
		s.execute(line)
		if s.running == nil {
			s.print(prompt)
		}
	case r >= 0x20 && r < 0x7f:
		s.line = append(s.line, byte(r))
		_ = s.w.WriteByte(byte(r))
	}
}

// Line returns the text typed since the last prompt.
func (s *Task) Line() string { return string(s.line) }

func (s *Task) print(a ...any) {
	_, _ = fmt.Fprint(s.w, a...)
}

func (s *Task) println(a ...any) {
	_, _ = fmt.Fprintln(s.w, a...)
}

func (s *Task) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.w, format, a...)
}
