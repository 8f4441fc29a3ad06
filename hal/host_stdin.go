package hal

import (
	"bufio"
	"errors"
	"io"
	"os"
)

// stdinDecoder turns terminal bytes into scancodes. It understands the
// ANSI cursor key sequences ESC [ A..D.
type stdinDecoder struct {
	state int
}

const (
	stdinNormal = iota
	stdinEscape
	stdinCSI
)

func (d *stdinDecoder) feed(dst []byte, b byte) []byte {
	switch d.state {
	case stdinEscape:
		if b == '[' {
			d.state = stdinCSI
			return dst
		}
		d.state = stdinNormal
		dst = append(dst, KeyScancodes(KeyEscape)...)
		return d.feed(dst, b)
	case stdinCSI:
		d.state = stdinNormal
		switch b {
		case 'A':
			return append(dst, KeyScancodes(KeyUp)...)
		case 'B':
			return append(dst, KeyScancodes(KeyDown)...)
		case 'C':
			return append(dst, KeyScancodes(KeyRight)...)
		case 'D':
			return append(dst, KeyScancodes(KeyLeft)...)
		default:
			return dst
		}
	}

	switch b {
	case 0x1b:
		d.state = stdinEscape
		return dst
	case '\r', '\n':
		return append(dst, KeyScancodes(KeyEnter)...)
	case 0x7f, 0x08:
		return append(dst, KeyScancodes(KeyBackspace)...)
	case '\t':
		return append(dst, KeyScancodes(KeyTab)...)
	}
	if codes, ok := RuneScancodes(rune(b)); ok {
		return append(dst, codes...)
	}
	return dst
}

// attachInput feeds keystrokes read from r into the keyboard controller until
// r is exhausted or the machine powers off. A terminal on stdin is switched to
// unbuffered, no-echo input for the duration.
func (h *hostHAL) attachInput(r io.Reader) (stop func(), err error) {
	restore := func() {}
	if f, ok := r.(*os.File); ok {
		if rst, err := makeCbreak(int(f.Fd())); err == nil {
			restore = rst
		} else if !errors.Is(err, ErrNotImplemented) && !isNotTerminal(err) {
			return nil, err
		}
	}

	go func() {
		br := bufio.NewReader(r)
		var dec stdinDecoder
		var codes []byte
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			codes = dec.feed(codes[:0], b)
			select {
			case <-h.cpu.stop:
				return
			default:
			}
			h.kbc.feed(codes...)
		}
	}()
	return restore, nil
}
