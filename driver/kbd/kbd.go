// Package kbd decodes PS/2 scancode set 1 into key presses using a US
// layout. Control keys are tracked but ignored.
package kbd

// RawKey names a key that has no character.
type RawKey uint8

const (
	NoKey RawKey = iota
	ArrowUp
	ArrowDown
	ArrowLeft
	ArrowRight
	LeftShift
	RightShift
	LeftControl
	LeftAlt
	CapsLock
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
)

// Key is a decoded key press: either a character or a raw key.
type Key struct {
	Rune rune
	Raw  RawKey
}

// IsRune reports whether the key produced a character.
func (k Key) IsRune() bool { return k.Raw == NoKey }

const (
	extendedPrefix = 0xE0
	breakBit       = 0x80

	codeLeftShift  = 0x2A
	codeRightShift = 0x36
	codeControl    = 0x1D
	codeAlt        = 0x38
	codeCapsLock   = 0x3A
	codeF1         = 0x3B
	codeF10        = 0x44
)

var (
	plain   [0x80]rune
	shifted [0x80]rune
)

func init() {
	rows := []struct {
		first        byte
		lower, upper string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1E, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2B, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}
	for _, row := range rows {
		for i, r := range []rune(row.lower) {
			plain[int(row.first)+i] = r
		}
		for i, r := range []rune(row.upper) {
			shifted[int(row.first)+i] = r
		}
	}
	for code, r := range map[byte]rune{
		0x01: 0x1b,
		0x0E: '\b',
		0x0F: '\t',
		0x1C: '\n',
		0x39: ' ',
	} {
		plain[code] = r
		shifted[code] = r
	}
}

// Decoder turns a scancode byte stream into key presses. The zero value is
// ready to use.
type Decoder struct {
	extended bool
	lshift   bool
	rshift   bool
	capsLock bool
	control  bool
}

// AddByte feeds one scancode byte. It returns a key when b completes a key
// press; releases and prefixes return false.
func (d *Decoder) AddByte(b byte) (Key, bool) {
	if b == extendedPrefix {
		d.extended = true
		return Key{}, false
	}
	extended := d.extended
	d.extended = false

	release := b&breakBit != 0
	code := b &^ breakBit

	if extended {
		return d.extendedKey(code, release)
	}

	switch code {
	case codeLeftShift:
		d.lshift = !release
		return Key{}, false
	case codeRightShift:
		d.rshift = !release
		return Key{}, false
	case codeControl:
		d.control = !release
		return Key{}, false
	case codeAlt:
		return Key{}, false
	case codeCapsLock:
		if !release {
			d.capsLock = !d.capsLock
			return Key{Raw: CapsLock}, true
		}
		return Key{}, false
	}
	if release {
		return Key{}, false
	}
	if code >= codeF1 && code <= codeF10 {
		return Key{Raw: F1 + RawKey(code-codeF1)}, true
	}

	r := plain[code]
	if r == 0 {
		return Key{}, false
	}
	if d.shiftFor(r) {
		r = shifted[code]
	}
	return Key{Rune: r}, true
}

func (d *Decoder) shiftFor(r rune) bool {
	shift := d.lshift || d.rshift
	if r >= 'a' && r <= 'z' && d.capsLock {
		return !shift
	}
	return shift
}

func (d *Decoder) extendedKey(code byte, release bool) (Key, bool) {
	switch code {
	case codeControl:
		d.control = !release
		return Key{}, false
	case 0x2A, 0x36:
		// fake shifts around extended keys
		return Key{}, false
	}
	if release {
		return Key{}, false
	}
	switch code {
	case 0x48:
		return Key{Raw: ArrowUp}, true
	case 0x50:
		return Key{Raw: ArrowDown}, true
	case 0x4B:
		return Key{Raw: ArrowLeft}, true
	case 0x4D:
		return Key{Raw: ArrowRight}, true
	case 0x1C:
		return Key{Rune: '\n'}, true
	default:
		return Key{}, false
	}
}
