package hal

// KeyCode identifies a key that does not produce a character.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
)

// Scancode set 1 make codes for a US layout.
const (
	scEscape    = 0x01
	scBackspace = 0x0E
	scTab       = 0x0F
	scEnter     = 0x1C
	scLeftShift = 0x2A
	scSpace     = 0x39

	scExtended = 0xE0
	scUp       = 0x48
	scLeft     = 0x4B
	scRight    = 0x4D
	scDown     = 0x50

	scBreak = 0x80
)

type scanKey struct {
	code  byte
	shift bool
}

var runeKeys = func() map[rune]scanKey {
	m := make(map[rune]scanKey, 96)
	rows := []struct {
		first          byte
		plain, shifted string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1E, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2B, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}
	for _, row := range rows {
		for i, r := range row.plain {
			m[r] = scanKey{code: row.first + byte(i)}
		}
		for i, r := range row.shifted {
			m[r] = scanKey{code: row.first + byte(i), shift: true}
		}
	}
	m[' '] = scanKey{code: scSpace}
	return m
}()

// RuneScancodes returns the set 1 press and release sequence that types r,
// wrapped in a left shift press when needed.
func RuneScancodes(r rune) ([]byte, bool) {
	k, ok := runeKeys[r]
	if !ok {
		return nil, false
	}
	if k.shift {
		return []byte{scLeftShift, k.code, k.code | scBreak, scLeftShift | scBreak}, true
	}
	return []byte{k.code, k.code | scBreak}, true
}

// KeyScancodes returns the set 1 press and release sequence for k.
func KeyScancodes(k KeyCode) []byte {
	switch k {
	case KeyEnter:
		return []byte{scEnter, scEnter | scBreak}
	case KeyEscape:
		return []byte{scEscape, scEscape | scBreak}
	case KeyBackspace:
		return []byte{scBackspace, scBackspace | scBreak}
	case KeyTab:
		return []byte{scTab, scTab | scBreak}
	case KeyUp:
		return []byte{scExtended, scUp, scExtended, scUp | scBreak}
	case KeyDown:
		return []byte{scExtended, scDown, scExtended, scDown | scBreak}
	case KeyLeft:
		return []byte{scExtended, scLeft, scExtended, scLeft | scBreak}
	case KeyRight:
		return []byte{scExtended, scRight, scExtended, scRight | scBreak}
	default:
		return nil
	}
}
