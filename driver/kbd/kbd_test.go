package kbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newtown/hal"
)

func decodeAll(d *Decoder, codes []byte) []Key {
	var keys []Key
	for _, b := range codes {
		if k, ok := d.AddByte(b); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestDecodeTypedText(t *testing.T) {
	const text = "Hello, World! ps -a {x}"
	var codes []byte
	for _, r := range text {
		seq, ok := hal.RuneScancodes(r)
		require.True(t, ok, "%q", r)
		codes = append(codes, seq...)
	}

	var d Decoder
	var got []rune
	for _, k := range decodeAll(&d, codes) {
		require.True(t, k.IsRune())
		got = append(got, k.Rune)
	}
	assert.Equal(t, text, string(got))
}

func TestDecodeSpecialKeys(t *testing.T) {
	var d Decoder
	for _, tc := range []struct {
		key  hal.KeyCode
		want Key
	}{
		{hal.KeyEnter, Key{Rune: '\n'}},
		{hal.KeyBackspace, Key{Rune: '\b'}},
		{hal.KeyTab, Key{Rune: '\t'}},
		{hal.KeyEscape, Key{Rune: 0x1b}},
		{hal.KeyUp, Key{Raw: ArrowUp}},
		{hal.KeyDown, Key{Raw: ArrowDown}},
		{hal.KeyLeft, Key{Raw: ArrowLeft}},
		{hal.KeyRight, Key{Raw: ArrowRight}},
	} {
		keys := decodeAll(&d, hal.KeyScancodes(tc.key))
		require.Len(t, keys, 1, "key %d", tc.key)
		assert.Equal(t, tc.want, keys[0])
	}
}

func TestCapsLock(t *testing.T) {
	var d Decoder
	keys := decodeAll(&d, []byte{
		0x3A, 0xBA, // caps lock
		0x1E, 0x9E, // a
		0x2A, 0x1E, 0x9E, 0xAA, // shift+a
		0x02, 0x82, // 1
	})
	require.Len(t, keys, 4)
	assert.Equal(t, Key{Raw: CapsLock}, keys[0])
	assert.Equal(t, 'A', keys[1].Rune)
	assert.Equal(t, 'a', keys[2].Rune)
	assert.Equal(t, '1', keys[3].Rune)
}

func TestReleasesProduceNothing(t *testing.T) {
	var d Decoder
	assert.Empty(t, decodeAll(&d, []byte{0x9E, 0xE0, 0xC8, 0x1D, 0x9D, 0x38, 0xB8}))
}

func TestFunctionKeys(t *testing.T) {
	var d Decoder
	keys := decodeAll(&d, []byte{0x3B, 0xBB, 0x44})
	assert.Equal(t, []Key{{Raw: F1}, {Raw: F10}}, keys)
}
