package snake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newtown/driver/vga"
	"newtown/hal"
	"newtown/kernel/task"
	"newtown/kernel/tick"
)

func TestNewGame(t *testing.T) {
	g := NewGame(42)
	assert.Equal(t, []Point{{10, 10}, {9, 10}, {8, 10}}, g.Body())
	assert.Equal(t, Right, g.Direction())
	assert.False(t, g.Over())

	f := g.Food()
	assert.GreaterOrEqual(t, f.X, 1)
	assert.LessOrEqual(t, f.X, Width-2)
	assert.GreaterOrEqual(t, f.Y, PlayTop+1)
	assert.LessOrEqual(t, f.Y, Height-2)
	assert.False(t, g.occupied(f))

	assert.Equal(t, f, NewGame(42).Food(), "same seed, same food")
}

func TestTurnIgnoresReversal(t *testing.T) {
	g := NewGame(1)
	g.Turn(Left)
	assert.Equal(t, Right, g.Direction())
	g.Turn(Up)
	assert.Equal(t, Up, g.Direction())
	g.Turn(Down)
	assert.Equal(t, Up, g.Direction())
}

func TestStepMovesAndVacatesTail(t *testing.T) {
	g := NewGame(1)
	g.food = Point{40, 20}

	m := g.Step()
	assert.Equal(t, Move{Head: Point{11, 10}, Neck: Point{10, 10}, Tail: Point{8, 10}, Vacated: true}, m)
	assert.Equal(t, []Point{{11, 10}, {10, 10}, {9, 10}}, g.Body())
}

func TestStepEatsFood(t *testing.T) {
	g := NewGame(1)
	g.food = Point{11, 10}

	m := g.Step()
	assert.True(t, m.Ate)
	assert.False(t, m.Vacated)
	assert.Equal(t, 10, g.Score())
	assert.Len(t, g.Body(), 4)
	assert.NotEqual(t, Point{11, 10}, g.Food())
}

func TestStepIntoWallEndsGame(t *testing.T) {
	g := NewGame(1)
	g.food = Point{1, 23}
	g.Turn(Up)
	for i := 0; i < 10 && !g.Over(); i++ {
		g.Step()
	}
	require.True(t, g.Over())
	assert.Equal(t, Point{10, PlayTop}, g.Head())
	assert.Equal(t, Move{}, g.Step())
}

func TestStepIntoBodyEndsGame(t *testing.T) {
	g := NewGame(1)
	g.body = []Point{{10, 10}, {11, 10}, {11, 11}, {10, 11}, {9, 11}}
	g.dir = Down
	g.food = Point{1, 23}

	g.Step()
	assert.True(t, g.Over())
}

type scancodes struct{ b []byte }

func (s *scancodes) Pop() (byte, bool) {
	if len(s.b) == 0 {
		return 0, false
	}
	b := s.b[0]
	s.b = s.b[1:]
	return b, true
}

func (s *scancodes) push(codes ...byte) { s.b = append(s.b, codes...) }

type countingWaker struct{ n int }

func (c *countingWaker) Wake() { c.n++ }

func TestTaskPlaysAndQuits(t *testing.T) {
	w := vga.NewWriter()
	src := tick.NewSource(4)
	keys := &scancodes{}
	game := New(w, src, keys)
	game.game.food = Point{40, 20}
	cx := task.NewContext(&countingWaker{})

	require.Equal(t, task.Suspended, game.Poll(cx))
	assert.Equal(t, strings.Repeat("#", Width), w.Line(PlayTop-1))
	assert.Equal(t, strings.Repeat("#", Width), w.Line(Height-1))
	assert.Equal(t, byte('O'), w.Cell(10, 10).Char)
	assert.Equal(t, byte('*'), w.Cell(20, 40).Char)

	// one tick draws the score, the second moves
	src.Tick()
	require.Equal(t, task.Suspended, game.Poll(cx))
	assert.Contains(t, w.Line(PlayTop-1), "Score: 0")
	assert.Equal(t, byte('O'), w.Cell(10, 10).Char)

	src.Tick()
	require.Equal(t, task.Suspended, game.Poll(cx))
	assert.Equal(t, byte('O'), w.Cell(10, 11).Char)
	assert.Equal(t, byte('o'), w.Cell(10, 10).Char)
	assert.Equal(t, byte(' '), w.Cell(10, 8).Char)

	code, _ := hal.RuneScancodes('s')
	keys.push(code...)
	src.Tick()
	require.Equal(t, task.Suspended, game.Poll(cx))
	assert.Equal(t, Down, game.Game().Direction())

	code, _ = hal.RuneScancodes('q')
	keys.push(code...)
	src.Tick()
	require.Equal(t, task.Suspended, game.Poll(cx))
	assert.Equal(t, "GAME OVER", strings.TrimSpace(w.Line(Height/2)))
	assert.Equal(t, "Score: 0", strings.TrimSpace(w.Line(Height/2+1)))

	// anything but Enter keeps the game over screen up
	keys.push(0x10, 0x90)
	src.Tick()
	require.Equal(t, task.Suspended, game.Poll(cx))

	keys.push(enterScancode)
	src.Tick()
	require.Equal(t, task.Completed, game.Poll(cx))
	for row := PlayTop - 1; row < Height; row++ {
		assert.Empty(t, w.Line(row), "row %d", row)
	}
	assert.Equal(t, task.Completed, game.Poll(cx))
}

func TestQuitBeforeFirstMove(t *testing.T) {
	src := tick.NewSource(1)
	keys := &scancodes{}
	game := New(vga.NewWriter(), src, keys)
	game.game.End()
	cx := task.NewContext(&countingWaker{})

	src.Tick()
	require.Equal(t, task.Suspended, game.Poll(cx))

	keys.push(enterScancode)
	require.Equal(t, task.Completed, game.Poll(cx))
}
