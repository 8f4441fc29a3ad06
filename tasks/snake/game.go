package snake

import "newtown/driver/vga"

const (
	Width  = vga.Width
	Height = vga.Height
	// PlayTop is the first row inside the border. The border runs along
	// row PlayTop-1, the last row and the first and last columns.
	PlayTop = 2
)

type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

type Point struct {
	X, Y int
}

// Move describes what a Step changed on the board.
type Move struct {
	Head Point
	// Neck is the previous head.
	Neck Point
	// Tail is the cell left by the tail; valid when Vacated is set.
	Tail    Point
	Vacated bool
	Ate     bool
}

// Game is the board state. It does not draw.
type Game struct {
	body  []Point // head first
	dir   Direction
	food  Point
	score int
	rng   uint64
	over  bool
}

// NewGame starts a three cell snake at (10,10) heading right, with food
// placed from the seeded generator.
func NewGame(seed uint64) *Game {
	g := &Game{
		body: []Point{{10, 10}, {9, 10}, {8, 10}},
		dir:  Right,
		rng:  seed,
	}
	g.food = g.spawnFood()
	return g
}

func (g *Game) Body() []Point        { return g.body }
func (g *Game) Head() Point          { return g.body[0] }
func (g *Game) Direction() Direction { return g.dir }
func (g *Game) Food() Point          { return g.food }
func (g *Game) Score() int           { return g.score }
func (g *Game) Over() bool           { return g.over }

// Turn changes direction unless d reverses the snake onto itself.
func (g *Game) Turn(d Direction) {
	if d != g.dir.opposite() {
		g.dir = d
	}
}

// End stops the game.
func (g *Game) End() { g.over = true }

// Step advances the snake one cell. Running into the border or the body ends
// the game; the returned Move is then zero.
func (g *Game) Step() Move {
	if g.over {
		return Move{}
	}
	head := g.body[0]
	next := head
	switch g.dir {
	case Up:
		next.Y--
	case Down:
		next.Y++
	case Left:
		next.X--
	case Right:
		next.X++
	}

	if next.X <= 0 || next.X >= Width-1 || next.Y < PlayTop || next.Y >= Height-1 {
		g.over = true
		return Move{}
	}
	if g.occupied(next) {
		g.over = true
		return Move{}
	}

	g.body = append(g.body, Point{})
	copy(g.body[1:], g.body)
	g.body[0] = next

	m := Move{Head: next, Neck: head}
	if next == g.food {
		m.Ate = true
		g.score += 10
		g.food = g.spawnFood()
		return m
	}
	m.Tail = g.body[len(g.body)-1]
	m.Vacated = true
	g.body = g.body[:len(g.body)-1]
	return m
}

func (g *Game) next() uint64 {
	g.rng = g.rng*1103515245 + 12345
	return g.rng
}

func (g *Game) spawnFood() Point {
	for {
		p := Point{
			X: int(g.next()%(Width-2)) + 1,
			Y: int(g.next()%(Height-PlayTop-2)) + PlayTop + 1,
		}
		if !g.occupied(p) {
			return p
		}
	}
}

func (g *Game) occupied(p Point) bool {
	for _, b := range g.body {
		if b == p {
			return true
		}
	}
	return false
}
