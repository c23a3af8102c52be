package game

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid game config")

// Config holds the fixed parameters of a session.
type Config struct {
	Cols           int
	Rows           int
	Wall           int // border thickness in cells
	Tick           time.Duration
	InitialSnake   []Point // head first
	InitialHeading Direction
}

// DefaultConfig is the 20x28 board with a one-cell wall and a 120ms tick.
func DefaultConfig() Config {
	return Config{
		Cols:           20,
		Rows:           28,
		Wall:           1,
		Tick:           120 * time.Millisecond,
		InitialSnake:   []Point{{X: 5, Y: 10}, {X: 4, Y: 10}, {X: 3, Y: 10}},
		InitialHeading: Right,
	}
}

// Bounds is an inclusive rectangle of cells.
type Bounds struct {
	MinX, MaxX int
	MinY, MaxY int
}

func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

func (b Bounds) Area() int {
	if b.MaxX < b.MinX || b.MaxY < b.MinY {
		return 0
	}
	return (b.MaxX - b.MinX + 1) * (b.MaxY - b.MinY + 1)
}

// Interior is the playable region: the grid minus the wall on every side.
func (c Config) Interior() Bounds {
	return Bounds{
		MinX: c.Wall,
		MaxX: c.Cols - 1 - c.Wall,
		MinY: c.Wall,
		MaxY: c.Rows - 1 - c.Wall,
	}
}

// Validate checks that a session built from c can start and place food.
// Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Cols <= 0 || c.Rows <= 0 {
		return invalid("grid %dx%d", c.Cols, c.Rows)
	}
	if c.Wall < 0 {
		return invalid("wall thickness %d", c.Wall)
	}
	if c.Tick <= 0 {
		return invalid("tick %s", c.Tick)
	}
	if !c.InitialHeading.Valid() {
		return invalid("initial heading %s", c.InitialHeading)
	}

	interior := c.Interior()
	if interior.Area() == 0 {
		return invalid("no playable interior inside a %d-cell wall", c.Wall)
	}
	if len(c.InitialSnake) < 3 {
		return invalid("initial snake length %d, need at least 3", len(c.InitialSnake))
	}
	if len(c.InitialSnake) >= interior.Area() {
		return invalid("initial snake of %d leaves no room for food in %d cells", len(c.InitialSnake), interior.Area())
	}

	seen := make(map[Point]bool, len(c.InitialSnake))
	for i, p := range c.InitialSnake {
		if !interior.Contains(p) {
			return invalid("initial snake cell %d (%d,%d) outside interior", i, p.X, p.Y)
		}
		if seen[p] {
			return invalid("initial snake cell %d (%d,%d) duplicated", i, p.X, p.Y)
		}
		seen[p] = true
		if i > 0 && manhattan(p, c.InitialSnake[i-1]) != 1 {
			return invalid("initial snake cells %d and %d are not adjacent", i-1, i)
		}
	}

	if c.InitialSnake[0].Add(c.InitialHeading.Delta()) == c.InitialSnake[1] {
		return invalid("initial heading %s reverses into the neck", c.InitialHeading)
	}
	return nil
}

func manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
