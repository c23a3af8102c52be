// Package game defines the core state types for a single-player snake game.
//
// A GameState is owned by exactly one goroutine (see package session). Anything
// that renders or ships state elsewhere works from a Snapshot, which shares no
// memory with the live state.
package game

import (
	"fmt"
	"math/rand"
)

// Point is a grid cell. (0,0) is the top-left corner and Y grows downward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Direction is one of the four cardinal headings.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d.Valid() {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

func (d Direction) Valid() bool {
	return int(d) < len(directionNames)
}

// Opposite returns the heading that exactly reverses d.
func (d Direction) Opposite() Direction {
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

// Delta is the unit step for one move in direction d.
func (d Direction) Delta() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{X: 1, Y: 0}
	}
}

func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if s == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Cause records why a session ended.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseWall
	CauseSelf
	CauseBoardFull
)

var causeNames = [...]string{"none", "wall", "self", "board_full"}

func (c Cause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}
	return fmt.Sprintf("cause(%d)", uint8(c))
}

func ParseCause(s string) (Cause, error) {
	for i, name := range causeNames {
		if s == name {
			return Cause(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cause %q", s)
}

func (c Cause) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cause) UnmarshalText(b []byte) error {
	parsed, err := ParseCause(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// GameState is the complete mutable state of one session.
//
// Heading is the direction of the last move; Pending is the direction the
// next tick will use. Keeping the two apart means a burst of requests inside
// one tick can never turn the snake back onto its own neck.
type GameState struct {
	Body    []Point // head first
	Heading Direction
	Pending Direction
	Food    Point
	Alive   bool
	Score   int
	Turn    int
	Cause   Cause
}

// NewGameState returns a running session built from cfg.
// cfg must already have passed Validate.
func NewGameState(cfg Config, rng *rand.Rand) *GameState {
	s := &GameState{}
	s.Reset(cfg, rng)
	return s
}

// Reset reinitialises s in place to the starting values of cfg.
func (s *GameState) Reset(cfg Config, rng *rand.Rand) {
	body := make([]Point, len(cfg.InitialSnake))
	copy(body, cfg.InitialSnake)

	*s = GameState{
		Body:    body,
		Heading: cfg.InitialHeading,
		Pending: cfg.InitialHeading,
		Alive:   true,
	}

	food, ok := PlaceFood(cfg.Interior(), body, rng)
	if !ok {
		// Validate guarantees room for food, so this only happens with an
		// unchecked config.
		s.Alive = false
		s.Cause = CauseBoardFull
		return
	}
	s.Food = food
}

func (s *GameState) Head() Point {
	return s.Body[0]
}

// Occupies reports whether p is any cell of the body.
func (s *GameState) Occupies(p Point) bool {
	for _, b := range s.Body {
		if b == p {
			return true
		}
	}
	return false
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	if len(s.Body) > 0 {
		out.Body = make([]Point, len(s.Body))
		copy(out.Body, s.Body)
	}
	return &out
}

// Snapshot is a read-only view of a session for renderers and the wire.
type Snapshot struct {
	Cols    int       `json:"cols"`
	Rows    int       `json:"rows"`
	Wall    int       `json:"wall"`
	Body    []Point   `json:"body"`
	Heading Direction `json:"heading"`
	Food    Point     `json:"food"`
	Alive   bool      `json:"alive"`
	Score   int       `json:"score"`
	Turn    int       `json:"turn"`
	Cause   Cause     `json:"cause"`
}

func (s *GameState) Snapshot(cfg Config) Snapshot {
	body := make([]Point, len(s.Body))
	copy(body, s.Body)
	return Snapshot{
		Cols:    cfg.Cols,
		Rows:    cfg.Rows,
		Wall:    cfg.Wall,
		Body:    body,
		Heading: s.Heading,
		Food:    s.Food,
		Alive:   s.Alive,
		Score:   s.Score,
		Turn:    s.Turn,
		Cause:   s.Cause,
	}
}

// IsWall reports whether p lies in the border of the snapshot's grid.
func (s Snapshot) IsWall(p Point) bool {
	return p.X < s.Wall || p.X > s.Cols-1-s.Wall || p.Y < s.Wall || p.Y > s.Rows-1-s.Wall
}
