package rules

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/brensch/snekpad/game"
)

func dumpState(cfg game.Config, state *game.GameState) string {
	if state == nil {
		return "<nil state>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Alive=%v Cause=%s Score=%d Heading=%s Pending=%s\n",
		state.Turn, state.Alive, state.Cause, state.Score, state.Heading, state.Pending)
	fmt.Fprintf(&b, "Food: (%d,%d)\nBody:", state.Food.X, state.Food.Y)
	for _, p := range state.Body {
		fmt.Fprintf(&b, " (%d,%d)", p.X, p.Y)
	}
	b.WriteString("\n")

	if cfg.Cols > 40 || cfg.Rows > 40 {
		return b.String()
	}
	body := make(map[game.Point]int, len(state.Body))
	for i, p := range state.Body {
		body[p] = i
	}
	interior := cfg.Interior()
	for y := 0; y < cfg.Rows; y++ {
		for x := 0; x < cfg.Cols; x++ {
			p := game.Point{X: x, Y: y}
			i, onBody := body[p]
			switch {
			case onBody && i == 0:
				b.WriteByte('H')
			case onBody:
				b.WriteByte('s')
			case p == state.Food:
				b.WriteByte('F')
			case !interior.Contains(p):
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func smallConfig() game.Config {
	return game.Config{
		Cols:           8,
		Rows:           8,
		Wall:           1,
		Tick:           10 * time.Millisecond,
		InitialSnake:   []game.Point{{X: 3, Y: 3}, {X: 2, Y: 3}, {X: 1, Y: 3}},
		InitialHeading: game.Right,
	}
}

func assertBody(t *testing.T, cfg game.Config, state *game.GameState, want []game.Point) {
	t.Helper()
	if len(state.Body) != len(want) {
		t.Fatalf("body len=%d want=%d\n%s", len(state.Body), len(want), dumpState(cfg, state))
	}
	for i := range want {
		if state.Body[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v\n%s", i, state.Body[i], want[i], dumpState(cfg, state))
		}
	}
}

func TestStep_NormalMoveDropsTail(t *testing.T) {
	cfg := game.DefaultConfig()
	state := game.NewGameState(cfg, rand.New(rand.NewSource(1)))
	state.Food = game.Point{X: 10, Y: 20}

	out := Step(state, cfg, nil)
	if out != OutcomeMoved {
		t.Fatalf("outcome=%s want=moved", out)
	}
	assertBody(t, cfg, state, []game.Point{{X: 6, Y: 10}, {X: 5, Y: 10}, {X: 4, Y: 10}})
	if !state.Alive || state.Score != 0 || state.Turn != 1 {
		t.Fatalf("unexpected state after move:\n%s", dumpState(cfg, state))
	}
}

func TestRequestDirection_OppositeRejected(t *testing.T) {
	cfg := game.DefaultConfig()
	state := game.NewGameState(cfg, nil)

	if RequestDirection(state, game.Left) {
		t.Fatalf("reverse request accepted")
	}
	if state.Heading != game.Right || state.Pending != game.Right {
		t.Fatalf("heading=%s pending=%s want right", state.Heading, state.Pending)
	}
}

func TestRequestDirection_Idempotent(t *testing.T) {
	state := game.NewGameState(game.DefaultConfig(), nil)
	for i := 0; i < 3; i++ {
		if !RequestDirection(state, game.Up) {
			t.Fatalf("request %d rejected", i)
		}
	}
	if state.Pending != game.Up || state.Heading != game.Right {
		t.Fatalf("pending=%s heading=%s", state.Pending, state.Heading)
	}
}

func TestRequestDirection_BurstCannotReverseWithinTick(t *testing.T) {
	cfg := game.DefaultConfig()
	state := game.NewGameState(cfg, nil)
	state.Food = game.Point{X: 10, Y: 20}

	// Up is fine, but Left still reverses the heading the snake actually moved in.
	RequestDirection(state, game.Up)
	if RequestDirection(state, game.Left) {
		t.Fatalf("left accepted while last move was right")
	}

	before := state.Heading
	Step(state, cfg, nil)
	if state.Heading == before.Opposite() {
		t.Fatalf("heading reversed in one tick: %s -> %s", before, state.Heading)
	}
	if state.Heading != game.Up || !state.Alive {
		t.Fatalf("expected to turn up and survive:\n%s", dumpState(cfg, state))
	}

	// After moving up, left is perpendicular and allowed.
	if !RequestDirection(state, game.Left) {
		t.Fatalf("left rejected after moving up")
	}
}

func TestRequestDirection_IgnoredWhenOver(t *testing.T) {
	state := game.NewGameState(game.DefaultConfig(), nil)
	state.Alive = false
	if RequestDirection(state, game.Up) {
		t.Fatalf("request accepted on a finished game")
	}
}

func TestStep_EatFoodGrows(t *testing.T) {
	cfg := game.DefaultConfig()
	state := game.NewGameState(cfg, nil)
	state.Food = game.Point{X: 6, Y: 10}

	out := Step(state, cfg, rand.New(rand.NewSource(9)))
	if out != OutcomeAte {
		t.Fatalf("outcome=%s want=ate\n%s", out, dumpState(cfg, state))
	}
	assertBody(t, cfg, state, []game.Point{{X: 6, Y: 10}, {X: 5, Y: 10}, {X: 4, Y: 10}, {X: 3, Y: 10}})
	if state.Score != 1 {
		t.Fatalf("score=%d want=1", state.Score)
	}
	if state.Occupies(state.Food) {
		t.Fatalf("new food %v placed on body", state.Food)
	}
	if !cfg.Interior().Contains(state.Food) {
		t.Fatalf("new food %v outside interior", state.Food)
	}
}

func TestStep_WallCollision(t *testing.T) {
	tests := []struct {
		name string
		body []game.Point
		dir  game.Direction
	}{
		{"left wall", []game.Point{{X: 1, Y: 4}, {X: 2, Y: 4}, {X: 3, Y: 4}}, game.Left},
		{"right wall", []game.Point{{X: 6, Y: 4}, {X: 5, Y: 4}, {X: 4, Y: 4}}, game.Right},
		{"top wall", []game.Point{{X: 4, Y: 1}, {X: 4, Y: 2}, {X: 4, Y: 3}}, game.Up},
		{"bottom wall", []game.Point{{X: 4, Y: 6}, {X: 4, Y: 5}, {X: 4, Y: 4}}, game.Down},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			state := &game.GameState{
				Body:    tt.body,
				Heading: tt.dir,
				Pending: tt.dir,
				Food:    game.Point{X: 3, Y: 6},
				Alive:   true,
			}
			before := state.Clone()

			out := Step(state, cfg, nil)
			if out != OutcomeDiedWall || state.Alive || state.Cause != game.CauseWall {
				t.Fatalf("outcome=%s\n%s", out, dumpState(cfg, state))
			}
			assertBody(t, cfg, state, before.Body)

			// No further ticks are processed once over.
			if out := Step(state, cfg, nil); out != OutcomeNone {
				t.Fatalf("step after death=%s want none", out)
			}
			if state.Turn != 1 {
				t.Fatalf("turn=%d want=1", state.Turn)
			}
		})
	}
}

func TestStep_SelfCollision(t *testing.T) {
	cfg := smallConfig()
	// Head at (3,3) moving down into its own body at (3,4).
	state := &game.GameState{
		Body: []game.Point{
			{X: 3, Y: 3}, {X: 4, Y: 3}, {X: 4, Y: 4}, {X: 3, Y: 4}, {X: 2, Y: 4},
		},
		Heading: game.Left,
		Pending: game.Left,
		Food:    game.Point{X: 6, Y: 6},
		Alive:   true,
	}
	if !RequestDirection(state, game.Down) {
		t.Fatalf("down rejected")
	}

	if out := Step(state, cfg, nil); out != OutcomeDiedSelf {
		t.Fatalf("outcome=%s want died_self\n%s", out, dumpState(cfg, state))
	}
	if state.Cause != game.CauseSelf {
		t.Fatalf("cause=%s want self", state.Cause)
	}
}

func TestStep_MovingIntoTailIsACollision(t *testing.T) {
	cfg := smallConfig()
	// A 2x2 loop: the head's next cell is the current tail.
	state := &game.GameState{
		Body:    []game.Point{{X: 3, Y: 3}, {X: 3, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 3}},
		Heading: game.Up,
		Pending: game.Left,
		Food:    game.Point{X: 6, Y: 6},
		Alive:   true,
	}
	if out := Step(state, cfg, nil); out != OutcomeDiedSelf {
		t.Fatalf("outcome=%s want died_self\n%s", out, dumpState(cfg, state))
	}
}

func TestStep_BoardFull(t *testing.T) {
	cfg := game.Config{
		Cols:           5,
		Rows:           4,
		Wall:           1,
		Tick:           time.Millisecond,
		InitialSnake:   []game.Point{{X: 3, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}},
		InitialHeading: game.Right,
	}
	// Interior is 3x2; the only free cell is (3,2).
	state := &game.GameState{
		Body:    append([]game.Point(nil), cfg.InitialSnake...),
		Heading: game.Right,
		Pending: game.Down,
		Food:    game.Point{X: 3, Y: 2},
		Alive:   true,
	}

	out := Step(state, cfg, nil)
	if out != OutcomeBoardFull || state.Alive || state.Cause != game.CauseBoardFull {
		t.Fatalf("outcome=%s\n%s", out, dumpState(cfg, state))
	}
	if state.Score != 1 || len(state.Body) != 6 {
		t.Fatalf("score=%d len=%d", state.Score, len(state.Body))
	}
}

func TestOutcome_Over(t *testing.T) {
	for _, o := range []Outcome{OutcomeDiedWall, OutcomeDiedSelf, OutcomeBoardFull} {
		if !o.Over() {
			t.Errorf("%s should end the session", o)
		}
	}
	for _, o := range []Outcome{OutcomeNone, OutcomeMoved, OutcomeAte} {
		if o.Over() {
			t.Errorf("%s should not end the session", o)
		}
	}
}

// TestStep_RandomPlayInvariants drives many sessions with random requests
// and checks the invariants after every tick.
func TestStep_RandomPlayInvariants(t *testing.T) {
	cfg := smallConfig()
	rng := rand.New(rand.NewSource(2024))
	dirs := []game.Direction{game.Up, game.Down, game.Left, game.Right}

	for session := 0; session < 200; session++ {
		state := game.NewGameState(cfg, rng)
		for state.Alive {
			for i := rng.Intn(3); i > 0; i-- {
				RequestDirection(state, dirs[rng.Intn(len(dirs))])
			}

			before := state.Clone()
			out := Step(state, cfg, rng)

			if state.Heading == before.Heading.Opposite() {
				t.Fatalf("heading reversed %s -> %s\n%s", before.Heading, state.Heading, dumpState(cfg, state))
			}

			switch out {
			case OutcomeMoved:
				if len(state.Body) != len(before.Body) || state.Score != before.Score {
					t.Fatalf("move changed length/score\n%s", dumpState(cfg, state))
				}
			case OutcomeAte:
				if len(state.Body) != len(before.Body)+1 || state.Score != before.Score+1 {
					t.Fatalf("eat did not grow by one\n%s", dumpState(cfg, state))
				}
			}
			if !state.Alive {
				break
			}

			if len(state.Body) < 3 {
				t.Fatalf("body shorter than 3\n%s", dumpState(cfg, state))
			}
			seen := make(map[game.Point]bool, len(state.Body))
			for i, p := range state.Body {
				if seen[p] {
					t.Fatalf("duplicate body cell %v\n%s", p, dumpState(cfg, state))
				}
				seen[p] = true
				if i > 0 {
					prev := state.Body[i-1]
					dx, dy := p.X-prev.X, p.Y-prev.Y
					if dx*dx+dy*dy != 1 {
						t.Fatalf("body not contiguous at %d\n%s", i, dumpState(cfg, state))
					}
				}
			}
			if seen[state.Food] {
				t.Fatalf("food on body\n%s", dumpState(cfg, state))
			}
		}
	}
}
