// Package rules advances a game.GameState one tick at a time.
//
// All functions here are synchronous and assume the caller is the single
// owner of the state.
package rules

import (
	"math/rand"

	"github.com/brensch/snekpad/game"
)

// Outcome describes what a single Step did.
type Outcome uint8

const (
	OutcomeNone Outcome = iota // state was already over
	OutcomeMoved
	OutcomeAte
	OutcomeDiedWall
	OutcomeDiedSelf
	OutcomeBoardFull
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeAte:
		return "ate"
	case OutcomeDiedWall:
		return "died_wall"
	case OutcomeDiedSelf:
		return "died_self"
	case OutcomeBoardFull:
		return "board_full"
	default:
		return "none"
	}
}

// Over reports whether the outcome ended the session.
func (o Outcome) Over() bool {
	return o == OutcomeDiedWall || o == OutcomeDiedSelf || o == OutcomeBoardFull
}

// RequestDirection queues d for the next tick unless it reverses the heading
// the snake last moved in. It reports whether the request was accepted.
func RequestDirection(state *game.GameState, d game.Direction) bool {
	if !state.Alive || !d.Valid() {
		return false
	}
	if d == state.Heading.Opposite() {
		return false
	}
	state.Pending = d
	return true
}

// NextHead is the cell the head moves into when travelling in d.
func NextHead(state *game.GameState, d game.Direction) game.Point {
	return state.Head().Add(d.Delta())
}

func HitsWall(cfg game.Config, p game.Point) bool {
	return !cfg.Interior().Contains(p)
}

// HitsSelf reports whether p is an occupied body cell. The tail counts: it
// has not moved yet when the head arrives.
func HitsSelf(state *game.GameState, p game.Point) bool {
	return state.Occupies(p)
}

// Step applies one tick to state.
func Step(state *game.GameState, cfg game.Config, rng *rand.Rand) Outcome {
	if !state.Alive {
		return OutcomeNone
	}

	state.Turn++
	state.Heading = state.Pending
	next := NextHead(state, state.Heading)

	if HitsWall(cfg, next) {
		state.Alive = false
		state.Cause = game.CauseWall
		return OutcomeDiedWall
	}
	if HitsSelf(state, next) {
		state.Alive = false
		state.Cause = game.CauseSelf
		return OutcomeDiedSelf
	}

	body := make([]game.Point, 0, len(state.Body)+1)
	body = append(body, next)
	body = append(body, state.Body...)

	if next != state.Food {
		state.Body = body[:len(body)-1]
		return OutcomeMoved
	}

	state.Body = body
	state.Score++
	food, ok := game.PlaceFood(cfg.Interior(), state.Body, rng)
	if !ok {
		state.Alive = false
		state.Cause = game.CauseBoardFull
		return OutcomeBoardFull
	}
	state.Food = food
	return OutcomeAte
}
