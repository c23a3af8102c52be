// Package input turns raw input events into direction requests.
//
// Nothing here knows about the game state. Callers route the resulting
// game.Direction into rules.RequestDirection (or a session.Controller), which
// owns the reversal check.
package input

import (
	"strings"

	"github.com/brensch/snekpad/game"
)

var keyDirections = map[string]game.Direction{
	"up":    game.Up,
	"down":  game.Down,
	"left":  game.Left,
	"right": game.Right,

	"w": game.Up,
	"s": game.Down,
	"a": game.Left,
	"d": game.Right,

	"k": game.Up,
	"j": game.Down,
	"h": game.Left,
	"l": game.Right,
}

// KeyDirection maps a key name, as produced by bubbletea's KeyMsg.String,
// to a direction. Letter keys are case-insensitive.
func KeyDirection(key string) (game.Direction, bool) {
	d, ok := keyDirections[strings.ToLower(key)]
	return d, ok
}
