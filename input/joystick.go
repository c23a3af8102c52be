package input

import (
	"math"

	"github.com/brensch/snekpad/game"
)

const (
	DefaultMaxFrac       = 0.7
	DefaultThresholdFrac = 0.25
)

// Vec is a 2D offset in the joystick's own units (pixels, cells, ...).
// Y grows downward, matching screen coordinates.
type Vec struct {
	X, Y float64
}

func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Resolve picks a direction from a drag vector by its dominant axis. Nothing
// is emitted until the magnitude exceeds threshold.
func Resolve(dx, dy, threshold float64) (game.Direction, bool) {
	if math.Hypot(dx, dy) <= threshold {
		return 0, false
	}
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return game.Right, true
		}
		return game.Left, true
	}
	if dy > 0 {
		return game.Down, true
	}
	return game.Up, true
}

// Joystick is a virtual thumbstick driven by drag deltas.
//
// The knob offset accumulates deltas and is clamped to MaxFrac*Radius for
// display. Direction is decided from the unclamped magnitude; clamping scales
// both axes equally, so it never changes which axis dominates.
type Joystick struct {
	Radius        float64
	MaxFrac       float64
	ThresholdFrac float64

	knob     Vec
	dragging bool
}

func NewJoystick(radius float64) *Joystick {
	return &Joystick{
		Radius:        radius,
		MaxFrac:       DefaultMaxFrac,
		ThresholdFrac: DefaultThresholdFrac,
	}
}

// Start begins a drag with the knob centred.
func (j *Joystick) Start() {
	j.knob = Vec{}
	j.dragging = true
}

// Drag adds (dx, dy) to the knob offset and returns the direction it points
// in, if it has moved far enough from the centre.
func (j *Joystick) Drag(dx, dy float64) (game.Direction, bool) {
	if !j.dragging {
		j.Start()
	}
	j.knob.X += dx
	j.knob.Y += dy

	length := j.knob.Len()
	if maxR := j.Radius * j.MaxFrac; length > maxR && length > 0 {
		s := maxR / length
		j.knob = Vec{X: j.knob.X * s, Y: j.knob.Y * s}
	}

	if length <= j.Radius*j.ThresholdFrac {
		return 0, false
	}
	return Resolve(j.knob.X, j.knob.Y, 0)
}

// End releases the knob back to the centre.
func (j *Joystick) End() {
	j.knob = Vec{}
	j.dragging = false
}

func (j *Joystick) Knob() Vec      { return j.knob }
func (j *Joystick) Dragging() bool { return j.dragging }
