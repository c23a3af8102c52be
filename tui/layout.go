package tui

import (
	"math"

	"github.com/brensch/snekpad/input"
)

const (
	cellWidth = 2 // terminal columns per board cell

	dpadButtonW = 5
	dpadButtonH = 3
	dpadGap     = 1

	// Joystick radius in board rows; one row is two terminal columns.
	joyRadius = 4
)

// Layout fixes where everything is drawn so mouse hit-testing and rendering
// agree. Row 0 is the status line; the board follows directly below.
type Layout struct {
	Cols, Rows int

	BoardTop    int
	ControlsTop int

	DPad     input.DPad
	Joystick input.Rect
}

func NewLayout(cols, rows int) Layout {
	l := Layout{
		Cols:     cols,
		Rows:     rows,
		BoardTop: 1,
	}
	l.ControlsTop = l.BoardTop + rows + 1

	boardW := cols * cellWidth
	dpadW := 3*dpadButtonW + 2*dpadGap
	l.DPad = input.NewDPad(max((boardW-dpadW)/2, 0), l.ControlsTop, dpadButtonW, dpadButtonH, dpadGap)

	joyW := 2*joyRadius*cellWidth + 1
	joyH := 2*joyRadius + 1
	l.Joystick = input.Rect{X: max((boardW-joyW)/2, 0), Y: l.ControlsTop, W: joyW, H: joyH}
	return l
}

func (l Layout) BoardWidth() int { return l.Cols * cellWidth }

// JoystickCenter is the terminal cell of the joystick's resting knob.
func (l Layout) JoystickCenter() (x, y int) {
	return l.Joystick.X + l.Joystick.W/2, l.Joystick.Y + l.Joystick.H/2
}

// KnobCell converts a knob offset, in rows, to a terminal cell.
func (l Layout) KnobCell(knob input.Vec) (x, y int) {
	cx, cy := l.JoystickCenter()
	return cx + int(math.Round(knob.X*cellWidth)), cy + int(math.Round(knob.Y))
}

// Height is the number of lines the view needs for the given controls.
func (l Layout) Height(c Controls) int {
	switch c {
	case ControlsDPad:
		b := l.DPad.Bounds()
		return b.Y + b.H
	default:
		return l.Joystick.Y + l.Joystick.H
	}
}
