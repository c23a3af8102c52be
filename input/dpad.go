package input

import "github.com/brensch/snekpad/game"

// Rect is an inclusive-exclusive cell rectangle: [X, X+W) x [Y, Y+H).
type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// DPadButton is one on-screen arrow button.
type DPadButton struct {
	Dir   game.Direction
	Label string
	Rect  Rect
}

// DPad lays out four buttons: up alone on the first row, then left, down and
// right on the second row.
type DPad struct {
	Buttons [4]DPadButton
}

// NewDPad places a D-pad with its top-left corner at (x, y). Each button is
// btnW cells wide and btnH rows tall with gap cells between them.
func NewDPad(x, y, btnW, btnH, gap int) DPad {
	row2 := y + btnH + gap
	col := func(i int) int { return x + i*(btnW+gap) }
	return DPad{Buttons: [4]DPadButton{
		{Dir: game.Up, Label: "↑", Rect: Rect{X: col(1), Y: y, W: btnW, H: btnH}},
		{Dir: game.Left, Label: "←", Rect: Rect{X: col(0), Y: row2, W: btnW, H: btnH}},
		{Dir: game.Down, Label: "↓", Rect: Rect{X: col(1), Y: row2, W: btnW, H: btnH}},
		{Dir: game.Right, Label: "→", Rect: Rect{X: col(2), Y: row2, W: btnW, H: btnH}},
	}}
}

// Bounds is the smallest rectangle covering every button.
func (p DPad) Bounds() Rect {
	left, top := p.Buttons[1].Rect.X, p.Buttons[0].Rect.Y
	right := p.Buttons[3].Rect.X + p.Buttons[3].Rect.W
	bottom := p.Buttons[3].Rect.Y + p.Buttons[3].Rect.H
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// Hit returns the direction of the button under (x, y), if any.
func (p DPad) Hit(x, y int) (game.Direction, bool) {
	for _, b := range p.Buttons {
		if b.Rect.Contains(x, y) {
			return b.Dir, true
		}
	}
	return 0, false
}

// Button maps a button name ("up", "down", "left", "right") to a direction.
func Button(name string) (game.Direction, bool) {
	d, err := game.ParseDirection(name)
	if err != nil {
		return 0, false
	}
	return d, true
}
