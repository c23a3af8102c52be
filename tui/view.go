package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/input"
)

type styles struct {
	wall     lipgloss.Style
	head     lipgloss.Style
	body     lipgloss.Style
	food     lipgloss.Style
	empty    lipgloss.Style
	status   lipgloss.Style
	gameOver lipgloss.Style
	control  lipgloss.Style
	knob     lipgloss.Style
	help     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		wall:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		head:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		body:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		food:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		status:   lipgloss.NewStyle().Bold(true),
		gameOver: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		control:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		knob:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (m Model) View() string {
	if m.snap.Cols == 0 {
		return "No frames.\n"
	}

	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	m.renderBoard(&b)
	b.WriteString(m.footerLine())
	b.WriteByte('\n')

	if !m.replaying() {
		for _, line := range m.renderControls() {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) statusLine() string {
	s := fmt.Sprintf("Score: %d", m.snap.Score)
	if m.replaying() {
		s += fmt.Sprintf("  Turn: %d  Frame %d/%d", m.snap.Turn, m.frame+1, len(m.frames))
		if m.paused {
			s += "  (paused)"
		}
	}
	return m.styles.status.Render(s)
}

func (m Model) footerLine() string {
	if !m.snap.Alive {
		msg := fmt.Sprintf("Game over (%s). Press r to play again.", describeCause(m.snap.Cause))
		if m.replaying() {
			msg = fmt.Sprintf("Game over (%s).", describeCause(m.snap.Cause))
		}
		return m.styles.gameOver.Render(msg)
	}
	if m.replaying() {
		return m.styles.help.Render("space pause · q quit")
	}
	return m.styles.help.Render(fmt.Sprintf("arrows/wasd/hjkl steer · tab %s · q quit", m.otherControls()))
}

func (m Model) otherControls() Controls {
	if m.controls == ControlsDPad {
		return ControlsJoystick
	}
	return ControlsDPad
}

func describeCause(c game.Cause) string {
	switch c {
	case game.CauseWall:
		return "hit the wall"
	case game.CauseSelf:
		return "bit yourself"
	case game.CauseBoardFull:
		return "board full"
	default:
		return c.String()
	}
}

func (m Model) renderBoard(b *strings.Builder) {
	s := m.snap
	body := make(map[game.Point]bool, len(s.Body))
	for _, p := range s.Body {
		body[p] = true
	}
	var head game.Point
	if len(s.Body) > 0 {
		head = s.Body[0]
	}

	for y := 0; y < s.Rows; y++ {
		for x := 0; x < s.Cols; x++ {
			p := game.Point{X: x, Y: y}
			switch {
			case len(s.Body) > 0 && p == head:
				b.WriteString(m.styles.head.Render("██"))
			case body[p]:
				b.WriteString(m.styles.body.Render("▓▓"))
			case p == s.Food:
				b.WriteString(m.styles.food.Render("()"))
			case s.IsWall(p):
				b.WriteString(m.styles.wall.Render("██"))
			default:
				b.WriteString(m.styles.empty.Render(" ·"))
			}
		}
		b.WriteByte('\n')
	}
}

// renderControls draws the control area starting at Layout.ControlsTop.
func (m Model) renderControls() []string {
	height := m.layout.Height(m.controls) - m.layout.ControlsTop
	width := max(m.layout.BoardWidth(), m.layout.DPad.Bounds().X+m.layout.DPad.Bounds().W, m.layout.Joystick.X+m.layout.Joystick.W)
	c := newCanvas(width, height)
	top := m.layout.ControlsTop

	switch m.controls {
	case ControlsDPad:
		for _, btn := range m.layout.DPad.Buttons {
			c.box(btn.Rect.X, btn.Rect.Y-top, btn.Rect.W, btn.Rect.H)
			c.set(btn.Rect.X+btn.Rect.W/2, btn.Rect.Y-top+btn.Rect.H/2, []rune(btn.Label)[0])
		}
		return c.lines(m.styles.control, nil)

	default:
		r := m.layout.Joystick
		c.ring(r.X, r.Y-top, r.W, r.H)
		cx, cy := m.layout.JoystickCenter()
		c.set(cx, cy-top, '+')
		kx, ky := m.layout.KnobCell(m.joy.Knob())
		c.set(kx, ky-top, 'O')
		return c.lines(m.styles.control, &knobMark{x: kx, y: ky - top, style: m.styles.knob})
	}
}

type knobMark struct {
	x, y  int
	style lipgloss.Style
}

// canvas is a small rune grid for the control area.
type canvas struct {
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", w))
	}
	return &canvas{cells: cells}
}

func (c *canvas) set(x, y int, r rune) {
	if y < 0 || y >= len(c.cells) || x < 0 || x >= len(c.cells[y]) {
		return
	}
	c.cells[y][x] = r
}

func (c *canvas) box(x, y, w, h int) {
	for i := 1; i < w-1; i++ {
		c.set(x+i, y, '─')
		c.set(x+i, y+h-1, '─')
	}
	for j := 1; j < h-1; j++ {
		c.set(x, y+j, '│')
		c.set(x+w-1, y+j, '│')
	}
	c.set(x, y, '┌')
	c.set(x+w-1, y, '┐')
	c.set(x, y+h-1, '└')
	c.set(x+w-1, y+h-1, '┘')
}

// ring draws a dotted ellipse inscribed in the rectangle.
func (c *canvas) ring(x, y, w, h int) {
	half := input.Vec{X: float64(w-1) / 2, Y: float64(h-1) / 2}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			dx := (float64(i) - half.X) / half.X
			dy := (float64(j) - half.Y) / half.Y
			d := dx*dx + dy*dy
			if d > 0.8 && d <= 1.1 {
				c.set(x+i, y+j, '·')
			}
		}
	}
}

func (c *canvas) lines(style lipgloss.Style, knob *knobMark) []string {
	out := make([]string, len(c.cells))
	for y, row := range c.cells {
		if knob == nil || knob.y != y || knob.x < 0 || knob.x >= len(row) {
			out[y] = style.Render(string(row))
			continue
		}
		out[y] = style.Render(string(row[:knob.x])) +
			knob.style.Render(string(row[knob.x])) +
			style.Render(string(row[knob.x+1:]))
	}
	return out
}
