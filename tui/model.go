// Package tui is the terminal front end: a bubbletea program that renders
// snapshots and feeds key, D-pad and joystick input back to the game.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/input"
)

// Controls selects the on-screen control shown under the board.
type Controls int

const (
	ControlsJoystick Controls = iota
	ControlsDPad
)

func (c Controls) String() string {
	if c == ControlsDPad {
		return "dpad"
	}
	return "joystick"
}

// ParseControls accepts "joystick" and "dpad".
func ParseControls(s string) (Controls, bool) {
	switch s {
	case "joystick", "":
		return ControlsJoystick, true
	case "dpad":
		return ControlsDPad, true
	}
	return ControlsJoystick, false
}

// Game is the part of a session the UI drives. *session.Controller
// satisfies it.
type Game interface {
	RequestDirection(d game.Direction)
	Reset()
}

type snapshotMsg game.Snapshot

type updatesClosedMsg struct{}

type replayTickMsg time.Time

type Model struct {
	game    Game
	updates <-chan game.Snapshot

	snap     game.Snapshot
	layout   Layout
	controls Controls
	styles   styles

	joy        *input.Joystick
	lastMouseX int
	lastMouseY int

	// Replay mode.
	frames   []game.Snapshot
	frame    int
	interval time.Duration
	paused   bool
}

// New builds a model for a live game. initial is shown until the first
// update arrives.
func New(g Game, updates <-chan game.Snapshot, initial game.Snapshot, controls Controls) Model {
	return Model{
		game:     g,
		updates:  updates,
		snap:     initial,
		layout:   NewLayout(initial.Cols, initial.Rows),
		controls: controls,
		styles:   defaultStyles(),
		joy:      input.NewJoystick(joyRadius),
	}
}

// NewReplay plays recorded frames back at interval.
func NewReplay(frames []game.Snapshot, interval time.Duration) Model {
	m := Model{
		frames:   frames,
		interval: interval,
		styles:   defaultStyles(),
		joy:      input.NewJoystick(joyRadius),
		controls: ControlsJoystick,
	}
	if len(frames) > 0 {
		m.snap = frames[0]
		m.layout = NewLayout(m.snap.Cols, m.snap.Rows)
	}
	return m
}

func (m Model) Snapshot() game.Snapshot { return m.snap }

func (m Model) replaying() bool { return m.game == nil }

func waitForUpdate(updates <-chan game.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

func replayTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return replayTickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	if m.replaying() {
		if len(m.frames) < 2 {
			return nil
		}
		return replayTickCmd(m.interval)
	}
	return waitForUpdate(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if !m.replaying() {
			m.handleMouse(msg)
		}
		return m, nil
	case snapshotMsg:
		m.snap = game.Snapshot(msg)
		return m, waitForUpdate(m.updates)
	case updatesClosedMsg:
		return m, tea.Quit
	case replayTickMsg:
		if m.paused || m.frame >= len(m.frames)-1 {
			return m, nil
		}
		m.frame++
		m.snap = m.frames[m.frame]
		if m.frame >= len(m.frames)-1 {
			return m, nil
		}
		return m, replayTickCmd(m.interval)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}

	if m.replaying() {
		if key == " " {
			m.paused = !m.paused
			if !m.paused && m.frame < len(m.frames)-1 {
				return m, replayTickCmd(m.interval)
			}
		}
		return m, nil
	}

	switch key {
	case "tab":
		m.joy.End()
		if m.controls == ControlsDPad {
			m.controls = ControlsJoystick
		} else {
			m.controls = ControlsDPad
		}
		return m, nil
	case "r", "enter", " ":
		if !m.snap.Alive {
			m.game.Reset()
		}
		return m, nil
	}

	if d, ok := input.KeyDirection(key); ok {
		m.game.RequestDirection(d)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch m.controls {
	case ControlsDPad:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return
		}
		if d, ok := m.layout.DPad.Hit(msg.X, msg.Y); ok {
			m.game.RequestDirection(d)
		}

	case ControlsJoystick:
		switch msg.Action {
		case tea.MouseActionPress:
			if msg.Button != tea.MouseButtonLeft || !m.layout.Joystick.Contains(msg.X, msg.Y) {
				return
			}
			m.joy.Start()
			m.lastMouseX, m.lastMouseY = msg.X, msg.Y
		case tea.MouseActionMotion:
			if !m.joy.Dragging() {
				return
			}
			dx := float64(msg.X-m.lastMouseX) / cellWidth
			dy := float64(msg.Y - m.lastMouseY)
			m.lastMouseX, m.lastMouseY = msg.X, msg.Y
			if d, ok := m.joy.Drag(dx, dy); ok {
				m.game.RequestDirection(d)
			}
		case tea.MouseActionRelease:
			m.joy.End()
		}
	}
}
