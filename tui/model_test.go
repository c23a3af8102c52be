package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpad/game"
)

type fakeGame struct {
	dirs   []game.Direction
	resets int
}

func (f *fakeGame) RequestDirection(d game.Direction) { f.dirs = append(f.dirs, d) }
func (f *fakeGame) Reset()                            { f.resets++ }

func initialSnapshot() game.Snapshot {
	cfg := game.DefaultConfig()
	return game.NewGameState(cfg, nil).Snapshot(cfg)
}

func newTestModel(controls Controls) (Model, *fakeGame, chan game.Snapshot) {
	g := &fakeGame{}
	updates := make(chan game.Snapshot, 1)
	return New(g, updates, initialSnapshot(), controls), g, updates
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("update returned %T", next)
	}
	return out, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_DirectionKeys(t *testing.T) {
	m, g, _ := newTestModel(ControlsJoystick)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, keyRunes("j"))
	_, _ = update(t, m, keyRunes("x"))

	want := []game.Direction{game.Up, game.Left, game.Down}
	if len(g.dirs) != len(want) {
		t.Fatalf("requests=%v want=%v", g.dirs, want)
	}
	for i := range want {
		if g.dirs[i] != want[i] {
			t.Fatalf("requests=%v want=%v", g.dirs, want)
		}
	}
}

func TestModel_ResetOnlyAfterGameOver(t *testing.T) {
	m, g, _ := newTestModel(ControlsJoystick)

	m, _ = update(t, m, keyRunes("r"))
	if g.resets != 0 {
		t.Fatalf("reset while alive")
	}

	over := initialSnapshot()
	over.Alive = false
	over.Cause = game.CauseWall
	m, _ = update(t, m, snapshotMsg(over))
	if !strings.Contains(m.View(), "Game over (hit the wall)") {
		t.Fatalf("game over banner missing:\n%s", m.View())
	}

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if g.resets != 1 {
		t.Fatalf("resets=%d want=1", g.resets)
	}
}

func TestModel_SnapshotUpdatesAndQuit(t *testing.T) {
	m, _, updates := newTestModel(ControlsJoystick)

	next := initialSnapshot()
	next.Score = 4
	updates <- next
	msg := m.Init()()
	m, cmd := update(t, m, msg)
	if m.Snapshot().Score != 4 {
		t.Fatalf("score=%d want=4", m.Snapshot().Score)
	}
	if cmd == nil {
		t.Fatalf("expected to keep waiting for updates")
	}
	if !strings.HasPrefix(m.View(), "Score: 4") {
		t.Fatalf("status line: %q", strings.SplitN(m.View(), "\n", 2)[0])
	}

	close(updates)
	if _, ok := cmd().(updatesClosedMsg); !ok {
		t.Fatalf("closed channel should end the program")
	}

	_, cmd = update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q returned %T", cmd())
	}
}

func TestModel_DPadClicks(t *testing.T) {
	m, g, _ := newTestModel(ControlsDPad)

	for _, btn := range m.layout.DPad.Buttons {
		x := btn.Rect.X + btn.Rect.W/2
		y := btn.Rect.Y + btn.Rect.H/2
		m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	}
	// A click on the board does nothing.
	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	want := []game.Direction{game.Up, game.Left, game.Down, game.Right}
	if len(g.dirs) != len(want) {
		t.Fatalf("requests=%v want=%v", g.dirs, want)
	}
	for i := range want {
		if g.dirs[i] != want[i] {
			t.Fatalf("requests=%v want=%v", g.dirs, want)
		}
	}
}

func TestModel_DPadLabelsMatchHitAreas(t *testing.T) {
	m, _, _ := newTestModel(ControlsDPad)
	lines := strings.Split(m.View(), "\n")

	for _, btn := range m.layout.DPad.Buttons {
		label := []rune(btn.Label)[0]
		found := false
		for y, line := range lines {
			for x, r := range []rune(line) {
				if r != label {
					continue
				}
				d, ok := m.layout.DPad.Hit(x, y)
				if !ok || d != btn.Dir {
					t.Fatalf("label %q drawn at (%d,%d) hits %s,%v", btn.Label, x, y, d, ok)
				}
				found = true
			}
		}
		if !found {
			t.Fatalf("label %q not drawn", btn.Label)
		}
	}
}

func TestModel_JoystickDrag(t *testing.T) {
	m, g, _ := newTestModel(ControlsJoystick)
	cx, cy := m.layout.JoystickCenter()

	press := tea.MouseMsg{X: cx, Y: cy, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = update(t, m, press)

	// Two columns is one row: exactly the threshold, no direction yet.
	m, _ = update(t, m, tea.MouseMsg{X: cx + 2, Y: cy, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if len(g.dirs) != 0 {
		t.Fatalf("direction emitted at threshold: %v", g.dirs)
	}
	m, _ = update(t, m, tea.MouseMsg{X: cx + 6, Y: cy + 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if len(g.dirs) != 1 || g.dirs[0] != game.Right {
		t.Fatalf("requests=%v want [right]", g.dirs)
	}
	if !strings.Contains(m.View(), "O") {
		t.Fatalf("knob not drawn")
	}

	m, _ = update(t, m, tea.MouseMsg{X: cx + 6, Y: cy + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.joy.Dragging() {
		t.Fatalf("release did not end the drag")
	}

	// Motion without a press inside the stick is ignored.
	_, _ = update(t, m, tea.MouseMsg{X: cx, Y: cy - 4, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if len(g.dirs) != 1 {
		t.Fatalf("motion without press emitted %v", g.dirs)
	}
}

func TestModel_TabTogglesControls(t *testing.T) {
	m, _, _ := newTestModel(ControlsJoystick)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.controls != ControlsDPad {
		t.Fatalf("controls=%s want dpad", m.controls)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.controls != ControlsJoystick {
		t.Fatalf("controls=%s want joystick", m.controls)
	}
}

func TestView_BoardGeometry(t *testing.T) {
	m, _, _ := newTestModel(ControlsJoystick)
	lines := strings.Split(m.View(), "\n")
	snap := m.Snapshot()

	for y := 0; y < snap.Rows; y++ {
		row := []rune(lines[m.layout.BoardTop+y])
		if len(row) != snap.Cols*cellWidth {
			t.Fatalf("board row %d is %d cells wide, want %d", y, len(row), snap.Cols*cellWidth)
		}
	}
	headRow := []rune(lines[m.layout.BoardTop+snap.Body[0].Y])
	if string(headRow[snap.Body[0].X*cellWidth:snap.Body[0].X*cellWidth+2]) != "██" {
		t.Fatalf("head not drawn at %v", snap.Body[0])
	}
	foodRow := []rune(lines[m.layout.BoardTop+snap.Food.Y])
	if string(foodRow[snap.Food.X*cellWidth:snap.Food.X*cellWidth+2]) != "()" {
		t.Fatalf("food not drawn at %v", snap.Food)
	}
}

func TestReplay_AdvancesAndStops(t *testing.T) {
	a := initialSnapshot()
	b := initialSnapshot()
	b.Turn, b.Score = 1, 1
	c := initialSnapshot()
	c.Turn, c.Alive, c.Cause = 2, false, game.CauseSelf

	m := NewReplay([]game.Snapshot{a, b, c}, time.Millisecond)
	if m.Init() == nil {
		t.Fatalf("replay should schedule a tick")
	}

	m, cmd := update(t, m, replayTickMsg(time.Now()))
	if m.Snapshot().Turn != 1 || cmd == nil {
		t.Fatalf("turn=%d cmd=%v", m.Snapshot().Turn, cmd)
	}
	m, cmd = update(t, m, replayTickMsg(time.Now()))
	if m.Snapshot().Turn != 2 || cmd != nil {
		t.Fatalf("replay should stop on the last frame")
	}
	if !strings.Contains(m.View(), "bit yourself") {
		t.Fatalf("final frame banner missing:\n%s", m.View())
	}

	// Keys never reach a game in replay mode.
	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
}

func TestParseControls(t *testing.T) {
	if c, ok := ParseControls("dpad"); !ok || c != ControlsDPad {
		t.Fatalf("dpad -> %s,%v", c, ok)
	}
	if _, ok := ParseControls("wheel"); ok {
		t.Fatalf("wheel accepted")
	}
}
