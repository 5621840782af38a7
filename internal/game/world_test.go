package game

import (
	"testing"

	"github.com/pactermgo/pacterm/internal/level"
)

func testLevel() *level.Level {
	// 3x3 box: walls on the border, a dot at (1,1), a portal at (1,2).
	lvl := &level.Level{
		Width: 3, Height: 3, Tempo: 10,
		Grid: make([]level.Cell, 9),
	}
	for i := range lvl.Grid {
		lvl.Grid[i] = level.Cell{Wall: true}
	}
	lvl.Grid[1*3+1] = level.Cell{HasDot: true}
	lvl.Grid[1*3+2] = level.Cell{HasPortal: true}
	lvl.Pacman = level.Script{HasPos: true, Row: 1, Col: 1}
	return lvl
}

func TestPacmanReachesPortal(t *testing.T) {
	w, err := New(testLevel(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.SetPendingInput('d') // move onto the portal cell at (1,2)
	w.Lock()
	w.AdvancePacmanTick()
	w.Unlock()

	if !w.ReachedPortal() {
		t.Fatalf("expected portal reached after moving onto it")
	}
}

func TestPacmanBlockedByWall(t *testing.T) {
	w, err := New(testLevel(), 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.SetPendingInput('w') // up into the wall row
	w.Lock()
	w.AdvancePacmanTick()
	w.Unlock()

	if got := w.Points(); got != 5 {
		t.Fatalf("points changed on a blocked move: got %d, want 5", got)
	}
}

func TestScriptedCursorAdvancesModuloLength(t *testing.T) {
	moves := []level.Move{
		{Command: 'd', Turns: 2},
		{Command: 'w', Turns: 1},
	}
	w := &World{}
	var cur scriptCursor

	seen := []byte{}
	for i := 0; i < 4; i++ {
		cmd, _ := w.nextScriptedCommand(&cur, moves)
		seen = append(seen, cmd)
	}
	want := "ddwd"
	for i, c := range seen {
		if c != want[i] {
			t.Fatalf("step %d: got %q want %q", i, c, want[i])
		}
	}
}

func TestRenderPrecedencePacmanOverGhostOverDotOverPortal(t *testing.T) {
	lvl := testLevel()
	lvl.Ghosts = []level.Script{{HasPos: true, Row: 1, Col: 1}}
	w, err := New(lvl, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.RLock()
	data := w.RenderLocked()
	w.RUnlock()

	idx := 1*w.Width + 1
	if data[idx] != 'C' {
		t.Fatalf("expected pacman 'C' to take precedence over ghost/dot at (1,1), got %q", data[idx])
	}
}
