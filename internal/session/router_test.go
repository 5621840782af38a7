package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pactermgo/pacterm/internal/game"
	"github.com/pactermgo/pacterm/internal/level"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/protocol"
)

// newTestWorld builds a 3x3 world with pacman at (1,1), floor at (1,1) and
// a dot at (1,2), so a single 'D' command is enough to observe pacman's
// move land via Points().
func newTestWorld(t *testing.T) *game.World {
	t.Helper()
	grid := make([]level.Cell, 9)
	for i := range grid {
		grid[i] = level.Cell{Wall: true}
	}
	grid[1*3+1] = level.Cell{}
	grid[1*3+2] = level.Cell{HasDot: true}
	lvl := &level.Level{
		Width: 3, Height: 3, Tempo: 5,
		Grid:   grid,
		Pacman: level.Script{HasPos: true, Row: 1, Col: 1},
	}
	w, err := game.New(lvl, 0)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return w
}

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.Open(filepath.Join(t.TempDir(), "debug.log"))
	if err != nil {
		t.Fatalf("logging.Open: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestInputRouterAppliesPlayToCurrentWorld(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer w.Close()

	router := newInputRouter(r, 1, newTestLogger(t))
	done := make(chan struct{})
	go func() {
		router.run()
		close(done)
	}()
	defer func() { r.Close(); <-done }()

	lvl := newTestWorld(t)
	router.setWorld(lvl)

	if err := protocol.WritePlay(w, protocol.PlayFrame{Command: 'D'}); err != nil {
		t.Fatalf("WritePlay: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for lvl.Points() == 0 && time.Now().Before(deadline) {
		lvl.Lock()
		lvl.AdvancePacmanTick()
		lvl.Unlock()
		time.Sleep(time.Millisecond)
	}

	if got := lvl.Points(); got != 1 {
		t.Fatalf("PLAY 'D' routed to the current world should have picked up the dot: points = %d", got)
	}
}

// TestInputRouterSwitchingWorldsDoesNotExitTheNextLevel is the regression
// test for the multi-level continuation bug: switching the router to a
// fresh level's world (as Engine.RunSession does when a level ends via the
// portal, not disconnect/death) must never mark that new world as exited.
// Before the fix, each level owned its own input-reading actor blocked on
// the session's single shared request pipe; runLevel closed that pipe at
// the end of every level to unblock the actor, which meant the very next
// level's input actor observed the pipe already closed and called
// RequestExit on the first tick, silently ending every multi-level session.
func TestInputRouterSwitchingWorldsDoesNotExitTheNextLevel(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer w.Close()

	router := newInputRouter(r, 1, newTestLogger(t))
	done := make(chan struct{})
	go func() {
		router.run()
		close(done)
	}()
	defer func() { r.Close(); <-done }()

	level1 := newTestWorld(t)
	router.setWorld(level1)

	level2 := newTestWorld(t)
	router.setWorld(level2)

	if level2.ExitRequested() {
		t.Fatal("advancing to a new level must not request exit on its world")
	}
}

func TestInputRouterDisconnectExitsCurrentAndFutureWorlds(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer w.Close()

	router := newInputRouter(r, 1, newTestLogger(t))
	done := make(chan struct{})
	go func() {
		router.run()
		close(done)
	}()

	level1 := newTestWorld(t)
	router.setWorld(level1)

	if err := protocol.WriteDisconnect(w); err != nil {
		t.Fatalf("WriteDisconnect: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("router did not return after DISCONNECT")
	}

	if !level1.ExitRequested() {
		t.Fatal("DISCONNECT must request exit on the active world")
	}

	level2 := newTestWorld(t)
	router.setWorld(level2)
	if !level2.ExitRequested() {
		t.Fatal("a level started after disconnect must be told to exit immediately")
	}
}
