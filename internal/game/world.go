// Package game holds the mutable state of one pacman session: the grid,
// the pacman, and its ghosts, stored as entities in an ark ECS world and
// guarded by a single reader/writer lock exactly as spec.md's world_lock
// requires.
package game

import (
	"fmt"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"github.com/pactermgo/pacterm/internal/level"
)

// NoInput is the pendingInput sentinel meaning "nothing uncommitted".
const NoInput byte = 0

// World is one session's authoritative game state. Every exported method
// that reads or writes game state takes world_lock itself, except those
// documented as requiring the caller to hold it (the *Locked/*Unlocked
// methods and the Advance*Tick rules); callers that
// need to combine several reads (the broadcaster composing a frame under
// output_lock) call Lock/RLock directly to hold the lock across the whole
// operation, per the lock-nesting order in SPEC_FULL.md §5.
type World struct {
	mu sync.RWMutex

	Width, Height int
	grid          []level.Cell

	ecsWorld  *ecs.World
	pacmanMap *ecs.Map2[Position, PacmanState]
	pacman    ecs.Entity

	ghostMap    *ecs.Map2[Position, GhostState]
	ghostFilter *ecs.Filter2[Position, GhostState]
	ghosts      []ecs.Entity

	pacmanScript level.Script
	pacmanMove   scriptCursor
	ghostScripts []level.Script
	ghostMoves   []scriptCursor

	tempo         int
	pendingInput  byte
	running       bool
	exitRequested bool
	reachedPortal bool
}

// scriptCursor tracks progress through a level.Script's move list, holding
// each move for its Turns count before advancing, mirroring the
// turns/turns_left pair parser.c attaches to every scripted command.
type scriptCursor struct {
	index     int
	turnsLeft int
}

// New builds a World from a parsed level, seeding pacman's points from the
// previous level in the same session (points carry across levels, per the
// session engine's per-level loop).
func New(lvl *level.Level, carriedPoints int) (*World, error) {
	if lvl.Width <= 0 || lvl.Height <= 0 {
		return nil, fmt.Errorf("game: level %q has no grid", lvl.Name)
	}

	w := &World{
		Width:        lvl.Width,
		Height:       lvl.Height,
		grid:         append([]level.Cell(nil), lvl.Grid...),
		ecsWorld:     ecs.NewWorld(),
		pacmanScript: lvl.Pacman,
		ghostScripts: lvl.Ghosts,
		tempo:        lvl.Tempo,
		running:      true,
	}

	w.pacmanMap = ecs.NewMap2[Position, PacmanState](w.ecsWorld)
	w.ghostMap = ecs.NewMap2[Position, GhostState](w.ecsWorld)
	w.ghostFilter = ecs.NewFilter2[Position, GhostState](w.ecsWorld)

	pos := Position{Row: lvl.Pacman.Row, Col: lvl.Pacman.Col}
	state := PacmanState{Alive: true, Points: carriedPoints}
	w.pacman = w.pacmanMap.NewEntity(&pos, &state)

	w.ghostMoves = make([]scriptCursor, len(lvl.Ghosts))
	for i, gs := range lvl.Ghosts {
		gpos := Position{Row: gs.Row, Col: gs.Col}
		gstate := GhostState{ID: i, Charged: false}
		e := w.ghostMap.NewEntity(&gpos, &gstate)
		w.ghosts = append(w.ghosts, e)
	}

	return w, nil
}

// Lock/Unlock/RLock/RUnlock expose world_lock directly so the session
// engine's broadcaster can nest it inside output_lock exactly as
// SPEC_FULL.md §5 mandates: output_lock is always acquired first.
func (w *World) Lock()    { w.mu.Lock() }
func (w *World) Unlock()  { w.mu.Unlock() }
func (w *World) RLock()   { w.mu.RLock() }
func (w *World) RUnlock() { w.mu.RUnlock() }

// Running reports whether the session loop should keep iterating. Callers
// holding the lock already should use RunningUnlocked.
func (w *World) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.runningLocked()
}

func (w *World) runningLocked() bool {
	if !w.running || w.exitRequested {
		return false
	}
	_, pac := w.pacmanMap.Get(w.pacman)
	return pac.Alive
}

// RunningUnlocked is runningLocked exposed for actors that already hold
// w.mu (via Lock) and need to double-check the condition didn't change
// while they were waiting for the lock, mirroring pacman_thread's and
// ghost_thread's re-check immediately after acquiring the write lock.
func (w *World) RunningUnlocked() bool {
	return w.runningLocked()
}

// Stop marks the world as no longer running (e.g. portal reached).
func (w *World) Stop() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// RequestExit marks an explicit client-initiated exit (DISCONNECT or the
// 'Q' command), distinct from a natural end of level.
func (w *World) RequestExit() {
	w.mu.Lock()
	w.exitRequested = true
	w.running = false
	w.mu.Unlock()
}

// ExitRequested reports whether the session ended via explicit exit rather
// than death or victory.
func (w *World) ExitRequested() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.exitRequested
}

// ReachedPortal reports whether pacman reached the level's portal this
// level, ending it in victory.
func (w *World) ReachedPortal() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reachedPortal
}

// PacmanAlive reports whether pacman is still alive.
func (w *World) PacmanAlive() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, pac := w.pacmanMap.Get(w.pacman)
	return pac.Alive
}

// Points returns pacman's current accumulated score.
func (w *World) Points() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, pac := w.pacmanMap.Get(w.pacman)
	return pac.Points
}

// Tempo returns the level's configured per-tick delay.
func (w *World) Tempo() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tempo
}

// SetPendingInput deposits a command into the single-slot input mailbox,
// overwriting any uncommitted previous command (last-write-wins
// coalescing), exactly as pending_input is specified.
func (w *World) SetPendingInput(cmd byte) {
	w.mu.Lock()
	w.pendingInput = cmd
	w.mu.Unlock()
}

// takePendingInputLocked atomically reads and clears the mailbox. Caller must
// hold w.mu for writing.
func (w *World) takePendingInputLocked() byte {
	cmd := w.pendingInput
	w.pendingInput = NoInput
	return cmd
}

// HasScriptedPacman reports whether pacman follows a predetermined move
// list rather than manual input.
func (w *World) HasScriptedPacman() bool {
	return len(w.pacmanScript.Moves) > 0
}

// GhostCount returns how many ghosts this level has.
func (w *World) GhostCount() int {
	return len(w.ghosts)
}

// cellAt returns a pointer to the grid cell at (row, col), or nil out of
// bounds. Caller must hold w.mu.
func (w *World) cellAt(row, col int) *level.Cell {
	if row < 0 || row >= w.Height || col < 0 || col >= w.Width {
		return nil
	}
	return &w.grid[row*w.Width+col]
}
