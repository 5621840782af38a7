package game

import "github.com/pactermgo/pacterm/internal/level"

// advance_pacman / advance_ghost are deliberately simple, self-contained
// gameplay rules. spec.md treats them as an opaque external collaborator
// ("semantics defined by external gameplay rules"); this file is that
// collaborator's one concrete implementation, kept behind the narrow
// surface the session engine's actors call through (AdvancePacmanTick,
// AdvanceGhostTick) so a different rule set can be swapped in without
// touching admission, worker, session, or protocol code.

// direction maps a command byte to a row/col delta. Unrecognized commands
// are a no-op hold.
func direction(cmd byte) (dRow, dCol int) {
	switch cmd {
	case 'w', 'W':
		return -1, 0
	case 's', 'S':
		return 1, 0
	case 'a', 'A':
		return 0, -1
	case 'd', 'D':
		return 0, 1
	default:
		return 0, 0
	}
}

// AdvancePacmanTick runs one tick of pacman movement: a scripted move if
// the level gave pacman a move list, otherwise whatever command is sitting
// in the input mailbox. The mailbox is read and cleared only on the
// manual-input path; a scripted pacman leaves it untouched. Caller must
// hold w.mu for writing.
func (w *World) AdvancePacmanTick() {
	if len(w.pacmanScript.Moves) > 0 {
		cmd, _ := w.nextScriptedCommand(&w.pacmanMove, w.pacmanScript.Moves)
		if cmd != NoInput {
			w.movePacmanLocked(cmd)
		}
		return
	}

	cmd := w.takePendingInputLocked()
	if cmd == NoInput {
		return
	}
	if cmd == 'Q' {
		w.exitRequested = true
		w.running = false
		return
	}
	w.movePacmanLocked(cmd)
}

func (w *World) movePacmanLocked(cmd byte) {
	pos, pac := w.pacmanMap.Get(w.pacman)
	if !pac.Alive {
		return
	}

	dRow, dCol := direction(cmd)
	nr, nc := pos.Row+dRow, pos.Col+dCol
	if dRow == 0 && dCol == 0 {
		return
	}
	cell := w.cellAt(nr, nc)
	if cell == nil || cell.Wall {
		return // blocked; pacman holds position
	}

	pos.Row, pos.Col = nr, nc

	if cell.HasDot {
		cell.HasDot = false
		pac.Points++
	}
	if cell.HasPortal {
		w.reachedPortal = true
		w.running = false
	}

	w.checkGhostCollisionLocked(*pos, pac)
}

// AdvanceGhostTick runs one tick of ghost idx: a scripted move (ghosts are
// always scripted — a level's MON entries without a move list simply never
// move) followed by the shared ghost/pacman collision check. Caller must
// hold w.mu for writing.
func (w *World) AdvanceGhostTick(idx int) {
	if idx < 0 || idx >= len(w.ghosts) {
		return
	}
	script := w.ghostScripts[idx]
	if len(script.Moves) == 0 {
		return
	}
	cmd, wrapped := w.nextScriptedCommand(&w.ghostMoves[idx], script.Moves)
	w.toggleGhostChargeOnCycle(idx, wrapped)
	if cmd == NoInput {
		return
	}

	e := w.ghosts[idx]
	pos, _ := w.ghostMap.Get(e)
	dRow, dCol := direction(cmd)
	nr, nc := pos.Row+dRow, pos.Col+dCol
	cell := w.cellAt(nr, nc)
	if cell != nil && !cell.Wall {
		pos.Row, pos.Col = nr, nc
	}

	_, pac := w.pacmanMap.Get(w.pacman)
	w.checkGhostCollisionLocked(*pos, pac)
}

// nextScriptedCommand returns the command a script's cursor currently
// points at, decrementing its turns-left counter and advancing the cursor
// (modulo the move list's length) once that counter reaches zero. This is
// the turns/turns_left countdown parser.c's command_t fields imply but
// leaves to the mover to interpret.
func (w *World) nextScriptedCommand(cur *scriptCursor, moves []level.Move) (cmd byte, wrapped bool) {
	if len(moves) == 0 {
		return NoInput, false
	}
	if cur.turnsLeft <= 0 {
		cur.turnsLeft = moves[cur.index%len(moves)].Turns
		if cur.turnsLeft <= 0 {
			cur.turnsLeft = 1
		}
	}
	cmd = moves[cur.index%len(moves)].Command
	cur.turnsLeft--
	if cur.turnsLeft <= 0 {
		cur.index = (cur.index + 1) % len(moves)
		wrapped = cur.index == 0
	}
	return cmd, wrapped
}

// checkGhostCollisionLocked kills pacman if it now shares a cell with a
// charged ghost. A ghost toggles charged each time its scripted move list
// completes a full cycle — a simple, deterministic policy this external
// rule set owns; see DESIGN.md.
func (w *World) checkGhostCollisionLocked(pacPos Position, pac *PacmanState) {
	if !pac.Alive {
		return
	}
	// Next closes the query itself once iteration completes; Close is only
	// needed when breaking out early.
	query := w.ghostFilter.Query()
	for query.Next() {
		gpos, ghost := query.Get()
		if gpos.Row == pacPos.Row && gpos.Col == pacPos.Col && ghost.Charged {
			pac.Alive = false
			query.Close()
			return
		}
	}
}

// toggleGhostChargeOnCycle flips a ghost's Charged flag whenever its
// cursor wraps back to the start of its move list.
func (w *World) toggleGhostChargeOnCycle(idx int, wrapped bool) {
	if !wrapped {
		return
	}
	_, ghost := w.ghostMap.Get(w.ghosts[idx])
	ghost.Charged = !ghost.Charged
}
