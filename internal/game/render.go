package game

// BoardSnapshot is the set of scalar fields plus the rendered cell buffer
// that make up one BOARD frame, gathered under a single lock acquisition
// to guarantee a torn-free view (spec.md's rationale for output_lock
// nesting world_lock rather than re-acquiring it field by field).
type BoardSnapshot struct {
	Width, Height, Tempo int32
	Victory, GameOver    int32
	Points               int32
	Cells                []byte
}

// SnapshotLocked gathers a full BoardSnapshot. Caller must hold at least
// w.mu's read lock for the duration.
func (w *World) SnapshotLocked() BoardSnapshot {
	_, pac := w.pacmanMap.Get(w.pacman)

	victory := 0
	if !w.running && pac.Alive && !w.exitRequested {
		victory = 1
	}
	gameOver := 0
	if !pac.Alive {
		gameOver = 1
	}

	return BoardSnapshot{
		Width:    int32(w.Width),
		Height:   int32(w.Height),
		Tempo:    int32(w.tempo),
		Victory:  int32(victory),
		GameOver: int32(gameOver),
		Points:   int32(pac.Points),
		Cells:    w.RenderLocked(),
	}
}

// RenderLocked produces the flat width*height character buffer for a BOARD
// frame, applying the precedence pacman > ghost > dot > portal > terrain,
// exactly as send_board_to_client composes it. Caller must hold w.mu (a
// read lock suffices).
func (w *World) RenderLocked() []byte {
	data := make([]byte, w.Width*w.Height)
	for i, c := range w.grid {
		switch {
		case c.Wall:
			data[i] = '#'
		case c.HasDot:
			data[i] = '.'
		case c.HasPortal:
			data[i] = '@'
		default:
			data[i] = ' '
		}
	}

	query := w.ghostFilter.Query()
	for query.Next() {
		pos, ghost := query.Get()
		idx := pos.Row*w.Width + pos.Col
		if idx < 0 || idx >= len(data) {
			continue
		}
		if ghost.Charged {
			data[idx] = 'G'
		} else {
			data[idx] = 'M'
		}
	}
	// The completed iteration has already closed the query.

	pos, pac := w.pacmanMap.Get(w.pacman)
	if pac.Alive {
		idx := pos.Row*w.Width + pos.Col
		if idx >= 0 && idx < len(data) {
			data[idx] = 'C'
		}
	}

	return data
}
