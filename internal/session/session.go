// Package session implements the per-client Session Engine: the actors
// (pacman, ghosts, input reader) and the broadcaster loop that run one
// client through however many levels a directory holds, grounded in
// original_source/server/src/game.c's run_session, and the per-session
// goroutine coordination style of the teacher's server.Server/Session
// tick loop generalized from a fixed tick rate to an event-plus-sleep
// actor model.
package session

import (
	"os"
	"sync"
	"time"

	"github.com/pactermgo/pacterm/internal/game"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/protocol"
)

const fallbackTempoMS = 100
const broadcastPeriod = 50 * time.Millisecond

// Session coordinates the actors for a single level. output_lock
// (outputMu) is always acquired before world_lock, never the reverse —
// see SPEC_FULL.md §5.
type Session struct {
	world       *game.World
	notifWriter *os.File
	outputMu    sync.Mutex
	wg          sync.WaitGroup
	log         *logging.Logger
	clientID    int
}

func newSession(world *game.World, notifWriter *os.File, clientID int, log *logging.Logger) *Session {
	return &Session{world: world, notifWriter: notifWriter, clientID: clientID, log: log}
}

// sendBoard renders and writes one BOARD frame, holding output_lock for
// the duration and world_lock (read) nested inside it across the actual
// write, exactly as send_board_to_client does.
func (s *Session) sendBoard() error {
	s.outputMu.Lock()
	defer s.outputMu.Unlock()

	s.world.RLock()
	defer s.world.RUnlock()

	snap := s.world.SnapshotLocked()
	return protocol.WriteBoard(s.notifWriter, protocol.BoardFrame{
		Width:    snap.Width,
		Height:   snap.Height,
		Tempo:    snap.Tempo,
		Victory:  snap.Victory,
		GameOver: snap.GameOver,
		Points:   snap.Points,
		Cells:    snap.Cells,
	})
}

// tempoSleep sleeps for the level's tempo, or fallbackTempoMS if tempo is
// non-positive, matching pacman_thread/ghost_thread's
// `(board->tempo > 0) ? board->tempo : 100`.
func tempoSleep(w *game.World) {
	ms := w.Tempo()
	if ms <= 0 {
		ms = fallbackTempoMS
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// runLevel starts the pacman and ghost actors, runs the broadcaster loop on
// the calling goroutine until the level ends, then waits for those actors
// to finish and sends one final BOARD frame carrying the terminal state.
// The input-reading actor is not started here: it is a single goroutine
// (an inputRouter) spanning the whole, possibly multi-level session, owned
// by Engine.RunSession, since the request pipe it reads from is opened
// once for the session and must not be closed between levels.
func (s *Session) runLevel() {
	s.wg.Add(1 + s.world.GhostCount())
	go s.pacmanActor()
	for i := 0; i < s.world.GhostCount(); i++ {
		go s.ghostActor(i)
	}

	for s.world.Running() {
		if err := s.sendBoard(); err != nil {
			s.log.Debugf("session %d: send board: %v", s.clientID, err)
			// A write failure propagates as if the client disconnected
			// (spec.md §4.7), so this ends the whole session, not just
			// the current level.
			s.world.RequestExit()
			break
		}
		time.Sleep(broadcastPeriod)
	}

	// Belt and suspenders: guarantee every actor's loop condition goes
	// false even if the broadcaster exited for a reason other than the
	// world itself stopping (e.g. a write error above).
	s.world.Stop()
	s.wg.Wait()

	if err := s.sendBoard(); err != nil {
		s.log.Debugf("session %d: send final board: %v", s.clientID, err)
	}
}
