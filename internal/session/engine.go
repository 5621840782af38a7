package session

import (
	"path/filepath"

	"github.com/pactermgo/pacterm/internal/admission"
	"github.com/pactermgo/pacterm/internal/fifo"
	"github.com/pactermgo/pacterm/internal/game"
	"github.com/pactermgo/pacterm/internal/level"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/protocol"
	"github.com/pactermgo/pacterm/internal/registry"
)

// Engine is the shared, immutable configuration every worker goroutine
// uses to run a session: where levels live and where active sessions
// register themselves for the duration of each level.
type Engine struct {
	levelsDir string
	reg       *registry.Registry
	log       *logging.Logger
}

// NewEngine builds an Engine.
func NewEngine(levelsDir string, reg *registry.Registry, log *logging.Logger) *Engine {
	return &Engine{levelsDir: levelsDir, reg: reg, log: log}
}

// RunSession is the worker pool's entry point for one admitted request: it
// opens the client's two pipes, sends the CONNECT ack, then runs every
// level in levelsDir in order until the client disconnects, quits, dies,
// or runs out of levels. Grounded in session_worker_thread + run_session.
func (e *Engine) RunSession(req admission.Request, clientID int) {
	notifWriter, err := fifo.OpenWriter(req.NotifPipe)
	if err != nil {
		e.log.Debugf("session %d: open notif pipe: %v", clientID, err)
		return
	}
	defer notifWriter.Close()

	if err := protocol.WriteConnectAck(notifWriter, protocol.ConnectAck{Result: 0}); err != nil {
		e.log.Debugf("session %d: write CONNECT ack: %v", clientID, err)
		return
	}

	reqReader, err := fifo.OpenReader(req.ReqPipe)
	if err != nil {
		e.log.Debugf("session %d: open request pipe: %v", clientID, err)
		return
	}

	// One inputRouter goroutine reads req.ReqPipe for the entire,
	// potentially multi-level session; router.setWorld retargets its
	// output at each level's world below. Closing reqReader unblocks its
	// final read, so that close must happen before this function returns,
	// and the goroutine must be drained before reqReader's underlying fd
	// observer is dropped — both handled by this defer, which (LIFO) runs
	// before the notifWriter.Close() deferred above.
	router := newInputRouter(reqReader, clientID, e.log)
	routerDone := make(chan struct{})
	go func() {
		router.run()
		close(routerDone)
	}()
	defer func() {
		reqReader.Close()
		<-routerDone
	}()

	names, err := level.LoadLevelsFromDir(e.levelsDir)
	if err != nil {
		e.log.Debugf("session %d: load levels dir: %v", clientID, err)
		return
	}

	points := 0
	for _, name := range names {
		path := filepath.Join(e.levelsDir, name)
		lvl, err := level.Load(path, e.levelsDir)
		if err != nil {
			e.log.Debugf("session %d: load level %q: %v", clientID, name, err)
			break
		}

		w, err := game.New(lvl, points)
		if err != nil {
			e.log.Debugf("session %d: build world for %q: %v", clientID, name, err)
			break
		}

		slot, err := e.reg.Acquire(clientID, w)
		if err != nil {
			e.log.Debugf("session %d: %v", clientID, err)
			break
		}

		router.setWorld(w)

		sess := newSession(w, notifWriter, clientID, e.log)
		sess.runLevel()

		slot.Release()

		points = w.Points()
		mustExit := w.ExitRequested()
		pacmanDead := !w.PacmanAlive()

		if mustExit || pacmanDead {
			break
		}
		// Level cleared via the portal: continue to the next level in
		// the directory, carrying points forward.
	}
}
