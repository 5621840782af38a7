package session

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/pactermgo/pacterm/internal/game"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/protocol"
)

// inputRouter owns the single read loop over a session's request pipe for
// the session's entire lifetime, which may span several levels: reqReader
// is opened once by Engine.RunSession and must not be closed until the
// session itself ends (closing and reopening it per level would tear down
// the client's one request FIFO mid-session). Each decoded PLAY/DISCONNECT
// is applied to whichever level's world is currently active, set via
// setWorld as Engine.RunSession advances from one level to the next,
// grounded in client_input_handler's read loop generalized across
// run_session's per-level loop.
type inputRouter struct {
	reqReader *os.File
	clientID  int
	log       *logging.Logger

	mu           sync.Mutex
	cur          *game.World
	disconnected bool
}

func newInputRouter(reqReader *os.File, clientID int, log *logging.Logger) *inputRouter {
	return &inputRouter{reqReader: reqReader, clientID: clientID, log: log}
}

// setWorld switches which level's world future input applies to. If the
// client already disconnected (or sent 'Q') before this level started, the
// new world is told to exit immediately rather than silently swallowing
// that fact, mirroring the expectation that a client_id's exit intent
// outlives any one level's world.
func (ir *inputRouter) setWorld(w *game.World) {
	ir.mu.Lock()
	ir.cur = w
	disconnected := ir.disconnected
	ir.mu.Unlock()

	if disconnected {
		w.RequestExit()
	}
}

// run is the session-wide read loop, started exactly once by
// Engine.RunSession. It returns once reqReader is closed (by
// Engine.RunSession at session end) or the client disconnects.
func (ir *inputRouter) run() {
	for {
		op, err := protocol.ReadOpcode(ir.reqReader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				ir.log.Debugf("session %d: input read: %v", ir.clientID, err)
			}
			ir.requestExit()
			return
		}

		switch op {
		case protocol.OpDisconnect:
			ir.requestExit()
			return
		case protocol.OpPlay:
			play, err := readPlay(ir.reqReader)
			if err != nil {
				ir.requestExit()
				return
			}
			ir.mu.Lock()
			w := ir.cur
			ir.mu.Unlock()
			if w != nil {
				w.SetPendingInput(play.Command)
			}
		default:
			// Ignore anything else, matching the original's silent
			// continue on an unrecognized opcode.
		}
	}
}

// requestExit marks the router disconnected (so any later setWorld call
// immediately exits its level too) and requests exit on whichever world is
// currently active.
func (ir *inputRouter) requestExit() {
	ir.mu.Lock()
	ir.disconnected = true
	w := ir.cur
	ir.mu.Unlock()

	if w != nil {
		w.RequestExit()
	}
}

func readPlay(r io.Reader) (protocol.PlayFrame, error) {
	buf := make([]byte, 1)
	if err := protocol.ReadFullBuf(r, buf); err != nil {
		return protocol.PlayFrame{}, err
	}
	return protocol.PlayFrame{Command: buf[0]}, nil
}
