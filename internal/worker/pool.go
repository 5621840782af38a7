// Package worker runs the fixed-size pool of goroutines that pop session
// requests off the admission queue and execute them end to end, grounded
// in original_source/server/src/game.c's session_worker_thread and
// spawned exactly max_games times by main, mirroring the original's
// for-loop of detached pthreads.
package worker

import (
	"strconv"
	"strings"

	"github.com/pactermgo/pacterm/internal/admission"
	"github.com/pactermgo/pacterm/internal/logging"
)

// Pool runs `size` worker goroutines against queue, each calling run for
// every popped request.
type Pool struct {
	size  int
	queue *admission.Queue
	log   *logging.Logger
	run   func(req admission.Request, clientID int)
}

// New creates a Pool. run is called once per admitted request, already
// resolved to a client ID; it must release the admission slot itself via
// queue.Release when the session fully ends (including on any setup
// failure), matching session_worker_thread's sem_post placement.
func New(size int, queue *admission.Queue, log *logging.Logger, run func(req admission.Request, clientID int)) *Pool {
	return &Pool{size: size, queue: queue, log: log, run: run}
}

// Start launches the pool's goroutines. It does not block.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		go p.loop()
	}
}

func (p *Pool) loop() {
	for {
		req := p.queue.Pop()
		clientID := extractClientID(req.ReqPipe)
		p.run(req, clientID)
	}
}

// extractClientID parses the numeric id out of a pipe path of the form
// ".../<id>_request", mirroring extract_id_from_path's split on the first
// underscore in the basename.
func extractClientID(pipePath string) int {
	base := pipePath
	if i := strings.LastIndexByte(pipePath, '/'); i >= 0 {
		base = pipePath[i+1:]
	}
	underscore := strings.IndexByte(base, '_')
	if underscore < 0 {
		return -1
	}
	id, err := strconv.Atoi(base[:underscore])
	if err != nil {
		return -1
	}
	return id
}
