// Package listener implements the registration FIFO reader: the single
// goroutine that accepts CONNECT requests and feeds the admission queue,
// plus the operator SIGUSR1 top5-report trigger. Grounded in
// original_source/server/src/game.c's host_thread.
package listener

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pactermgo/pacterm/internal/admission"
	"github.com/pactermgo/pacterm/internal/fifo"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/protocol"
	"github.com/pactermgo/pacterm/internal/registry"
)

// Listener reads CONNECT frames off the registration FIFO and pushes them
// onto the admission queue, and writes a top5 report whenever it receives
// SIGUSR1.
type Listener struct {
	registerPath string
	queue        *admission.Queue
	reg          *registry.Registry
	reportPath   string
	log          *logging.Logger
}

// New builds a Listener for the given registration FIFO path.
func New(registerPath string, queue *admission.Queue, reg *registry.Registry, reportPath string, log *logging.Logger) *Listener {
	return &Listener{registerPath: registerPath, queue: queue, reg: reg, reportPath: reportPath, log: log}
}

// Run creates the registration FIFO and serves it until the process is
// killed; no signal shuts it down. It returns only on a setup error and
// otherwise never returns, matching host_thread's infinite loop joined by
// main().
func (l *Listener) Run() error {
	if err := fifo.Create(l.registerPath, 0666); err != nil {
		return err
	}
	defer fifo.Remove(l.registerPath)

	reader, err := fifo.OpenReader(l.registerPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	// The O_RDONLY open above blocks until the first client opens the FIFO
	// for writing. From then on, a spare non-blocking write end is kept open
	// so the FIFO never reports EOF to our blocking reader merely because
	// every client has closed its write end. If that open fails, the server
	// runs without it.
	dummyWriter, err := fifo.OpenNonblockingWriter(l.registerPath)
	if err == nil {
		defer dummyWriter.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	// A blocking os.File.Read is not interrupted by an incoming signal the
	// way original_source's read() is by EINTR — Go delivers signals
	// asynchronously over sigCh instead. Running the read loop on its own
	// goroutine and fanning decoded requests through reqCh lets the select
	// below react to SIGUSR1 immediately even while a read is parked
	// waiting for the next client, which is the property host_thread's
	// EINTR dance was achieving.
	reqCh := make(chan admission.Request)
	go l.readLoop(reader, reqCh)

	for {
		select {
		case <-sigCh:
			if err := l.reg.GenerateTop5File(l.reportPath); err != nil {
				l.log.Debugf("listener: top5 report failed: %v", err)
			} else {
				l.log.Debugf("listener: wrote %s", l.reportPath)
			}
		case req := <-reqCh:
			l.queue.Push(req)
		}
	}
}

// readLoop decodes CONNECT frames off reader and sends each onto reqCh. It
// runs until reader is closed out from under it.
func (l *Listener) readLoop(reader io.Reader, reqCh chan<- admission.Request) {
	for {
		op, err := protocol.ReadOpcode(reader)
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return
			}
			if errors.Is(err, io.EOF) {
				continue
			}
			l.log.Debugf("listener: read opcode: %v", err)
			continue
		}
		if op != protocol.OpConnect {
			continue
		}

		frame, err := protocol.ReadConnect(reader)
		if err != nil {
			l.log.Debugf("listener: read CONNECT body: %v", err)
			continue
		}

		reqCh <- admission.Request{ReqPipe: frame.ReqPipe, NotifPipe: frame.NotifPipe}
	}
}
