package clientrt

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/pactermgo/pacterm/internal/input"
	"github.com/pactermgo/pacterm/internal/logging"
	"github.com/pactermgo/pacterm/internal/render"
)

// Driver runs one client's play loop end to end: connect, start the
// receiver goroutine, drive input (scripted or interactive), and
// disconnect, grounded in client_main.c's main().
type Driver struct {
	sess   *Session
	screen *render.Screen
	log    *logging.Logger

	mu       sync.Mutex
	tempoMS  int
	stopped  bool
	gameOver bool
}

// Config selects a scripted or interactive play loop.
type Config struct {
	ClientID     int
	RegisterPipe string
	CommandsFile string // empty means interactive
}

const defaultTempoMS = 200

// Run connects, plays to completion, and cleans up, mirroring
// client_main.c's main() body end to end.
func Run(cfg Config, log *logging.Logger) error {
	sess, err := Connect(cfg.ClientID, cfg.RegisterPipe)
	if err != nil {
		return err
	}

	screen, err := render.Open()
	if err != nil {
		sess.Disconnect()
		return err
	}

	d := &Driver{sess: sess, screen: screen, log: log, tempoMS: defaultTempoMS}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.receiveLoop()
	}()

	if cfg.CommandsFile != "" {
		d.scriptedLoop(cfg.CommandsFile)
	} else {
		d.interactiveLoop()
	}

	sess.Disconnect()
	wg.Wait()
	screen.Close()
	return nil
}

func (d *Driver) requestStop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Driver) shouldStop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

func (d *Driver) setTempo(ms int) {
	d.mu.Lock()
	d.tempoMS = ms
	d.mu.Unlock()
}

func (d *Driver) tempo() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tempoMS
}

// receiveLoop decodes BOARD frames and draws them until the server hangs
// up or sends a terminal frame, mirroring receiver_thread.
func (d *Driver) receiveLoop() {
	for {
		frame, err := d.sess.ReceiveBoard()
		if err != nil {
			if d.log != nil && !errors.Is(err, io.EOF) {
				d.log.Debugf("client %d: receive board: %v", d.sess.clientIDForLog(), err)
			}
			d.requestStop()
			return
		}

		d.setTempo(int(frame.Tempo))
		d.screen.Draw(render.Board{
			Width:    int(frame.Width),
			Height:   int(frame.Height),
			Points:   int(frame.Points),
			Victory:  frame.Victory != 0,
			GameOver: frame.GameOver != 0,
			Cells:    frame.Cells,
		})

		if frame.GameOver != 0 {
			d.requestStop()
			return
		}
	}
}

// scriptedLoop replays commandsFile, pacing sends by the most recently
// observed tempo in ≤50ms steps so a server-initiated stop is still
// noticed promptly, mirroring client_main.c's cmd_fp branch.
func (d *Driver) scriptedLoop(commandsFile string) {
	script, err := openScript(commandsFile)
	if err != nil {
		if d.log != nil {
			d.log.Debugf("client %d: open commands file: %v", d.sess.clientIDForLog(), err)
		}
		return
	}
	defer script.close()

	for {
		if d.shouldStop() {
			time.Sleep(2 * time.Second)
			return
		}

		cmd, ok := script.next()
		if !ok {
			return
		}

		if err := d.sess.Play(cmd); err != nil {
			d.requestStop()
			return
		}
		if cmd == 'Q' {
			return
		}

		waitMS := d.tempo()
		for waitMS > 0 && !d.shouldStop() {
			step := waitMS
			if step > 50 {
				step = 50
			}
			time.Sleep(time.Duration(step) * time.Millisecond)
			waitMS -= step
		}
	}
}

// interactiveLoop polls the terminal for a key every ≤50ms and forwards it
// as a PLAY command, mirroring client_main.c's get_input()/set_timeout(50)
// branch.
func (d *Driver) interactiveLoop() {
	bindings := input.NewBindings()
	keys := d.screen.Keys()

	for {
		if d.shouldStop() {
			time.Sleep(2 * time.Second)
			return
		}

		select {
		case r := <-keys:
			cmd, ok := bindings.Command(r)
			if !ok {
				continue
			}
			if err := d.sess.Play(cmd); err != nil {
				d.requestStop()
				return
			}
			if cmd == 'Q' {
				return
			}
		case <-time.After(50 * time.Millisecond):
		}
	}
}
