// Package clientrt implements the pacman client session: the CONNECT
// handshake, a receiver goroutine decoding BOARD frames, and either an
// interactive key-driven play loop or a scripted commands-file driver,
// grounded in original_source/client-base/src/client/api.c and
// client_main.c.
package clientrt

import (
	"fmt"
	"os"

	"github.com/pactermgo/pacterm/internal/fifo"
	"github.com/pactermgo/pacterm/internal/protocol"
)

// Session holds one client's two pipes for the lifetime of the connection.
type Session struct {
	clientID      int
	reqPipePath   string
	notifPipePath string
	reqWriter     *os.File
	notifReader   *os.File
}

// clientIDForLog exposes clientID for diagnostic logging only.
func (s *Session) clientIDForLog() int { return s.clientID }

// Connect creates the client's two FIFOs, registers with the server over
// registerPipe, and waits for the CONNECT ack, mirroring pacman_connect.
func Connect(clientID int, registerPipe string) (*Session, error) {
	reqPath := fmt.Sprintf("/tmp/%d_request", clientID)
	notifPath := fmt.Sprintf("/tmp/%d_notification", clientID)

	if err := fifo.Create(reqPath, 0666); err != nil {
		return nil, err
	}
	if err := fifo.Create(notifPath, 0666); err != nil {
		fifo.Remove(reqPath)
		return nil, err
	}

	serverConn, err := fifo.OpenWriter(registerPipe)
	if err != nil {
		fifo.Remove(reqPath)
		fifo.Remove(notifPath)
		return nil, fmt.Errorf("clientrt: open register pipe: %w", err)
	}
	writeErr := protocol.WriteConnect(serverConn, protocol.ConnectFrame{ReqPipe: reqPath, NotifPipe: notifPath})
	serverConn.Close()
	if writeErr != nil {
		fifo.Remove(reqPath)
		fifo.Remove(notifPath)
		return nil, fmt.Errorf("clientrt: register: %w", writeErr)
	}

	notifReader, err := fifo.OpenReader(notifPath)
	if err != nil {
		fifo.Remove(reqPath)
		fifo.Remove(notifPath)
		return nil, fmt.Errorf("clientrt: open notification pipe: %w", err)
	}

	ack, err := protocol.ReadConnectAck(notifReader)
	if err != nil {
		notifReader.Close()
		fifo.Remove(reqPath)
		fifo.Remove(notifPath)
		return nil, fmt.Errorf("clientrt: read connect ack: %w", err)
	}
	if ack.Result != 0 {
		notifReader.Close()
		fifo.Remove(reqPath)
		fifo.Remove(notifPath)
		return nil, fmt.Errorf("clientrt: server refused connection (result=%d)", ack.Result)
	}

	reqWriter, err := fifo.OpenWriter(reqPath)
	if err != nil {
		notifReader.Close()
		fifo.Remove(reqPath)
		fifo.Remove(notifPath)
		return nil, fmt.Errorf("clientrt: open request pipe: %w", err)
	}

	return &Session{
		clientID:      clientID,
		reqPipePath:   reqPath,
		notifPipePath: notifPath,
		reqWriter:     reqWriter,
		notifReader:   notifReader,
	}, nil
}

// Play sends one PLAY command.
func (s *Session) Play(command byte) error {
	return protocol.WritePlay(s.reqWriter, protocol.PlayFrame{Command: command})
}

// Disconnect sends DISCONNECT and closes both pipes, mirroring
// pacman_disconnect.
func (s *Session) Disconnect() {
	_ = protocol.WriteDisconnect(s.reqWriter)
	s.reqWriter.Close()
	s.notifReader.Close()
	fifo.Remove(s.reqPipePath)
	fifo.Remove(s.notifPipePath)
}

// ReceiveBoard blocks for the next BOARD frame. io.EOF or any protocol error
// ends the session from the caller's point of view.
func (s *Session) ReceiveBoard() (protocol.BoardFrame, error) {
	op, err := protocol.ReadOpcode(s.notifReader)
	if err != nil {
		return protocol.BoardFrame{}, err
	}
	if op != protocol.OpBoard {
		return protocol.BoardFrame{}, fmt.Errorf("%w: expected BOARD, got %s", protocol.ErrProtocol, op)
	}
	return protocol.ReadBoard(s.notifReader)
}
