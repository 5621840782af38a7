// Package protocol implements the fixed-width binary framing that session
// clients and the server exchange over a pair of named pipes.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode identifies the kind of frame on the wire.
type Opcode byte

const (
	OpConnect    Opcode = 1
	OpDisconnect Opcode = 2
	OpPlay       Opcode = 3
	OpBoard      Opcode = 4
)

func (o Opcode) String() string {
	switch o {
	case OpConnect:
		return "CONNECT"
	case OpDisconnect:
		return "DISCONNECT"
	case OpPlay:
		return "PLAY"
	case OpBoard:
		return "BOARD"
	default:
		return fmt.Sprintf("OP(%d)", byte(o))
	}
}

// PipePathLen is the fixed width of a pipe path field in a CONNECT frame.
const PipePathLen = 40

// ErrProtocol wraps a framing violation: a well-formed read that does not
// satisfy the wire contract (bad opcode, truncated path, etc).
var ErrProtocol = errors.New("protocol violation")

// ConnectFrame is the registration message a client writes to the
// well-known registration FIFO.
type ConnectFrame struct {
	ReqPipe   string
	NotifPipe string
}

// ConnectAck is the reply a worker writes to the client's notification pipe
// once it has popped the request off the admission queue.
type ConnectAck struct {
	Result byte // 0 == accepted
}

// PlayFrame carries a single command byte from client to server.
type PlayFrame struct {
	Command byte
}

// BoardFrame is the full board snapshot broadcast to the client.
type BoardFrame struct {
	Width       int32
	Height      int32
	Tempo       int32
	Victory     int32
	GameOver    int32
	Points      int32
	Cells       []byte // len == Width*Height
}

// WriteConnect encodes and writes a CONNECT frame to w.
func WriteConnect(w io.Writer, f ConnectFrame) error {
	if err := WriteFull(w, []byte{byte(OpConnect)}); err != nil {
		return err
	}
	if err := writeFixedString(w, f.ReqPipe); err != nil {
		return err
	}
	return writeFixedString(w, f.NotifPipe)
}

// ReadConnect reads a CONNECT frame body (opcode already consumed by the
// caller, since the registration listener must peek it first to filter
// garbage).
func ReadConnect(r io.Reader) (ConnectFrame, error) {
	req, err := readFixedString(r)
	if err != nil {
		return ConnectFrame{}, err
	}
	notif, err := readFixedString(r)
	if err != nil {
		return ConnectFrame{}, err
	}
	return ConnectFrame{ReqPipe: req, NotifPipe: notif}, nil
}

// WriteConnectAck writes the two-byte ACK a worker sends after dequeuing a
// session request.
func WriteConnectAck(w io.Writer, ack ConnectAck) error {
	return WriteFull(w, []byte{byte(OpConnect), ack.Result})
}

// ReadConnectAck reads the ACK the client expects right after it opens its
// notification pipe.
func ReadConnectAck(r io.Reader) (ConnectAck, error) {
	buf := make([]byte, 2)
	if err := ReadFullBuf(r, buf); err != nil {
		return ConnectAck{}, err
	}
	if Opcode(buf[0]) != OpConnect {
		return ConnectAck{}, fmt.Errorf("%w: expected CONNECT ack, got %s", ErrProtocol, Opcode(buf[0]))
	}
	return ConnectAck{Result: buf[1]}, nil
}

// WritePlay writes a PLAY frame.
func WritePlay(w io.Writer, f PlayFrame) error {
	return WriteFull(w, []byte{byte(OpPlay), f.Command})
}

// WriteDisconnect writes a DISCONNECT frame (opcode only).
func WriteDisconnect(w io.Writer) error {
	return WriteFull(w, []byte{byte(OpDisconnect)})
}

// WriteBoard encodes and writes a full BOARD frame.
func WriteBoard(w io.Writer, f BoardFrame) error {
	if int32(len(f.Cells)) != f.Width*f.Height {
		return fmt.Errorf("%w: board cell count %d does not match %dx%d", ErrProtocol, len(f.Cells), f.Width, f.Height)
	}
	header := make([]byte, 1+6*4)
	header[0] = byte(OpBoard)
	binary.LittleEndian.PutUint32(header[1:5], uint32(f.Width))
	binary.LittleEndian.PutUint32(header[5:9], uint32(f.Height))
	binary.LittleEndian.PutUint32(header[9:13], uint32(f.Tempo))
	binary.LittleEndian.PutUint32(header[13:17], uint32(f.Victory))
	binary.LittleEndian.PutUint32(header[17:21], uint32(f.GameOver))
	binary.LittleEndian.PutUint32(header[21:25], uint32(f.Points))
	if err := WriteFull(w, header); err != nil {
		return err
	}
	return WriteFull(w, f.Cells)
}

// ReadBoard reads a BOARD frame body (opcode already consumed by the
// caller).
func ReadBoard(r io.Reader) (BoardFrame, error) {
	header := make([]byte, 6*4)
	if err := ReadFullBuf(r, header); err != nil {
		return BoardFrame{}, err
	}
	f := BoardFrame{
		Width:    int32(binary.LittleEndian.Uint32(header[0:4])),
		Height:   int32(binary.LittleEndian.Uint32(header[4:8])),
		Tempo:    int32(binary.LittleEndian.Uint32(header[8:12])),
		Victory:  int32(binary.LittleEndian.Uint32(header[12:16])),
		GameOver: int32(binary.LittleEndian.Uint32(header[16:20])),
		Points:   int32(binary.LittleEndian.Uint32(header[20:24])),
	}
	if f.Width < 0 || f.Height < 0 {
		return BoardFrame{}, fmt.Errorf("%w: negative board dimensions %dx%d", ErrProtocol, f.Width, f.Height)
	}
	f.Cells = make([]byte, f.Width*f.Height)
	if err := ReadFullBuf(r, f.Cells); err != nil {
		return BoardFrame{}, err
	}
	return f, nil
}

// ReadOpcode reads the single leading opcode byte of a frame.
func ReadOpcode(r io.Reader) (Opcode, error) {
	buf := make([]byte, 1)
	if err := ReadFullBuf(r, buf); err != nil {
		return 0, err
	}
	return Opcode(buf[0]), nil
}

func writeFixedString(w io.Writer, s string) error {
	buf := make([]byte, PipePathLen)
	n := copy(buf, s)
	_ = n
	return WriteFull(w, buf)
}

func readFixedString(r io.Reader) (string, error) {
	buf := make([]byte, PipePathLen)
	if err := ReadFullBuf(r, buf); err != nil {
		return "", err
	}
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end]), nil
}

// ReadFullBuf fills buf completely, looping across short reads exactly as
// original_source's read_full loops across EINTR. A zero-byte read before
// anything has been consumed is reported as io.EOF; a short read afterwards
// is io.ErrUnexpectedEOF, both matching io.ReadFull's contract.
func ReadFullBuf(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// WriteFull writes buf completely, looping across short writes the way
// original_source's write_full loops on partial pipe writes.
func WriteFull(w io.Writer, buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := w.Write(buf[off:])
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("protocol: write_full made no progress")
		}
		off += n
	}
	return nil
}
