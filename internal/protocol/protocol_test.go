package protocol

import (
	"bytes"
	"testing"
)

func TestBoardRoundTrip(t *testing.T) {
	want := BoardFrame{
		Width: 3, Height: 2, Tempo: 150, Victory: 0, GameOver: 1, Points: 42,
		Cells: []byte("#.@M G"),
	}

	var buf bytes.Buffer
	if err := WriteBoard(&buf, want); err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}

	op, err := ReadOpcode(&buf)
	if err != nil {
		t.Fatalf("ReadOpcode: %v", err)
	}
	if op != OpBoard {
		t.Fatalf("got opcode %v, want BOARD", op)
	}

	got, err := ReadBoard(&buf)
	if err != nil {
		t.Fatalf("ReadBoard: %v", err)
	}
	if got.Width != want.Width || got.Height != want.Height || got.Tempo != want.Tempo ||
		got.Victory != want.Victory || got.GameOver != want.GameOver || got.Points != want.Points {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if !bytes.Equal(got.Cells, want.Cells) {
		t.Fatalf("cells mismatch: got %q, want %q", got.Cells, want.Cells)
	}
}

func TestConnectPathsAreNulPaddedAndTruncatedOnRead(t *testing.T) {
	var buf bytes.Buffer
	f := ConnectFrame{ReqPipe: "/tmp/1_request", NotifPipe: "/tmp/1_notification"}
	if err := WriteConnect(&buf, f); err != nil {
		t.Fatalf("WriteConnect: %v", err)
	}

	op, err := ReadOpcode(&buf)
	if err != nil || op != OpConnect {
		t.Fatalf("ReadOpcode: op=%v err=%v", op, err)
	}
	got, err := ReadConnect(&buf)
	if err != nil {
		t.Fatalf("ReadConnect: %v", err)
	}
	if got != f {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestWriteBoardRejectsMismatchedCellCount(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBoard(&buf, BoardFrame{Width: 2, Height: 2, Cells: []byte("x")})
	if err == nil {
		t.Fatal("expected an error for a short cell buffer")
	}
}

func TestConnectAckRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConnectAck(&buf, ConnectAck{Result: 0}); err != nil {
		t.Fatalf("WriteConnectAck: %v", err)
	}
	ack, err := ReadConnectAck(&buf)
	if err != nil {
		t.Fatalf("ReadConnectAck: %v", err)
	}
	if ack.Result != 0 {
		t.Fatalf("got result %d, want 0", ack.Result)
	}
}

func TestDisconnectIsOpcodeOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDisconnect(&buf); err != nil {
		t.Fatalf("WriteDisconnect: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("got %d bytes, want 1", buf.Len())
	}
	op, err := ReadOpcode(&buf)
	if err != nil || op != OpDisconnect {
		t.Fatalf("op=%v err=%v", op, err)
	}
}
