package clientrt

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// scriptReader replays a commands file forever, grounded in
// client_main.c's get_next_token + rewind(cmd_fp) loop: whitespace- or
// comment-separated tokens, "PASSO" and "POS" consumed along with their
// 1 and 2 trailing tokens, any other token's first byte uppercased and
// returned as the next command.
type scriptReader struct {
	f   *os.File
	buf *bufio.Reader
}

func openScript(path string) (*scriptReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &scriptReader{f: f, buf: bufio.NewReader(f)}, nil
}

func (s *scriptReader) close() { s.f.Close() }

// next returns the next PLAY command byte, rewinding and retrying once if
// the file runs out, exactly as the original loops on commands_file.
func (s *scriptReader) next() (byte, bool) {
	for attempts := 0; attempts < 2; attempts++ {
		for {
			tok, ok := s.nextToken()
			if !ok {
				break
			}
			switch tok {
			case "PASSO":
				s.nextToken()
				continue
			case "POS":
				s.nextToken()
				s.nextToken()
				continue
			}
			if tok == "" {
				continue
			}
			return upper(tok[0]), true
		}
		if _, err := s.f.Seek(0, io.SeekStart); err != nil {
			return 0, false
		}
		s.buf.Reset(s.f)
	}
	return 0, false
}

func (s *scriptReader) nextToken() (string, bool) {
	var sb strings.Builder
	inComment := false
	for {
		c, err := s.buf.ReadByte()
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), true
			}
			return "", false
		}
		if c == '#' {
			inComment = true
			continue
		}
		if inComment {
			if c == '\n' {
				inComment = false
			}
			continue
		}
		if isSpace(c) {
			if sb.Len() > 0 {
				return sb.String(), true
			}
			continue
		}
		sb.WriteByte(c)
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
