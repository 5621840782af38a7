// Package render draws a received board snapshot to the terminal with
// tcell, adapted from the teacher's TcellRenderer. The teacher's version
// carries a sprite atlas, a scrolling camera, and alternate braille/half-block
// glyph modes because it renders a large scrolling platformer world; a pacman
// board is small, fully server-resolved, and already one character per
// cell, so this renderer drops the atlas/camera machinery entirely and maps
// wire bytes straight to styled cells. See DESIGN.md.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Screen owns the tcell.Screen and renders Board snapshots to it.
type Screen struct {
	screen tcell.Screen
	keys   chan rune
}

// Open initializes the terminal for rendering.
func Open() (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	return &Screen{screen: screen}, nil
}

// Close restores the terminal.
func (s *Screen) Close() {
	if s.screen != nil {
		s.screen.Fini()
	}
}

// Board is the subset of a BOARD frame the renderer needs.
type Board struct {
	Width, Height int
	Points        int
	Victory       bool
	GameOver      bool
	Cells         []byte
}

// styleFor maps one wire cell byte to a tcell style, grounded in the
// teacher's DefaultASCIIAtlas glyph-to-style table.
func styleFor(c byte) (rune, tcell.Style) {
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	switch c {
	case '#':
		return '#', base.Foreground(tcell.ColorBlue)
	case '.':
		return '.', base.Foreground(tcell.ColorWhite)
	case '@':
		return '@', base.Foreground(tcell.ColorGreen)
	case 'C':
		return 'C', base.Foreground(tcell.ColorYellow).Bold(true)
	case 'G':
		return 'G', base.Foreground(tcell.ColorRed).Bold(true)
	case 'M':
		return 'M', base.Foreground(tcell.ColorGray)
	default:
		return ' ', base
	}
}

// Draw clears the screen and paints b, plus a one-line status bar below the
// grid.
func (s *Screen) Draw(b Board) {
	s.screen.Clear()
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			c := b.Cells[row*b.Width+col]
			glyph, style := styleFor(c)
			s.screen.SetContent(col, row, glyph, nil, style)
		}
	}

	status := statusLine(b)
	for i, r := range status {
		s.screen.SetContent(i, b.Height+1, r, nil, tcell.StyleDefault)
	}

	s.screen.Show()
}

func statusLine(b Board) string {
	switch {
	case b.Victory:
		return "VICTORY"
	case b.GameOver:
		return "GAME OVER"
	default:
		return fmt.Sprintf("Points: %d", b.Points)
	}
}

// PollKey blocks for the next key event and returns its rune. Ctrl-C is
// returned as 'Q', any other non-rune key as 0, and 0 also when the event
// stream ends; non-key events such as a resize are skipped.
func (s *Screen) PollKey() rune {
	for {
		ev := s.screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			if e.Key() == tcell.KeyRune {
				return e.Rune()
			}
			if e.Key() == tcell.KeyCtrlC {
				return 'Q'
			}
			return 0
		case nil:
			return 0
		default:
			continue
		}
	}
}

// Keys returns a channel fed by a single background goroutine forwarding
// every PollKey result, lazily started on first call. tcell has no
// poll-with-timeout primitive, so this lets the play loop select on it
// alongside a time.After to get the ≤50ms-responsive polling
// client_main.c's set_timeout(50) achieves natively.
func (s *Screen) Keys() <-chan rune {
	if s.keys == nil {
		s.keys = make(chan rune)
		go func() {
			for {
				s.keys <- s.PollKey()
			}
		}()
	}
	return s.keys
}
