// Package fifo provides named-pipe plumbing for the pacterm wire protocol,
// generalizing the teacher's network.Transport/network.Connection
// interfaces (originally TCP) to local FIFOs. Go's os package has no mkfifo
// call, so creation goes through golang.org/x/sys/unix, matching the
// registration listener's need for a non-blocking dummy writer as well.
package fifo

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Create makes a FIFO at path, removing any stale node first (unlink is
// not an error if the path does not exist), mirroring pacman_connect's
// unlink-then-mkfifo sequence.
func Create(path string, perm os.FileMode) error {
	_ = os.Remove(path)
	if err := unix.Mkfifo(path, uint32(perm)); err != nil {
		return fmt.Errorf("fifo: mkfifo %q: %w", path, err)
	}
	return nil
}

// Remove deletes a FIFO node, ignoring a missing file.
func Remove(path string) {
	_ = os.Remove(path)
}

// OpenReader opens path for blocking reads. Opening a FIFO for read blocks
// until a writer opens it, exactly as the registration pipe and per-session
// request pipe require.
func OpenReader(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("fifo: open %q for read: %w", path, err)
	}
	return f, nil
}

// OpenWriter opens path for blocking writes, symmetric with OpenReader.
func OpenWriter(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("fifo: open %q for write: %w", path, err)
	}
	return f, nil
}

// OpenNonblockingWriter opens path O_WRONLY|O_NONBLOCK, used only for the
// registration FIFO's "dummy writer" trick: holding a spare write end open
// keeps the FIFO from reporting EOF to the listener's blocking reader when
// no real client is currently connecting.
func OpenNonblockingWriter(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("fifo: open %q nonblocking: %w", path, err)
	}
	return os.NewFile(uintptr(fd), path), nil
}
