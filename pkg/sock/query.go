package sock

import (
	"errors"
	"syscall"
)

var (
	ErrUnsupported = errors.New("sock: not supported on this platform")
)

// Direction tells whether a socket is owned as a listener (0) or as an
// initiator (any other value).
type Direction int

const (
	DirListener  Direction = 0
	DirInitiator Direction = 1
)

// Initiator reports whether d designates the initiator side.
func (d Direction) Initiator() bool {
	return d != DirListener
}

// Querier retrieves the native source and destination addresses of a socket.
type Querier interface {
	// Src returns the peer address for a listener, the local one otherwise.
	Src(fd uintptr, dir Direction) (syscall.Sockaddr, error)
	// Dst returns the local address for a listener, recovering the original
	// destination when the traffic was transparently redirected, and the
	// peer address otherwise.
	Dst(fd uintptr, dir Direction) (syscall.Sockaddr, error)
}

// NativeQuerier returns the operating system backed Querier.
func NativeQuerier() Querier {
	return nativeQuerier{}
}

// Control runs fn against the file descriptor of c.
func Control(c syscall.Conn, fn func(fd uintptr) error) error {
	rc, err := c.SyscallConn()
	if err != nil {
		return err
	}

	var opErr error
	if err := rc.Control(func(fd uintptr) {
		opErr = fn(fd)
	}); err != nil {
		return err
	}
	return opErr
}
