package sock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/go-gost/dgram/pkg/outcome"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Bind stages reported by BindError.
const (
	OpNamespace  = "namespace"
	OpSocket     = "socket"
	OpSetsockopt = "setsockopt"
	OpBind       = "bind"
)

// BindOptions tunes the socket created for a receiver.
type BindOptions struct {
	ReusePort   bool
	Transparent bool
	ReadBuffer  int
	WriteBuffer int
	Namespace   string
}

// BindError records which stage of a receiver bind failed.
type BindError struct {
	Op   string
	Addr net.Addr
	Err  error
}

func (e *BindError) Error() string {
	s := "sock: " + e.Op
	if e.Addr != nil {
		s += " " + e.Addr.String()
	}
	return s + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// ListenUDP creates a datagram socket bound to laddr, inside opts.Namespace
// when it is set. Destination information is requested on every received
// datagram when the platform supports it.
func ListenUDP(network string, laddr *net.UDPAddr, opts BindOptions) (*net.UDPConn, error) {
	var conn *net.UDPConn
	err := inNamespace(opts.Namespace, func() (err error) {
		conn, err = listenUDP(network, laddr, &opts)
		return
	})
	if err != nil {
		return nil, err
	}

	if opts.ReadBuffer > 0 {
		if err := conn.SetReadBuffer(opts.ReadBuffer); err != nil {
			conn.Close()
			return nil, &BindError{Op: OpSetsockopt, Addr: laddr, Err: err}
		}
	}
	if opts.WriteBuffer > 0 {
		if err := conn.SetWriteBuffer(opts.WriteBuffer); err != nil {
			conn.Close()
			return nil, &BindError{Op: OpSetsockopt, Addr: laddr, Err: err}
		}
	}

	// best effort, some platforms lack the control messages.
	switch network {
	case "udp6":
		_ = ipv6.NewPacketConn(conn).SetControlMessage(ipv6.FlagDst|ipv6.FlagInterface, true)
	default:
		_ = ipv4.NewPacketConn(conn).SetControlMessage(ipv4.FlagDst|ipv4.FlagInterface, true)
	}

	return conn, nil
}

func listenConfig(network string, laddr *net.UDPAddr, opts *BindOptions) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var opErr error
			if err := c.Control(func(fd uintptr) {
				opErr = setsockopts(fd, network, opts)
			}); err != nil {
				return err
			}
			return opErr
		},
	}
	pc, err := lc.ListenPacket(context.Background(), network, laddr.String())
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}

// Classify turns a ListenUDP error into a bind outcome and its message.
// Exhaustion of system resources at socket creation aborts the batch.
func Classify(err error) (outcome.Code, string) {
	if err == nil {
		return outcome.None, ""
	}

	op := OpBind
	var be *BindError
	var se *os.SyscallError
	if errors.As(err, &be) {
		op = be.Op
	}
	if (be == nil || be.Op == OpBind) && errors.As(err, &se) {
		op = se.Syscall
	}
	// go-tproxy reports setsockopt failures as text only.
	var oe *net.OpError
	if op == OpBind && se == nil && errors.As(err, &oe) && oe.Err != nil &&
		strings.HasPrefix(oe.Err.Error(), "set socket option") {
		op = OpSetsockopt
	}

	cause := err.Error()
	if be != nil {
		cause = be.Err.Error()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		cause = errno.Error()
	}

	switch op {
	case OpNamespace:
		return outcome.Retryable | outcome.Alert, fmt.Sprintf("cannot switch namespace (%s)", cause)
	case OpSocket:
		if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) ||
			errors.Is(err, syscall.ENOBUFS) || errors.Is(err, syscall.ENOMEM) {
			return outcome.Abort | outcome.Alert, fmt.Sprintf("cannot create receiving socket (%s)", cause)
		}
		return outcome.Retryable | outcome.Alert, fmt.Sprintf("cannot create receiving socket (%s)", cause)
	case OpSetsockopt:
		return outcome.Retryable | outcome.Alert, fmt.Sprintf("cannot set socket option (%s)", cause)
	default:
		return outcome.Retryable | outcome.Alert, fmt.Sprintf("cannot bind socket (%s)", cause)
	}
}
