// Package protocol defines the dispatch contract every transport implements
// and the descriptor state they share.
package protocol

import (
	"net"
	"syscall"

	"github.com/go-gost/dgram/pkg/listener"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/metrics"
	"github.com/go-gost/dgram/pkg/outcome"
	"github.com/go-gost/dgram/pkg/sock"
)

// Protocol is the dispatch table of a transport. Upper layers select an
// implementation from the logical family of an address and never branch on
// the transport type.
type Protocol interface {
	Name() string
	Family() sock.Family
	Sock() SockInfo

	// Bind binds one listener. Only assigned listeners are bound, others
	// yield outcome.None without side effects.
	Bind(l *listener.Listener, msg *outcome.Buffer) outcome.Code
	// BindAll binds every listener of the transport, stopping at the first
	// outcome carrying outcome.Abort.
	BindAll(msg *outcome.Buffer) outcome.Code
	UnbindAll()
	EnableAll()
	// Pause returns < 0 on failure, 0 if the listener was fully stopped
	// and > 0 if it was paused.
	Pause(l *listener.Listener) int
	// Add attaches an initial listener on the given port. Listeners in any
	// other state are left untouched.
	Add(l *listener.Listener, port int)

	Src(c syscall.Conn, dir sock.Direction) (*sock.Addr, error)
	Dst(c syscall.Conn, dir sock.Direction) (*sock.Addr, error)
	AddrEqual(a, b net.Addr) bool

	Listeners() []*listener.Listener
	Count() int
}

// SockInfo describes the native socket created by a transport.
type SockInfo struct {
	Family    sock.Family
	Type      int
	Proto     int
	AddrLen   int
	L3AddrLen int
}

// Descriptor holds the state common to all transports. Transports embed it
// and provide the remaining operations.
type Descriptor struct {
	name      string
	family    sock.Family
	sock      SockInfo
	listeners []*listener.Listener
	logger    logger.Logger
}

func NewDescriptor(name string, family sock.Family, si SockInfo, log logger.Logger) Descriptor {
	if log == nil {
		log = logger.Nop()
	}
	return Descriptor{
		name:   name,
		family: family,
		sock:   si,
		logger: log,
	}
}

func (d *Descriptor) Name() string {
	return d.name
}

func (d *Descriptor) Family() sock.Family {
	return d.family
}

func (d *Descriptor) Sock() SockInfo {
	return d.sock
}

func (d *Descriptor) Logger() logger.Logger {
	return d.logger
}

// Listeners returns the listeners in attachment order.
func (d *Descriptor) Listeners() []*listener.Listener {
	return d.listeners
}

func (d *Descriptor) Count() int {
	return len(d.listeners)
}

// Attach appends l to the listener set and points it back to the
// descriptor's family. A listener without logger inherits the descriptor's.
// State changes are up to the caller.
func (d *Descriptor) Attach(l *listener.Listener) {
	l.RX.Family = d.family
	if l.Logger == nil {
		l.Logger = d.logger
	}
	d.listeners = append(d.listeners, l)
	metrics.Listeners(d.name).Inc()
}

// UnbindAll closes the socket of every bound listener and returns it to the
// assigned state.
func (d *Descriptor) UnbindAll() {
	for _, l := range d.listeners {
		if l.State != listener.StateListen && l.State != listener.StateReady {
			continue
		}
		if l.State == listener.StateReady {
			metrics.ReadyListeners(d.name).Dec()
		}
		if err := l.RX.Unbind(); err != nil {
			l.Logger.Warnf("unbind %s: %v", l.RX.Addr, err)
		}
		l.State = listener.StateAssigned
	}
}

// EnableAll hands every bound listener over to the event loop.
func (d *Descriptor) EnableAll() {
	n := 0
	for _, l := range d.listeners {
		if l.State == listener.StateListen {
			l.State = listener.StateReady
			n++
		}
	}
	metrics.ReadyListeners(d.name).Add(float64(n))
	d.logger.Debugf("%d listener(s) enabled", n)
}
