// Package listener models configured datagram endpoints and the receivers
// they bind.
package listener

import (
	"net"

	"github.com/go-gost/core/metadata"
	"github.com/go-gost/dgram/pkg/frontend"
	"github.com/go-gost/dgram/pkg/logger"
)

// State is the lifecycle state of a listener.
type State int

const (
	// StateInit is a newly created listener, not attached to any transport.
	StateInit State = iota
	// StateAssigned is a listener attached to a transport, address and port
	// fixed, not bound yet.
	StateAssigned
	// StateListen is a listener whose socket is bound.
	StateListen
	// StateReady is a bound listener handed over to the event loop.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAssigned:
		return "assigned"
	case StateListen:
		return "listen"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// BindConf is the bind configuration shared by the listeners of one bind line.
type BindConf struct {
	Threads  ThreadMask
	Frontend *frontend.Frontend
}

// Listener is a configured endpoint awaiting its socket.
type Listener struct {
	Name     string
	State    State
	RX       Receiver
	BindConf *BindConf
	Metadata metadata.Metadata
	Logger   logger.Logger
}

func NewListener(opts ...Option) *Listener {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	log := options.Logger
	if log == nil {
		log = logger.Nop()
	}
	bc := options.BindConf
	if bc == nil {
		bc = &BindConf{}
	}

	l := &Listener{
		Name:     options.Name,
		State:    StateInit,
		BindConf: bc,
		Metadata: options.Metadata,
		Logger:   log,
	}
	l.RX.Options = options.BindOptions
	if options.Addr != nil {
		addr := *options.Addr
		l.RX.Addr = &addr
	}
	return l
}

// Addr returns the configured receiver address.
func (l *Listener) Addr() *net.UDPAddr {
	return l.RX.Addr
}

// Frontend returns the frontend owning the listener, nil if unknown.
func (l *Listener) Frontend() *frontend.Frontend {
	if l.BindConf == nil {
		return nil
	}
	return l.BindConf.Frontend
}
