package udp

import (
	"net"

	"github.com/go-gost/dgram/pkg/listener"
)

// Add attaches l on port. The listener moves from the init to the assigned
// state; a listener in any other state is left untouched.
func (p *Protocol) Add(l *listener.Listener, port int) {
	if l.State != listener.StateInit {
		return
	}
	l.State = listener.StateAssigned
	if l.RX.Addr == nil {
		l.RX.Addr = &net.UDPAddr{}
	}
	l.RX.Addr.Port = port
	p.Attach(l)
}

// Pause always fails: a datagram listener cannot be quiesced without being
// unbound.
func (p *Protocol) Pause(l *listener.Listener) int {
	return -1
}
