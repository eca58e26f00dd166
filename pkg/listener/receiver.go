package listener

import (
	"net"

	"github.com/go-gost/dgram/pkg/handler"
	"github.com/go-gost/dgram/pkg/outcome"
	"github.com/go-gost/dgram/pkg/sock"
)

// Receiver is the network side of a listener: the address to bind and,
// once bound, the socket. Family is the logical family of the owning
// transport, used to find it back in the registry.
type Receiver struct {
	Addr    *net.UDPAddr
	Conn    net.PacketConn
	Handler handler.Handler
	Threads ThreadMask
	Family  sock.Family
	Options sock.BindOptions
}

// Bound reports whether the receiver holds a socket.
func (rx *Receiver) Bound() bool {
	return rx.Conn != nil
}

// Unbind closes the receiver socket if any.
func (rx *Receiver) Unbind() error {
	if rx.Conn == nil {
		return nil
	}
	err := rx.Conn.Close()
	rx.Conn = nil
	rx.Handler = nil
	return err
}

// Binder creates and binds the socket of a receiver. The returned message
// is only meaningful when the code is not outcome.None.
type Binder interface {
	Bind(rx *Receiver, h handler.Handler, threads ThreadMask) (outcome.Code, string)
}

// SockBinder returns the Binder creating real datagram sockets.
func SockBinder() Binder {
	return sockBinder{}
}

type sockBinder struct{}

func (sockBinder) Bind(rx *Receiver, h handler.Handler, threads ThreadMask) (outcome.Code, string) {
	if rx.Bound() {
		return outcome.None, ""
	}
	if rx.Addr == nil {
		return outcome.Fatal | outcome.Alert, "no address to bind"
	}

	network := rx.Family.Network()
	if network == "" {
		network = "udp"
	}
	conn, err := sock.ListenUDP(network, rx.Addr, rx.Options)
	if err != nil {
		return sock.Classify(err)
	}

	rx.Conn = conn
	rx.Handler = h
	rx.Threads = threads
	return outcome.None, ""
}
