package protocol

import (
	"net"
	"testing"

	"github.com/go-gost/dgram/pkg/listener"
	"github.com/go-gost/dgram/pkg/sock"
)

func newTestDescriptor() *Descriptor {
	d := NewDescriptor("udp4", sock.FamilyUDP4, SockInfo{Family: sock.AFInet, AddrLen: 16, L3AddrLen: 4}, nil)
	return &d
}

func TestAttach(t *testing.T) {
	d := newTestDescriptor()
	a := listener.NewListener()
	b := listener.NewListener()
	d.Attach(a)
	d.Attach(b)

	if d.Count() != 2 || d.Listeners()[0] != a || d.Listeners()[1] != b {
		t.Fatalf("unexpected listener set %v", d.Listeners())
	}
	if a.RX.Family != sock.FamilyUDP4 {
		t.Errorf("family back-reference = %v", a.RX.Family)
	}
	if d.Name() != "udp4" || d.Family() != sock.FamilyUDP4 || d.Sock().L3AddrLen != 4 {
		t.Error("descriptor fields not kept")
	}
}

func TestEnableAndUnbindAll(t *testing.T) {
	d := newTestDescriptor()

	bound := listener.NewListener()
	bound.State = listener.StateListen
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Skipf("loopback unavailable: %v", err)
	}
	bound.RX.Conn = conn

	assigned := listener.NewListener()
	assigned.State = listener.StateAssigned

	d.Attach(bound)
	d.Attach(assigned)

	d.EnableAll()
	if bound.State != listener.StateReady {
		t.Errorf("bound listener state = %v", bound.State)
	}
	if assigned.State != listener.StateAssigned {
		t.Errorf("assigned listener state = %v", assigned.State)
	}

	d.UnbindAll()
	if bound.State != listener.StateAssigned || bound.RX.Bound() {
		t.Errorf("listener not unbound: %v", bound.State)
	}
	if _, _, err := conn.ReadFrom(make([]byte, 1)); err == nil {
		t.Error("socket still open")
	}
}

func TestAttachInheritsLogger(t *testing.T) {
	d := newTestDescriptor()
	l := &listener.Listener{}
	d.Attach(l)
	if l.Logger == nil {
		t.Fatal("attached listener has no logger")
	}

	// a literal listener goes back to assigned without a socket to close.
	l.State = listener.StateListen
	d.UnbindAll()
	if l.State != listener.StateAssigned {
		t.Errorf("state = %v", l.State)
	}
}
