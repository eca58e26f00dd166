package sock

import (
	"net"
	"syscall"
	"testing"
)

func TestFromSockaddr(t *testing.T) {
	v4 := &syscall.SockaddrInet4{Port: 514, Addr: [4]byte{192, 0, 2, 1}}
	a, err := FromSockaddr(v4)
	if err != nil {
		t.Fatal(err)
	}
	if a.Family != AFInet || a.Port != 514 || !a.IP.Equal(net.IPv4(192, 0, 2, 1)) {
		t.Errorf("unexpected address %+v", a)
	}
	if a.String() != "192.0.2.1:514" {
		t.Errorf("String() = %q", a.String())
	}

	v6 := &syscall.SockaddrInet6{Port: 5353}
	copy(v6.Addr[:], net.ParseIP("2001:db8::1").To16())
	a, err = FromSockaddr(v6)
	if err != nil {
		t.Fatal(err)
	}
	if a.Family != AFInet6 || a.Port != 5353 || !a.IP.Equal(net.ParseIP("2001:db8::1")) {
		t.Errorf("unexpected address %+v", a)
	}
	if a.String() != "[2001:db8::1]:5353" {
		t.Errorf("String() = %q", a.String())
	}

	if _, err := FromSockaddr(&syscall.SockaddrUnix{Name: "/tmp/x"}); err != ErrAddrFamily {
		t.Errorf("unix sockaddr: got %v, want %v", err, ErrAddrFamily)
	}
}

func TestAddrNetwork(t *testing.T) {
	a := &Addr{Family: FamilyUDP6, IP: net.ParseIP("::1"), Port: 53}
	if a.Network() != "udp6" {
		t.Errorf("Network() = %q", a.Network())
	}
	a.Family = AFInet6
	if a.Network() != "udp" {
		t.Errorf("Network() = %q", a.Network())
	}

	var nilAddr *Addr
	if nilAddr.String() != "<nil>" || nilAddr.UDPAddr() != nil {
		t.Error("nil address not handled")
	}
}

func TestToSockaddr(t *testing.T) {
	sa := ToSockaddr(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 53})
	v4, ok := sa.(*syscall.SockaddrInet4)
	if !ok {
		t.Fatalf("got %T, want *syscall.SockaddrInet4", sa)
	}
	if v4.Port != 53 || v4.Addr != [4]byte{127, 0, 0, 1} {
		t.Errorf("unexpected sockaddr %+v", v4)
	}
	if ToSockaddr(nil) != nil {
		t.Error("nil address should give nil sockaddr")
	}
}
