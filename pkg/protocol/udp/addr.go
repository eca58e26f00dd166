package udp

import (
	"net"
	"syscall"

	"github.com/go-gost/dgram/pkg/metrics"
	"github.com/go-gost/dgram/pkg/sock"
	sockaddrnet "github.com/jbenet/go-sockaddr/net"
)

// Src returns the source address of the socket, tagged with the logical
// family of the transport. dir tells whether the socket is owned as a
// listener or as an initiator.
func (p *Protocol) Src(c syscall.Conn, dir sock.Direction) (*sock.Addr, error) {
	addr, err := p.resolve(c, dir, p.querier.Src)
	if err != nil {
		metrics.AddrQueryErrors(p.Name(), "src").Inc()
	}
	return addr, err
}

// Dst returns the destination address of the socket, tagged with the
// logical family of the transport. For a listener whose traffic was
// transparently redirected, this is the original destination.
func (p *Protocol) Dst(c syscall.Conn, dir sock.Direction) (*sock.Addr, error) {
	addr, err := p.resolve(c, dir, p.querier.Dst)
	if err != nil {
		metrics.AddrQueryErrors(p.Name(), "dst").Inc()
	}
	return addr, err
}

func (p *Protocol) resolve(c syscall.Conn, dir sock.Direction,
	query func(fd uintptr, dir sock.Direction) (syscall.Sockaddr, error)) (*sock.Addr, error) {

	var sa syscall.Sockaddr
	err := sock.Control(c, func(fd uintptr) (err error) {
		sa, err = query(fd, dir)
		return
	})
	if err != nil {
		return nil, err
	}

	addr, err := sock.FromSockaddr(sa)
	if err != nil {
		return nil, err
	}
	addr.Family = p.Family()
	return addr, nil
}

// AddrEqual reports whether a and b are the same address of the transport's
// IP version.
func (p *Protocol) AddrEqual(a, b net.Addr) bool {
	ipa, porta, ok := p.ipPort(a)
	if !ok {
		return false
	}
	ipb, portb, ok := p.ipPort(b)
	if !ok {
		return false
	}
	return porta == portb && ipa.Equal(ipb)
}

func (p *Protocol) ipPort(addr net.Addr) (net.IP, int, bool) {
	var ip net.IP
	var port int

	switch v := addr.(type) {
	case *sock.Addr:
		if v == nil || (v.Family.Logical() && v.Family != p.Family()) {
			return nil, 0, false
		}
		ip, port = v.IP, v.Port
	case *net.UDPAddr:
		if v == nil {
			return nil, 0, false
		}
		ip, port = v.IP, v.Port
	default:
		return nil, 0, false
	}

	want := syscall.AF_INET
	if p.Sock().Family == sock.AFInet6 {
		want = syscall.AF_INET6
	}
	if sockaddrnet.IPAF(ip) != want {
		return nil, 0, false
	}
	return ip, port, true
}
