package sock

import (
	"errors"
	"net"
	"strconv"
	"syscall"

	sockaddrnet "github.com/jbenet/go-sockaddr/net"
)

var (
	ErrAddrFamily = errors.New("sock: unsupported address family")
)

// Addr is an IP transport address carrying an explicit family. Addresses
// returned by a transport carry its logical family.
type Addr struct {
	Family Family
	IP     net.IP
	Port   int
	Zone   string
}

// FromSockaddr converts a native inet or inet6 socket address. The returned
// address carries the native family.
func FromSockaddr(sa syscall.Sockaddr) (*Addr, error) {
	var family Family
	switch sa.(type) {
	case *syscall.SockaddrInet4:
		family = AFInet
	case *syscall.SockaddrInet6:
		family = AFInet6
	default:
		return nil, ErrAddrFamily
	}

	ua := sockaddrnet.SockaddrToUDPAddr(sa)
	if ua == nil {
		return nil, ErrAddrFamily
	}
	return &Addr{
		Family: family,
		IP:     ua.IP,
		Port:   ua.Port,
		Zone:   ua.Zone,
	}, nil
}

// ToSockaddr converts a UDP address to its native form. The port is stored
// in network byte order by the kernel-facing representation.
func ToSockaddr(addr *net.UDPAddr) syscall.Sockaddr {
	if addr == nil {
		return nil
	}
	return sockaddrnet.UDPAddrToSockaddr(addr)
}

// Network implements net.Addr.
func (a *Addr) Network() string {
	if a == nil {
		return ""
	}
	if n := a.Family.Network(); n != "" {
		return n
	}
	return "udp"
}

func (a *Addr) String() string {
	if a == nil {
		return "<nil>"
	}
	host := ""
	if len(a.IP) > 0 {
		host = a.IP.String()
	}
	if a.Zone != "" {
		host += "%" + a.Zone
	}
	return net.JoinHostPort(host, strconv.Itoa(a.Port))
}

// UDPAddr returns a copy of a as a *net.UDPAddr.
func (a *Addr) UDPAddr() *net.UDPAddr {
	if a == nil {
		return nil
	}
	return &net.UDPAddr{
		IP:   append(net.IP(nil), a.IP...),
		Port: a.Port,
		Zone: a.Zone,
	}
}
