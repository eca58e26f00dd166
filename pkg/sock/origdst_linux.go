package sock

import (
	"encoding/binary"
	"syscall"

	"golang.org/x/sys/unix"
)

// originalDst asks netfilter for the pre-NAT destination of the socket. It
// fails when the traffic was not redirected.
func originalDst(fd int, local syscall.Sockaddr) (syscall.Sockaddr, bool) {
	switch local.(type) {
	case *syscall.SockaddrInet4:
		// the kernel fills a struct sockaddr_in: family, port, address.
		mreq, err := unix.GetsockoptIPv6Mreq(fd, unix.SOL_IP, unix.SO_ORIGINAL_DST)
		if err != nil {
			return nil, false
		}
		sa := &syscall.SockaddrInet4{
			Port: int(binary.BigEndian.Uint16(mreq.Multiaddr[2:4])),
		}
		copy(sa.Addr[:], mreq.Multiaddr[4:8])
		return sa, true

	case *syscall.SockaddrInet6:
		// IP6T_SO_ORIGINAL_DST is 80, the same value as SO_ORIGINAL_DST; x/sys/unix
		// only exports the latter.
		info, err := unix.GetsockoptIPv6MTUInfo(fd, unix.SOL_IPV6, unix.SO_ORIGINAL_DST)
		if err != nil {
			return nil, false
		}
		sa := &syscall.SockaddrInet6{
			Port:   int(ntohs(info.Addr.Port)),
			ZoneId: info.Addr.Scope_id,
		}
		copy(sa.Addr[:], info.Addr.Addr[:])
		return sa, true
	}
	return nil, false
}

func ntohs(v uint16) uint16 {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}
