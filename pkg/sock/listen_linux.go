package sock

import (
	"net"
	"os"
	"runtime"

	"github.com/LiamHaworth/go-tproxy"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

// listenUDP sets every option, IP_TRANSPARENT included, before bind so that
// a non-local address can be bound and each failure keeps its stage.
func listenUDP(network string, laddr *net.UDPAddr, opts *BindOptions) (*net.UDPConn, error) {
	return listenConfig(network, laddr, opts)
}

// ReadFromUDP reads a datagram from a udp4 receiver bound with the
// transparent option and returns its source and its original destination,
// carried by the IP_ORIGDSTADDR control message.
func ReadFromUDP(conn *net.UDPConn, b []byte) (int, *net.UDPAddr, *net.UDPAddr, error) {
	return tproxy.ReadFromUDP(conn, b)
}

func setsockopts(fd uintptr, network string, opts *BindOptions) error {
	set := func(level, name int) error {
		if err := unix.SetsockoptInt(int(fd), level, name, 1); err != nil {
			return &BindError{Op: OpSetsockopt, Err: os.NewSyscallError("setsockopt", err)}
		}
		return nil
	}

	if err := set(unix.SOL_SOCKET, unix.SO_REUSEADDR); err != nil {
		return err
	}
	if opts.ReusePort {
		if err := set(unix.SOL_SOCKET, unix.SO_REUSEPORT); err != nil {
			return err
		}
	}
	if !opts.Transparent {
		return nil
	}

	if network == "udp6" {
		if err := set(unix.SOL_IPV6, unix.IPV6_TRANSPARENT); err != nil {
			return err
		}
		return set(unix.SOL_IPV6, unix.IPV6_RECVORIGDSTADDR)
	}
	if err := set(unix.SOL_IP, unix.IP_TRANSPARENT); err != nil {
		return err
	}
	return set(unix.SOL_IP, unix.IP_RECVORIGDSTADDR)
}

// inNamespace runs fn with the calling thread switched to the named network
// namespace.
func inNamespace(name string, fn func() error) error {
	if name == "" {
		return fn()
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	orig, err := netns.Get()
	if err != nil {
		return &BindError{Op: OpNamespace, Err: err}
	}
	defer orig.Close()

	target, err := netns.GetFromName(name)
	if err != nil {
		return &BindError{Op: OpNamespace, Err: err}
	}
	defer target.Close()

	if err := netns.Set(target); err != nil {
		return &BindError{Op: OpNamespace, Err: err}
	}
	defer netns.Set(orig)

	return fn()
}
