//go:build !linux

package sock

import "net"

func listenUDP(network string, laddr *net.UDPAddr, opts *BindOptions) (*net.UDPConn, error) {
	if opts.Transparent {
		return nil, &BindError{Op: OpSetsockopt, Addr: laddr, Err: ErrUnsupported}
	}
	return listenConfig(network, laddr, opts)
}

func ReadFromUDP(conn *net.UDPConn, b []byte) (int, *net.UDPAddr, *net.UDPAddr, error) {
	return 0, nil, nil, ErrUnsupported
}

func setsockopts(fd uintptr, network string, opts *BindOptions) error {
	return nil
}

func inNamespace(name string, fn func() error) error {
	if name != "" {
		return &BindError{Op: OpNamespace, Err: ErrUnsupported}
	}
	return fn()
}
