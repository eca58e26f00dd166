// Package sock holds the native socket plumbing used by datagram transports:
// address families, tagged addresses, socket name queries and the receiver
// bind primitive.
package sock

import (
	"strconv"
	"syscall"
)

// Family identifies an address family. Native values are the operating
// system AF_* constants. Logical values are synthetic tags that let upper
// layers recognize which transport produced an address, while sharing the
// native family of the underlying socket.
type Family uint16

const (
	AFUnspec = Family(syscall.AF_UNSPEC)
	AFInet   = Family(syscall.AF_INET)
	AFInet6  = Family(syscall.AF_INET6)
)

// Logical families. They live above every native AF_* value.
const (
	FamilyUDP4 Family = 0x0101
	FamilyUDP6 Family = 0x0102
)

// Logical reports whether f is a transport tag rather than a native family.
func (f Family) Logical() bool {
	return f == FamilyUDP4 || f == FamilyUDP6
}

// Network returns the Go network name for a logical family.
func (f Family) Network() string {
	switch f {
	case FamilyUDP4:
		return "udp4"
	case FamilyUDP6:
		return "udp6"
	default:
		return ""
	}
}

func (f Family) String() string {
	switch f {
	case FamilyUDP4, FamilyUDP6:
		return f.Network()
	case AFUnspec:
		return "unspec"
	case AFInet:
		return "inet"
	case AFInet6:
		return "inet6"
	default:
		return "family(" + strconv.Itoa(int(f)) + ")"
	}
}
