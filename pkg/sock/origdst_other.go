//go:build unix && !linux

package sock

import "syscall"

func originalDst(fd int, local syscall.Sockaddr) (syscall.Sockaddr, bool) {
	return nil, false
}
