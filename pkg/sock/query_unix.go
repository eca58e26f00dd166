//go:build unix

package sock

import (
	"os"
	"syscall"
)

type nativeQuerier struct{}

func (nativeQuerier) Src(fd uintptr, dir Direction) (syscall.Sockaddr, error) {
	if dir.Initiator() {
		return getsockname(int(fd))
	}
	return getpeername(int(fd))
}

func (nativeQuerier) Dst(fd uintptr, dir Direction) (syscall.Sockaddr, error) {
	if dir.Initiator() {
		return getpeername(int(fd))
	}

	sa, err := getsockname(int(fd))
	if err != nil {
		return nil, err
	}
	if orig, ok := originalDst(int(fd), sa); ok {
		return orig, nil
	}
	return sa, nil
}

func getsockname(fd int) (syscall.Sockaddr, error) {
	sa, err := syscall.Getsockname(fd)
	if err != nil {
		return nil, os.NewSyscallError("getsockname", err)
	}
	return sa, nil
}

func getpeername(fd int) (syscall.Sockaddr, error) {
	sa, err := syscall.Getpeername(fd)
	if err != nil {
		return nil, os.NewSyscallError("getpeername", err)
	}
	return sa, nil
}
