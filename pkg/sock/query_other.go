//go:build !unix

package sock

import "syscall"

type nativeQuerier struct{}

func (nativeQuerier) Src(fd uintptr, dir Direction) (syscall.Sockaddr, error) {
	return nil, ErrUnsupported
}

func (nativeQuerier) Dst(fd uintptr, dir Direction) (syscall.Sockaddr, error) {
	return nil, ErrUnsupported
}
