package handler

import (
	"context"
	"net"

	"github.com/go-gost/core/metadata"
)

// Handler processes the datagrams received by a bound receiver. It is
// attached at bind time and driven later by the owner of the socket.
type Handler interface {
	Init(metadata.Metadata) error
	HandleDatagram(ctx context.Context, b []byte, src net.Addr) error
}
