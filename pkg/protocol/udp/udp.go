// Package udp implements the udp4 and udp6 transports. Their sockets are
// bound and registered here, reading and writing belongs to the handlers.
package udp

import (
	"fmt"
	"syscall"

	"github.com/go-gost/dgram/pkg/listener"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/protocol"
	"github.com/go-gost/dgram/pkg/registry"
	"github.com/go-gost/dgram/pkg/sock"
)

const (
	sizeofSockaddrInet4 = 16
	sizeofSockaddrInet6 = 28
)

var (
	_ protocol.Protocol = (*Protocol)(nil)
)

type options struct {
	binder  listener.Binder
	querier sock.Querier
	logger  logger.Logger
}

type Option func(opts *options)

// BinderOption replaces the socket binder.
func BinderOption(b listener.Binder) Option {
	return func(opts *options) {
		opts.binder = b
	}
}

// QuerierOption replaces the native address querier.
func QuerierOption(q sock.Querier) Option {
	return func(opts *options) {
		opts.querier = q
	}
}

func LoggerOption(logger logger.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Protocol is one UDP transport variant.
type Protocol struct {
	protocol.Descriptor
	binder  listener.Binder
	querier sock.Querier
	errs    error
}

// NewUDP4 creates the transport for datagrams over IPv4.
func NewUDP4(opts ...Option) *Protocol {
	return newProtocol("udp4", sock.FamilyUDP4, protocol.SockInfo{
		Family:    sock.AFInet,
		Type:      syscall.SOCK_DGRAM,
		Proto:     syscall.IPPROTO_UDP,
		AddrLen:   sizeofSockaddrInet4,
		L3AddrLen: 32 / 8,
	}, opts...)
}

// NewUDP6 creates the transport for datagrams over IPv6.
func NewUDP6(opts ...Option) *Protocol {
	return newProtocol("udp6", sock.FamilyUDP6, protocol.SockInfo{
		Family:    sock.AFInet6,
		Type:      syscall.SOCK_DGRAM,
		Proto:     syscall.IPPROTO_UDP,
		AddrLen:   sizeofSockaddrInet6,
		L3AddrLen: 128 / 8,
	}, opts...)
}

func newProtocol(name string, family sock.Family, si protocol.SockInfo, opts ...Option) *Protocol {
	var options options
	for _, opt := range opts {
		opt(&options)
	}
	if options.binder == nil {
		options.binder = listener.SockBinder()
	}
	if options.querier == nil {
		options.querier = sock.NativeQuerier()
	}
	log := options.logger
	if log == nil {
		log = logger.Default()
	}
	log = log.WithFields(map[string]any{
		"kind":     "protocol",
		"protocol": name,
	})

	return &Protocol{
		Descriptor: protocol.NewDescriptor(name, family, si, log),
		binder:     options.binder,
		querier:    options.querier,
	}
}

// Register adds the udp4 and udp6 transports to reg, in this order.
func Register(reg *registry.Protocols, opts ...Option) error {
	for _, p := range []*Protocol{NewUDP4(opts...), NewUDP6(opts...)} {
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Name(), err)
		}
	}
	return nil
}
