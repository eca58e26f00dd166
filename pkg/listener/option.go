package listener

import (
	"net"

	"github.com/go-gost/core/metadata"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/sock"
)

type Options struct {
	Name        string
	Addr        *net.UDPAddr
	BindConf    *BindConf
	BindOptions sock.BindOptions
	Metadata    metadata.Metadata
	Logger      logger.Logger
}

type Option func(opts *Options)

func NameOption(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

func AddrOption(addr *net.UDPAddr) Option {
	return func(opts *Options) {
		opts.Addr = addr
	}
}

func BindConfOption(bc *BindConf) Option {
	return func(opts *Options) {
		opts.BindConf = bc
	}
}

func BindOptionsOption(bo sock.BindOptions) Option {
	return func(opts *Options) {
		opts.BindOptions = bo
	}
}

func MetadataOption(md metadata.Metadata) Option {
	return func(opts *Options) {
		opts.Metadata = md
	}
}

func LoggerOption(logger logger.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}
