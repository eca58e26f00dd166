package parsing

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	mdutil "github.com/go-gost/x/metadata/util"
	"github.com/go-gost/dgram/pkg/config"
	"github.com/go-gost/dgram/pkg/frontend"
	"github.com/go-gost/dgram/pkg/listener"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/registry"
	"github.com/go-gost/dgram/pkg/sock"
	xmd "github.com/go-gost/x/metadata"
	"go.uber.org/multierr"
)

var (
	ErrInvalidAddr = errors.New("invalid bind address")
	ErrNoTransport = errors.New("no transport for address family")
)

// ParseFrontends registers the configured frontends and attaches one
// listener per bind line to the transport of its address family. Binds are
// parsed independently: the returned error gathers every rejected line, the
// returned listeners are those successfully attached.
func ParseFrontends(cfg *config.Config, protos *registry.Protocols) ([]*listener.Listener, error) {
	if cfg == nil {
		return nil, nil
	}

	var listeners []*listener.Listener
	var errs error
	for _, fc := range cfg.Frontends {
		fe, err := ParseFrontend(fc)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := registry.FrontendRegistry().Register(fe.Name, fe); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("frontend %s: %w", fe.Name, err))
			continue
		}

		for _, bc := range fc.Binds {
			ln, err := ParseBind(bc, fe, protos)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("frontend %s: %w", fe.Name, err))
				continue
			}
			listeners = append(listeners, ln)
		}
	}
	return listeners, errs
}

func ParseFrontend(cfg *config.FrontendConfig) (*frontend.Frontend, error) {
	if cfg == nil || cfg.Name == "" {
		return nil, errors.New("frontend: missing name")
	}
	mode, err := frontend.ParseMode(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("frontend %s: %w: %q", cfg.Name, err, cfg.Mode)
	}
	return &frontend.Frontend{
		Name: cfg.Name,
		Mode: mode,
	}, nil
}

// ParseBind creates the listener of a bind line and adds it to the
// transport matching its address family.
func ParseBind(cfg *config.BindConfig, fe *frontend.Frontend, protos *registry.Protocols) (*listener.Listener, error) {
	if cfg == nil {
		return nil, ErrInvalidAddr
	}

	family, addr, err := ParseBindAddr(cfg.Addr)
	if err != nil {
		return nil, err
	}
	p := protos.Lookup(family)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTransport, cfg.Addr)
	}

	threads, err := listener.ParseThreadMask(cfg.Threads)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.Addr, err)
	}

	md := xmd.NewMetadata(cfg.Metadata)
	opts := sock.BindOptions{
		ReusePort:   mdutil.GetBool(md, "reuseport"),
		Transparent: mdutil.GetBool(md, "transparent"),
		ReadBuffer:  mdutil.GetInt(md, "readBuffer"),
		WriteBuffer: mdutil.GetInt(md, "writeBuffer"),
		Namespace:   cfg.Namespace,
	}

	ln := listener.NewListener(
		listener.NameOption(cfg.Addr),
		listener.AddrOption(&net.UDPAddr{IP: addr.IP, Zone: addr.Zone}),
		listener.BindConfOption(&listener.BindConf{
			Threads:  threads,
			Frontend: fe,
		}),
		listener.BindOptionsOption(opts),
		listener.MetadataOption(md),
		listener.LoggerOption(logger.Default().WithFields(map[string]any{
			"kind":     "listener",
			"frontend": fe.Name,
			"listener": cfg.Addr,
		})),
	)
	p.Add(ln, addr.Port)
	return ln, nil
}

// ParseBindAddr splits an optional udp4@, udp6@ or udp@ prefix from a bind
// address. Without a prefix, or with udp@, the family follows the IP
// version of the host, IPv4 for an empty host.
func ParseBindAddr(s string) (sock.Family, *net.UDPAddr, error) {
	family := sock.AFUnspec
	if prefix, rest, ok := strings.Cut(s, "@"); ok {
		switch prefix {
		case "udp4":
			family = sock.FamilyUDP4
		case "udp6":
			family = sock.FamilyUDP6
		case "udp":
		default:
			return 0, nil, fmt.Errorf("%w: unknown prefix %q", ErrInvalidAddr, prefix)
		}
		s = rest
	}

	host, sport, err := net.SplitHostPort(s)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddr, err)
	}
	port, err := strconv.Atoi(sport)
	if err != nil || port < 0 || port > 0xffff {
		return 0, nil, fmt.Errorf("%w: invalid port %q", ErrInvalidAddr, sport)
	}

	addr := &net.UDPAddr{Port: port}
	if host != "" {
		host, addr.Zone, _ = strings.Cut(host, "%")
		if addr.IP = net.ParseIP(host); addr.IP == nil {
			network := "udp"
			if family.Logical() {
				network = family.Network()
			}
			ua, err := net.ResolveUDPAddr(network, net.JoinHostPort(host, sport))
			if err != nil {
				return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddr, err)
			}
			addr.IP, addr.Zone = ua.IP, ua.Zone
		}
	}

	v4 := addr.IP == nil || addr.IP.To4() != nil
	switch family {
	case sock.FamilyUDP4:
		if !v4 {
			return 0, nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidAddr, host)
		}
	case sock.FamilyUDP6:
		if addr.IP != nil && v4 {
			return 0, nil, fmt.Errorf("%w: %s is not an IPv6 address", ErrInvalidAddr, host)
		}
	default:
		family = sock.FamilyUDP6
		if v4 {
			family = sock.FamilyUDP4
		}
	}
	return family, addr, nil
}
