package registry

import (
	"github.com/go-gost/dgram/pkg/protocol"
	"github.com/go-gost/dgram/pkg/sock"
)

// Protocols is the table of transports known to the process. It is filled
// during initialization, then sealed; transports are never removed.
type Protocols struct {
	names    Registry[protocol.Protocol]
	families map[sock.Family]protocol.Protocol
	order    []protocol.Protocol
	sealed   bool
}

func NewProtocols() *Protocols {
	return &Protocols{
		names:    NewRegistry[protocol.Protocol](),
		families: make(map[sock.Family]protocol.Protocol),
	}
}

// Register adds a transport. It fails once the registry is sealed, or when
// the name or the logical family is already taken.
func (r *Protocols) Register(p protocol.Protocol) error {
	if r.sealed {
		return ErrSealed
	}
	if p == nil || p.Name() == "" {
		return ErrNil
	}
	if _, ok := r.families[p.Family()]; ok {
		return ErrDup
	}
	if err := r.names.Register(p.Name(), p); err != nil {
		return err
	}

	r.families[p.Family()] = p
	r.order = append(r.order, p)
	return nil
}

// Seal ends the registration phase.
func (r *Protocols) Seal() {
	r.sealed = true
}

func (r *Protocols) Sealed() bool {
	return r.sealed
}

// Lookup returns the transport owning a logical family, nil if none.
func (r *Protocols) Lookup(f sock.Family) protocol.Protocol {
	return r.families[f]
}

func (r *Protocols) Get(name string) protocol.Protocol {
	return r.names.Get(name)
}

// All returns the transports in registration order.
func (r *Protocols) All() []protocol.Protocol {
	return append([]protocol.Protocol(nil), r.order...)
}
