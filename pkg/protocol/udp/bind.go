package udp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-gost/dgram/pkg/frontend"
	"github.com/go-gost/dgram/pkg/handler"
	"github.com/go-gost/dgram/pkg/handler/syslog"
	"github.com/go-gost/dgram/pkg/listener"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/metrics"
	"github.com/go-gost/dgram/pkg/outcome"
	xmd "github.com/go-gost/x/metadata"
	"go.uber.org/multierr"
)

var (
	errUnsupportedMode = errors.New("UDP is not yet supported on this proxy mode")
)

// Bind binds the socket of an assigned listener. Listeners in other states
// are considered already bound and yield outcome.None. When msg has room, it
// receives the message explaining a failure.
func (p *Protocol) Bind(l *listener.Listener, msg *outcome.Buffer) outcome.Code {
	msg.Reset()

	if l.State != listener.StateAssigned {
		return outcome.None
	}

	var code outcome.Code
	var text string

	h, err := p.handler(l)
	if err != nil {
		code, text = outcome.Fatal|outcome.Alert, err.Error()
	} else {
		var threads listener.ThreadMask
		if l.BindConf != nil {
			threads = l.BindConf.Threads
		}

		start := time.Now()
		code, text = p.binder.Bind(&l.RX, h, threads)
		metrics.BindSeconds(p.Name()).Observe(time.Since(start).Seconds())

		if code != outcome.None {
			msg.Printf("%s", text)
			p.report(l, code, text)
			return code
		}
		l.State = listener.StateListen
	}

	if text != "" && msg.Enabled() {
		msg.Printf("%s [%s]", text, addrString(l.RX.Addr, p.Sock().L3AddrLen))
	}
	p.report(l, code, text)
	return code
}

// BindAll binds the listeners in attachment order and combines their
// outcomes. It stops right after an outcome carrying outcome.Abort and goes
// on after any other failure.
func (p *Protocol) BindAll(msg *outcome.Buffer) outcome.Code {
	p.errs = nil

	code := outcome.None
	for _, l := range p.Listeners() {
		code |= p.Bind(l, msg)
		if code.Has(outcome.Abort) {
			p.Logger().Warnf("bind aborted after %s", addrString(l.RX.Addr, p.Sock().L3AddrLen))
			break
		}
	}
	return code
}

// Errors returns the failures of the last BindAll, one per listener.
func (p *Protocol) Errors() []error {
	return multierr.Errors(p.errs)
}

// handler returns the datagram handler serving the frontend mode of l.
func (p *Protocol) handler(l *listener.Listener) (handler.Handler, error) {
	fe := l.Frontend()
	if fe == nil || fe.Mode != frontend.ModeSyslog {
		return nil, errUnsupportedMode
	}

	h := syslog.NewHandler(handler.LoggerOption(p.listenerLogger(l).WithFields(map[string]any{
		"kind":    "handler",
		"handler": "syslog",
	})))
	md := l.Metadata
	if md == nil {
		md = xmd.NewMetadata(nil)
	}
	if err := h.Init(md); err != nil {
		return nil, fmt.Errorf("cannot initialize handler (%v)", err)
	}
	return h, nil
}

func (p *Protocol) report(l *listener.Listener, code outcome.Code, text string) {
	metrics.Binds(p.Name(), result(code)).Inc()
	if code == outcome.None {
		p.listenerLogger(l).Debugf("bound on %s", addrString(l.RX.Addr, p.Sock().L3AddrLen))
		return
	}

	addr := addrString(l.RX.Addr, p.Sock().L3AddrLen)
	p.errs = multierr.Append(p.errs, &outcome.Error{
		Code: code,
		Msg:  text,
		Addr: addr,
	})

	log := p.listenerLogger(l).WithFields(map[string]any{
		"protocol": p.Name(),
		"addr":     addr,
		"outcome":  code.String(),
	})
	switch {
	case code.Has(outcome.Alert), code.Failed():
		log.Error(text)
	case code.Has(outcome.Warn):
		log.Warn(text)
	}
}

// listenerLogger returns the logger of l, the transport logger when l has
// none.
func (p *Protocol) listenerLogger(l *listener.Listener) logger.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return p.Logger()
}

func result(code outcome.Code) string {
	switch {
	case code.Has(outcome.Abort):
		return "abort"
	case code.Has(outcome.Fatal):
		return "fatal"
	case code.Has(outcome.Retryable):
		return "retryable"
	case code.Has(outcome.Warn):
		return "warn"
	default:
		return "ok"
	}
}

// addrString renders an address as "<ip>:<port>", the unspecified address
// of the family standing for a missing IP.
func addrString(addr *net.UDPAddr, l3len int) string {
	if addr == nil {
		return ""
	}
	ip := addr.IP
	if len(ip) == 0 {
		if l3len == net.IPv6len {
			ip = net.IPv6unspecified
		} else {
			ip = net.IPv4zero
		}
	}
	return ip.String() + ":" + strconv.Itoa(addr.Port)
}
