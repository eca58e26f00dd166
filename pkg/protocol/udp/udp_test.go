package udp

import (
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/go-gost/dgram/pkg/frontend"
	"github.com/go-gost/dgram/pkg/handler"
	"github.com/go-gost/dgram/pkg/listener"
	"github.com/go-gost/dgram/pkg/logger"
	"github.com/go-gost/dgram/pkg/outcome"
	"github.com/go-gost/dgram/pkg/registry"
	"github.com/go-gost/dgram/pkg/sock"
)

type bindResult struct {
	code outcome.Code
	msg  string
}

type fakeBinder struct {
	results []bindResult
	calls   []*listener.Receiver
	threads []listener.ThreadMask
}

func (b *fakeBinder) Bind(rx *listener.Receiver, h handler.Handler, threads listener.ThreadMask) (outcome.Code, string) {
	i := len(b.calls)
	b.calls = append(b.calls, rx)
	b.threads = append(b.threads, threads)
	if i < len(b.results) {
		return b.results[i].code, b.results[i].msg
	}
	rx.Handler = h
	return outcome.None, ""
}

type fakeQuerier struct {
	sa  syscall.Sockaddr
	err error
	dir []sock.Direction
}

func (q *fakeQuerier) Src(fd uintptr, dir sock.Direction) (syscall.Sockaddr, error) {
	q.dir = append(q.dir, dir)
	return q.sa, q.err
}

func (q *fakeQuerier) Dst(fd uintptr, dir sock.Direction) (syscall.Sockaddr, error) {
	q.dir = append(q.dir, dir)
	return q.sa, q.err
}

type fakeRawConn struct{}

func (fakeRawConn) Control(f func(fd uintptr)) error { f(3); return nil }
func (fakeRawConn) Read(f func(fd uintptr) bool) error { return nil }
func (fakeRawConn) Write(f func(fd uintptr) bool) error { return nil }

type fakeConn struct{}

func (fakeConn) SyscallConn() (syscall.RawConn, error) { return fakeRawConn{}, nil }

func syslogFrontend() *frontend.Frontend {
	return &frontend.Frontend{Name: "logs", Mode: frontend.ModeSyslog}
}

func newListener(ip string, fe *frontend.Frontend) *listener.Listener {
	return listener.NewListener(
		listener.AddrOption(&net.UDPAddr{IP: net.ParseIP(ip)}),
		listener.BindConfOption(&listener.BindConf{Threads: 0x3, Frontend: fe}),
	)
}

func newTestUDP4(b listener.Binder) *Protocol {
	return NewUDP4(BinderOption(b), LoggerOption(logger.Nop()))
}

func TestDescriptors(t *testing.T) {
	v4, v6 := NewUDP4(), NewUDP6()

	if v4.Name() != "udp4" || v4.Family() != sock.FamilyUDP4 {
		t.Errorf("udp4 descriptor: %s %v", v4.Name(), v4.Family())
	}
	if si := v4.Sock(); si.Family != sock.AFInet || si.Type != syscall.SOCK_DGRAM ||
		si.Proto != syscall.IPPROTO_UDP || si.AddrLen != 16 || si.L3AddrLen != 4 {
		t.Errorf("udp4 sock info: %+v", si)
	}

	if v6.Name() != "udp6" || v6.Family() != sock.FamilyUDP6 {
		t.Errorf("udp6 descriptor: %s %v", v6.Name(), v6.Family())
	}
	if si := v6.Sock(); si.Family != sock.AFInet6 || si.AddrLen != 28 || si.L3AddrLen != 16 {
		t.Errorf("udp6 sock info: %+v", si)
	}
}

func TestRegister(t *testing.T) {
	reg := registry.NewProtocols()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	if p := reg.Lookup(sock.FamilyUDP4); p == nil || p.Name() != "udp4" {
		t.Errorf("udp4 lookup: %v", p)
	}
	if p := reg.Lookup(sock.FamilyUDP6); p == nil || p.Name() != "udp6" {
		t.Errorf("udp6 lookup: %v", p)
	}

	if err := Register(reg); !errors.Is(err, registry.ErrDup) {
		t.Errorf("second registration: got %v, want %v", err, registry.ErrDup)
	}

	reg2 := registry.NewProtocols()
	reg2.Seal()
	if err := Register(reg2); !errors.Is(err, registry.ErrSealed) {
		t.Errorf("sealed registration: got %v, want %v", err, registry.ErrSealed)
	}
}

func TestAdd(t *testing.T) {
	p := newTestUDP4(&fakeBinder{})
	other := NewUDP6()
	l := newListener("127.0.0.1", syslogFrontend())

	p.Add(l, 514)

	if l.State != listener.StateAssigned {
		t.Errorf("state = %v, want %v", l.State, listener.StateAssigned)
	}
	if l.RX.Addr.Port != 514 || l.RX.Family != sock.FamilyUDP4 {
		t.Errorf("receiver = %+v", l.RX)
	}
	if p.Count() != 1 || p.Listeners()[0] != l || other.Count() != 0 {
		t.Errorf("listener set: %d/%d", p.Count(), other.Count())
	}
}

func TestAddNotInit(t *testing.T) {
	for _, state := range []listener.State{listener.StateAssigned, listener.StateListen, listener.StateReady} {
		p := newTestUDP4(&fakeBinder{})
		l := newListener("127.0.0.1", syslogFrontend())
		l.State = state
		l.RX.Addr.Port = 1000

		p.Add(l, 2000)

		if l.State != state || l.RX.Addr.Port != 1000 || p.Count() != 0 || len(p.Listeners()) != 0 {
			t.Errorf("%v: listener mutated by Add", state)
		}
		if l.RX.Family != 0 {
			t.Errorf("%v: family set to %v", state, l.RX.Family)
		}
	}
}

func TestAddTwice(t *testing.T) {
	p := newTestUDP4(&fakeBinder{})
	l := newListener("0.0.0.0", syslogFrontend())

	p.Add(l, 53)
	p.Add(l, 5353)

	if l.RX.Addr.Port != 53 {
		t.Errorf("port = %d, want 53", l.RX.Addr.Port)
	}
	if l.State != listener.StateAssigned || p.Count() != 1 {
		t.Errorf("state = %v, count = %d", l.State, p.Count())
	}
}

func TestAddWithoutAddr(t *testing.T) {
	p := newTestUDP4(&fakeBinder{})
	l := listener.NewListener()
	p.Add(l, 514)
	if l.RX.Addr == nil || l.RX.Addr.Port != 514 {
		t.Errorf("receiver address = %v", l.RX.Addr)
	}
}

func TestBindNotAssigned(t *testing.T) {
	for _, state := range []listener.State{listener.StateInit, listener.StateListen, listener.StateReady} {
		b := &fakeBinder{}
		p := newTestUDP4(b)
		l := newListener("127.0.0.1", &frontend.Frontend{Mode: frontend.ModeHTTP})
		l.State = state

		msg := outcome.NewBuffer(64)
		msg.Printf("stale")
		if code := p.Bind(l, msg); code != outcome.None {
			t.Errorf("%v: code = %v", state, code)
		}
		if l.State != state || len(b.calls) != 0 {
			t.Errorf("%v: bind had side effects", state)
		}
		if msg.String() != "" {
			t.Errorf("%v: message not cleared: %q", state, msg.String())
		}
	}
}

func TestBind(t *testing.T) {
	b := &fakeBinder{}
	p := newTestUDP4(b)
	l := newListener("127.0.0.1", syslogFrontend())
	p.Add(l, 514)

	msg := outcome.NewBuffer(64)
	if code := p.Bind(l, msg); code != outcome.None {
		t.Fatalf("code = %v", code)
	}
	if l.State != listener.StateListen || msg.String() != "" {
		t.Errorf("state = %v, msg = %q", l.State, msg.String())
	}
	if len(b.calls) != 1 || b.calls[0] != &l.RX || b.threads[0] != 0x3 {
		t.Errorf("binder not called with the listener receiver and threads")
	}
	if l.RX.Handler == nil {
		t.Error("no handler handed to the binder")
	}

	// binding is idempotent per listener.
	if code := p.Bind(l, msg); code != outcome.None || len(b.calls) != 1 {
		t.Errorf("second bind: code = %v, calls = %d", code, len(b.calls))
	}
}

func TestBindFailure(t *testing.T) {
	b := &fakeBinder{results: []bindResult{
		{outcome.Retryable | outcome.Alert, "cannot bind socket (address already in use)"},
	}}
	p := newTestUDP4(b)
	l := newListener("127.0.0.1", syslogFrontend())
	p.Add(l, 514)

	msg := outcome.NewBuffer(128)
	code := p.BindAll(msg)
	if code != outcome.Retryable|outcome.Alert {
		t.Errorf("code = %v", code)
	}
	if l.State != listener.StateAssigned {
		t.Errorf("state = %v", l.State)
	}
	if msg.String() != "cannot bind socket (address already in use)" {
		t.Errorf("msg = %q", msg.String())
	}

	errs := p.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	var oe *outcome.Error
	if !errors.As(errs[0], &oe) || oe.Addr != "127.0.0.1:514" || oe.Code != code {
		t.Errorf("error = %#v", errs[0])
	}
}

func TestBindUnsupportedMode(t *testing.T) {
	for _, fe := range []*frontend.Frontend{nil, {Name: "web", Mode: frontend.ModeHTTP}} {
		b := &fakeBinder{}
		p := newTestUDP4(b)
		l := newListener("192.0.2.7", fe)
		p.Add(l, 8080)

		msg := outcome.NewBuffer(256)
		code := p.Bind(l, msg)
		if code != outcome.Fatal|outcome.Alert {
			t.Errorf("code = %v", code)
		}
		if msg.String() != "UDP is not yet supported on this proxy mode [192.0.2.7:8080]" {
			t.Errorf("msg = %q", msg.String())
		}
		if len(b.calls) != 0 || l.State != listener.StateAssigned {
			t.Error("bind attempted for an unsupported mode")
		}
	}
}

func TestBindWithoutMessageBuffer(t *testing.T) {
	for _, msg := range []*outcome.Buffer{nil, outcome.NewBuffer(0)} {
		p := newTestUDP4(&fakeBinder{})
		l := newListener("192.0.2.7", &frontend.Frontend{Mode: frontend.ModeTCP})
		p.Add(l, 9)

		if code := p.Bind(l, msg); code != outcome.Fatal|outcome.Alert {
			t.Errorf("code = %v", code)
		}
		if msg.String() != "" {
			t.Errorf("msg = %q", msg.String())
		}
	}
}

func TestBindMessageTruncated(t *testing.T) {
	p := newTestUDP4(&fakeBinder{})
	l := newListener("192.0.2.7", nil)
	p.Add(l, 9)

	msg := outcome.NewBuffer(11)
	p.Bind(l, msg)
	if msg.String() != "UDP is not" {
		t.Errorf("msg = %q", msg.String())
	}
}

func TestBindAllAbort(t *testing.T) {
	b := &fakeBinder{results: []bindResult{
		{outcome.None, ""},
		{outcome.Retryable | outcome.Alert, "cannot bind socket"},
		{outcome.Abort | outcome.Alert, "cannot create receiving socket"},
		{outcome.None, ""},
	}}
	p := newTestUDP4(b)

	var ls []*listener.Listener
	for i := 0; i < 4; i++ {
		l := newListener("127.0.0.1", syslogFrontend())
		p.Add(l, 1000+i)
		ls = append(ls, l)
	}

	code := p.BindAll(outcome.NewBuffer(64))
	if want := outcome.Retryable | outcome.Abort | outcome.Alert; code != want {
		t.Errorf("code = %v, want %v", code, want)
	}
	if len(b.calls) != 3 {
		t.Errorf("binder called %d times, want 3", len(b.calls))
	}
	if ls[0].State != listener.StateListen {
		t.Errorf("first listener state = %v", ls[0].State)
	}
	for _, l := range ls[1:] {
		if l.State != listener.StateAssigned {
			t.Errorf("listener %v state = %v", l.RX.Addr, l.State)
		}
	}
	if len(p.Errors()) != 2 {
		t.Errorf("errors = %v", p.Errors())
	}
}

func TestBindAllContinuesAfterFailures(t *testing.T) {
	b := &fakeBinder{results: []bindResult{
		{outcome.Retryable | outcome.Alert, "cannot bind socket"},
		{outcome.None, ""},
	}}
	p := newTestUDP4(b)

	web := newListener("192.0.2.1", &frontend.Frontend{Mode: frontend.ModeHTTP})
	a := newListener("192.0.2.2", syslogFrontend())
	c := newListener("192.0.2.3", syslogFrontend())
	p.Add(web, 80)
	p.Add(a, 514)
	p.Add(c, 515)

	code := p.BindAll(outcome.NewBuffer(128))
	if want := outcome.Fatal | outcome.Retryable | outcome.Alert; code != want {
		t.Errorf("code = %v, want %v", code, want)
	}
	if len(b.calls) != 2 || c.State != listener.StateListen {
		t.Errorf("later listeners not bound: calls = %d, state = %v", len(b.calls), c.State)
	}
}

func TestBindAllScenario(t *testing.T) {
	b := &fakeBinder{}
	p := newTestUDP4(b)

	a := newListener("192.0.2.1", syslogFrontend())
	bl := newListener("192.0.2.2", &frontend.Frontend{Name: "web", Mode: frontend.ModeHTTP})
	p.Add(a, 514)
	p.Add(bl, 5140)

	msg := outcome.NewBuffer(256)
	code := p.BindAll(msg)

	if code != outcome.Fatal|outcome.Alert {
		t.Errorf("code = %v", code)
	}
	if a.State != listener.StateListen {
		t.Errorf("A state = %v", a.State)
	}
	if bl.State != listener.StateAssigned {
		t.Errorf("B state = %v", bl.State)
	}
	if msg.String() != "UDP is not yet supported on this proxy mode [192.0.2.2:5140]" {
		t.Errorf("msg = %q", msg.String())
	}
}

func TestPause(t *testing.T) {
	p := NewUDP6()
	for _, state := range []listener.State{listener.StateInit, listener.StateAssigned, listener.StateListen, listener.StateReady} {
		l := listener.NewListener()
		l.State = state
		if ret := p.Pause(l); ret >= 0 {
			t.Errorf("%v: Pause() = %d", state, ret)
		}
	}
}

func TestAddressTagging(t *testing.T) {
	v4 := &syscall.SockaddrInet4{Port: 514, Addr: [4]byte{10, 0, 0, 1}}
	v6 := &syscall.SockaddrInet6{Port: 514}
	copy(v6.Addr[:], net.ParseIP("2001:db8::1"))

	cases := []struct {
		name string
		p    *Protocol
		sa   syscall.Sockaddr
	}{
		{"udp4 native v4", NewUDP4(QuerierOption(&fakeQuerier{sa: v4})), v4},
		{"udp6 native v6", NewUDP6(QuerierOption(&fakeQuerier{sa: v6})), v6},
		{"udp6 native v4", NewUDP6(QuerierOption(&fakeQuerier{sa: v4})), v4},
		{"udp4 native v6", NewUDP4(QuerierOption(&fakeQuerier{sa: v6})), v6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, dir := range []sock.Direction{sock.DirListener, sock.DirInitiator, 7} {
				src, err := tc.p.Src(fakeConn{}, dir)
				if err != nil {
					t.Fatal(err)
				}
				dst, err := tc.p.Dst(fakeConn{}, dir)
				if err != nil {
					t.Fatal(err)
				}
				for _, a := range []*sock.Addr{src, dst} {
					if a.Family != tc.p.Family() {
						t.Errorf("family = %v, want %v", a.Family, tc.p.Family())
					}
					if a.Port != 514 {
						t.Errorf("port = %d", a.Port)
					}
				}
			}
		})
	}
}

func TestAddressQueryDirection(t *testing.T) {
	q := &fakeQuerier{sa: &syscall.SockaddrInet4{Port: 1}}
	p := NewUDP4(QuerierOption(q))

	p.Src(fakeConn{}, sock.DirListener)
	p.Dst(fakeConn{}, sock.DirInitiator)
	if len(q.dir) != 2 || q.dir[0] != sock.DirListener || q.dir[1] != sock.DirInitiator {
		t.Errorf("directions = %v", q.dir)
	}
}

func TestAddressQueryFailure(t *testing.T) {
	errQuery := errors.New("getpeername: transport endpoint is not connected")
	p := NewUDP6(QuerierOption(&fakeQuerier{err: errQuery}))

	if a, err := p.Src(fakeConn{}, sock.DirListener); a != nil || err != errQuery {
		t.Errorf("Src() = %v, %v", a, err)
	}
	if a, err := p.Dst(fakeConn{}, sock.DirListener); a != nil || err != errQuery {
		t.Errorf("Dst() = %v, %v", a, err)
	}

	p = NewUDP6(QuerierOption(&fakeQuerier{sa: &syscall.SockaddrUnix{Name: "x"}}))
	if _, err := p.Src(fakeConn{}, sock.DirListener); err != sock.ErrAddrFamily {
		t.Errorf("unix sockaddr: %v", err)
	}
}

func TestAddrEqual(t *testing.T) {
	v4, v6 := NewUDP4(), NewUDP6()

	a := &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 514}
	b := &sock.Addr{Family: sock.FamilyUDP4, IP: net.IPv4(192, 0, 2, 1).To4(), Port: 514}
	c := &net.UDPAddr{IP: net.ParseIP("2001:db8::1"), Port: 514}
	d := &sock.Addr{Family: sock.FamilyUDP6, IP: net.ParseIP("2001:db8::1"), Port: 514}

	cases := []struct {
		p    *Protocol
		a, b net.Addr
		want bool
	}{
		{v4, a, b, true},
		{v4, a, &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 515}, false},
		{v4, a, &net.UDPAddr{IP: net.IPv4(192, 0, 2, 2), Port: 514}, false},
		{v4, c, d, false},
		{v4, a, &sock.Addr{Family: sock.FamilyUDP6, IP: net.IPv4(192, 0, 2, 1), Port: 514}, false},
		{v4, a, &net.TCPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 514}, false},
		{v6, c, d, true},
		{v6, a, b, false},
		{v6, c, &net.UDPAddr{IP: net.ParseIP("2001:db8::2"), Port: 514}, false},
	}

	for i, tc := range cases {
		if got := tc.p.AddrEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("#%d %s: AddrEqual(%v, %v) = %v, want %v", i, tc.p.Name(), tc.a, tc.b, got, tc.want)
		}
	}
}

func TestBindLoopback(t *testing.T) {
	p := NewUDP4(LoggerOption(logger.Nop()))
	l := newListener("127.0.0.1", syslogFrontend())
	p.Add(l, 0)

	msg := outcome.NewBuffer(256)
	if code := p.BindAll(msg); code != outcome.None {
		t.Skipf("loopback bind failed: %v %s", code, msg)
	}
	defer p.UnbindAll()

	if l.State != listener.StateListen {
		t.Fatalf("state = %v", l.State)
	}

	conn, ok := l.RX.Conn.(syscall.Conn)
	if !ok {
		t.Fatalf("%T is not a syscall.Conn", l.RX.Conn)
	}
	dst, err := p.Dst(conn, sock.DirListener)
	if err != nil {
		t.Fatal(err)
	}
	if dst.Family != sock.FamilyUDP4 || dst.Port != l.RX.Conn.LocalAddr().(*net.UDPAddr).Port {
		t.Errorf("dst = %v (%v)", dst, dst.Family)
	}

	p.EnableAll()
	if l.State != listener.StateReady {
		t.Errorf("state after EnableAll = %v", l.State)
	}
	p.UnbindAll()
	if l.State != listener.StateAssigned || l.RX.Bound() {
		t.Errorf("state after UnbindAll = %v", l.State)
	}
}

func TestBindListenerWithoutLogger(t *testing.T) {
	p := newTestUDP4(&fakeBinder{})

	l := &listener.Listener{RX: listener.Receiver{Addr: &net.UDPAddr{IP: net.IPv4(192, 0, 2, 9)}}}
	p.Add(l, 514)

	msg := outcome.NewBuffer(256)
	if code := p.Bind(l, msg); code != outcome.Fatal|outcome.Alert {
		t.Errorf("code = %v", code)
	}
	if msg.String() != "UDP is not yet supported on this proxy mode [192.0.2.9:514]" {
		t.Errorf("msg = %q", msg.String())
	}

	// never attached: the transport logger serves the listener.
	detached := &listener.Listener{
		State:    listener.StateAssigned,
		RX:       listener.Receiver{Addr: &net.UDPAddr{IP: net.IPv4(192, 0, 2, 10), Port: 514}},
		BindConf: &listener.BindConf{Frontend: syslogFrontend()},
	}
	if code := p.Bind(detached, msg); code != outcome.None || detached.State != listener.StateListen {
		t.Errorf("code = %v, state = %v", code, detached.State)
	}
}
