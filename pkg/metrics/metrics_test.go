package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNopWithoutGlobal(t *testing.T) {
	SetGlobal(nil)
	if Listeners("udp4") != nilGauge || Binds("udp4", "ok") != nilCounter || BindSeconds("udp4") != nilObserver {
		t.Error("nop collectors expected without global metrics")
	}
	Listeners("udp4").Inc()
	AddrQueryErrors("udp4", "src").Inc()
}

func TestService(t *testing.T) {
	reg := prometheus.NewRegistry()
	SetGlobal(NewMetrics(reg))
	defer SetGlobal(nil)

	Listeners("udp4").Inc()
	Binds("udp4", "ok").Inc()

	s, err := NewService("127.0.0.1:0", GathererOption(reg))
	if err != nil {
		t.Skipf("loopback unavailable: %v", err)
	}
	defer s.Close()
	go s.Serve()

	resp, err := http.Get("http://" + s.Addr().String() + DefaultPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`dgram_protocol_listeners{`,
		`dgram_listener_binds_total{`,
		`result="ok"`,
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("metrics output lacks %q", want)
		}
	}
}
