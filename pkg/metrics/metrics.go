package metrics

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metrics *Metrics
)

func SetGlobal(m *Metrics) {
	metrics = m
}

type Gauge interface {
	Inc()
	Dec()
	Add(float64)
	Set(float64)
}

type Counter interface {
	Inc()
	Add(float64)
}

type Observer interface {
	Observe(float64)
}

type Metrics struct {
	host            string
	listeners       *prometheus.GaugeVec
	readyListeners  *prometheus.GaugeVec
	binds           *prometheus.CounterVec
	bindSeconds     *prometheus.HistogramVec
	addrQueryErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them to reg, the default
// prometheus registerer when nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	host, _ := os.Hostname()
	m := &Metrics{
		host: host,
		listeners: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dgram_protocol_listeners",
				Help: "Current number of listeners attached to a transport",
			},
			[]string{"host", "protocol"}),
		readyListeners: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dgram_protocol_listeners_ready",
				Help: "Current number of bound listeners handed over to the event loop",
			},
			[]string{"host", "protocol"}),
		binds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dgram_listener_binds_total",
				Help: "Total number of listener bind attempts by result",
			},
			[]string{"host", "protocol", "result"}),
		bindSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dgram_listener_bind_duration_seconds",
				Help: "Distribution of listener bind latencies",
				Buckets: []float64{
					.0001, .0005, .001, .005, .01, .05, .1, .5, 1,
				},
			},
			[]string{"host", "protocol"}),
		addrQueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dgram_address_query_errors_total",
				Help: "Total socket address queries that failed",
			},
			[]string{"host", "protocol", "query"}),
	}
	reg.MustRegister(m.listeners)
	reg.MustRegister(m.readyListeners)
	reg.MustRegister(m.binds)
	reg.MustRegister(m.bindSeconds)
	reg.MustRegister(m.addrQueryErrors)
	return m
}

func Listeners(protocol string) Gauge {
	if metrics == nil || metrics.listeners == nil {
		return nilGauge
	}
	return metrics.listeners.
		With(prometheus.Labels{
			"host":     metrics.host,
			"protocol": protocol,
		})
}

func ReadyListeners(protocol string) Gauge {
	if metrics == nil || metrics.readyListeners == nil {
		return nilGauge
	}
	return metrics.readyListeners.
		With(prometheus.Labels{
			"host":     metrics.host,
			"protocol": protocol,
		})
}

func Binds(protocol, result string) Counter {
	if metrics == nil || metrics.binds == nil {
		return nilCounter
	}
	return metrics.binds.
		With(prometheus.Labels{
			"host":     metrics.host,
			"protocol": protocol,
			"result":   result,
		})
}

func BindSeconds(protocol string) Observer {
	if metrics == nil || metrics.bindSeconds == nil {
		return nilObserver
	}
	return metrics.bindSeconds.
		With(prometheus.Labels{
			"host":     metrics.host,
			"protocol": protocol,
		})
}

func AddrQueryErrors(protocol, query string) Counter {
	if metrics == nil || metrics.addrQueryErrors == nil {
		return nilCounter
	}
	return metrics.addrQueryErrors.
		With(prometheus.Labels{
			"host":     metrics.host,
			"protocol": protocol,
			"query":    query,
		})
}
