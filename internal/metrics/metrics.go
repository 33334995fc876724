// Package metrics defines the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles every collector the server updates. One instance is built
// at startup and shared by the core and the transports.
type Metrics struct {
	registry *prometheus.Registry

	ConnectionsTotal  prometheus.Counter
	ConnectedClients  prometheus.Gauge
	RegisteredClients prometheus.Gauge
	Channels          prometheus.Gauge

	LinesIn        prometheus.Counter
	LinesOut       prometheus.Counter
	MessagesRouted prometheus.Counter

	SessionsClosed *prometheus.CounterVec
}

// New builds the collector set on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_connections_total",
			Help: "Total accepted connections.",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wirechat_connected_clients",
			Help: "Currently attached sessions.",
		}),
		RegisteredClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wirechat_registered_clients",
			Help: "Sessions that completed registration.",
		}),
		Channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wirechat_channels",
			Help: "Channels currently in existence.",
		}),
		LinesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_lines_in_total",
			Help: "Protocol lines received from clients.",
		}),
		LinesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_lines_out_total",
			Help: "Protocol lines enqueued to clients.",
		}),
		MessagesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_messages_routed_total",
			Help: "PRIVMSG/NOTICE and channel event fan-outs.",
		}),
		SessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wirechat_sessions_closed_total",
			Help: "Sessions torn down, by close reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ConnectionsTotal,
		m.ConnectedClients,
		m.RegisteredClients,
		m.Channels,
		m.LinesIn,
		m.LinesOut,
		m.MessagesRouted,
		m.SessionsClosed,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
