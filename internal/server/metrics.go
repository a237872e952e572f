package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neoshare_connections_total",
		Help: "Accepted connections by classification",
	}, []string{"kind"})

	gaugeConnsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neoshare_connections_active",
		Help: "Connections currently open",
	})

	metricHandshakeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_handshake_failures_total",
		Help: "WebSocket upgrades that failed",
	})
)
