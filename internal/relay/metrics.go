package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gaugeRoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neoshare_rooms_active",
		Help: "Rooms with at least one occupied role",
	})

	gaugeSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neoshare_sessions_active",
		Help: "Connections currently registered in a room",
	})

	metricJoins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neoshare_joins_total",
		Help: "Join attempts by outcome (joined, missing_parameters, invalid_role, role_conflict)",
	}, []string{"outcome"})

	metricPairings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_pairings_total",
		Help: "Joins that completed a room",
	})

	metricForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neoshare_frames_forwarded_total",
		Help: "Frames delivered to the peer by kind",
	}, []string{"kind"})

	metricForwardedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_forwarded_bytes_total",
		Help: "Payload bytes delivered to peers",
	})

	metricPeerUnavailable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_peer_unavailable_total",
		Help: "Forwards dropped because the target role was empty",
	})

	metricSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_send_failures_total",
		Help: "Forwards whose send to the peer failed",
	})

	metricWritersDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_writers_discarded_total",
		Help: "Detached writers dropped because their owner left during the send",
	})

	metricWaitDiscards = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neoshare_wait_frames_discarded_total",
		Help: "Data frames dropped because the sender was not paired yet",
	})

	metricSendMS = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "neoshare_forward_send_ms",
		Help:    "Time spent sending one frame to the peer (ms)",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
	})
)

func joinOutcome(err error) string {
	switch err {
	case nil:
		return "joined"
	case ErrMissingJoinParameters:
		return "missing_parameters"
	case ErrInvalidRole:
		return "invalid_role"
	case ErrRoleConflict:
		return "role_conflict"
	default:
		return "error"
	}
}
