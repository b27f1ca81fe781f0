// Package metrics holds the relay's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "utter_relay_connections_active",
			Help: "Open WebSocket connections",
		},
	)

	DevicesRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "utter_relay_devices_registered",
			Help: "Devices currently in the directory",
		},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utter_relay_registrations_total",
			Help: "Registration attempts",
		},
		[]string{"result"}, // "ok", "superseded", "rejected"
	)

	KeepaliveTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "utter_relay_keepalive_timeouts_total",
			Help: "Sessions torn down after a missed pong",
		},
	)

	// Routing metrics
	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utter_relay_messages_routed_total",
			Help: "Encrypted envelopes routed",
		},
		[]string{"result"}, // "delivered", "recipient_unavailable", "dropped"
	)

	EnvelopeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "utter_relay_envelope_bytes",
			Help:    "Ciphertext size of routed envelopes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	ProtocolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utter_relay_protocol_errors_total",
			Help: "Error frames sent to clients",
		},
		[]string{"code"},
	)

	SendDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "utter_relay_send_drops_total",
			Help: "Frames dropped because a session's send buffer was full or closed",
		},
	)
)
