package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Socket session metrics
	SessionConnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netops_socket_connects_total",
			Help: "Socket session connect attempts",
		},
		[]string{"result"}, // ok, handshake_rejected, transport_error, malformed_endpoint, connect_error
	)

	SessionConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netops_socket_connected",
			Help: "1 while a socket session is open",
		},
	)

	// Envelope metrics
	EnvelopesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netops_envelopes_received_total",
			Help: "Envelopes decoded from the socket, by kind",
		},
		[]string{"kind"},
	)

	DecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netops_envelope_decode_errors_total",
			Help: "Frames dropped because they could not be decoded",
		},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netops_dispatch_duration_seconds",
			Help:    "Time spent handling one envelope, including its response",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
		[]string{"kind"},
	)

	// Command metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netops_commands_total",
			Help: "Slash commands by name and outcome",
		},
		[]string{"command", "outcome"}, // ack, deferred, unknown, error
	)

	// Response delivery metrics
	ResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netops_responses_total",
			Help: "Responses delivered by channel and status",
		},
		[]string{"channel", "status"}, // channel: socket, callback
	)
)
