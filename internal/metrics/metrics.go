// Package metrics holds the Prometheus collectors shared by the client and
// the server. Labels distinguish the side doing the recording.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SideClient = "client"
	SideServer = "server"
)

var (
	invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "novavolt",
			Subsystem: "invocation",
			Name:      "total",
			Help:      "Procedure invocations by outcome status.",
		},
		[]string{"side", "procedure", "status"},
	)
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "novavolt",
			Subsystem: "invocation",
			Name:      "duration_seconds",
			Help:      "Invocation round trip (client) or handler time (server) in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"side", "procedure"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "novavolt",
			Subsystem: "wire",
			Name:      "protocol_errors_total",
			Help:      "Frames that could not be decoded or were dropped.",
		},
		[]string{"side"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{invocations, duration, protocolErrors}
}

// Register adds the collectors to reg. Registering twice on the same
// registry is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func RecordInvocation(side, procedure, status string, d time.Duration) {
	invocations.WithLabelValues(side, procedure, status).Inc()
	duration.WithLabelValues(side, procedure).Observe(d.Seconds())
}

func RecordProtocolError(side string) {
	protocolErrors.WithLabelValues(side).Inc()
}
