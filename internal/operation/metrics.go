package operation

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels.
const (
	outcomeDone       = "done"
	outcomeFailed     = "failed"
	outcomeFetchError = "fetch_error"
	outcomeCanceled   = "canceled"
)

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gkectl",
			Subsystem: "operation",
			Name:      "fetch_total",
			Help:      "Total number of operation status fetches by handle kind",
		},
		[]string{"kind"},
	)

	waitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gkectl",
			Subsystem: "operation",
			Name:      "wait_total",
			Help:      "Total number of operation waits by outcome",
		},
		[]string{"outcome"},
	)

	waitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gkectl",
			Subsystem: "operation",
			Name:      "wait_duration_seconds",
			Help:      "Time spent waiting for operations to reach a terminal state",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, waitTotal, waitDuration)
}

func recordWait(outcome string, seconds float64) {
	waitTotal.WithLabelValues(outcome).Inc()
	waitDuration.WithLabelValues(outcome).Observe(seconds)
}

func handleKind(h Handle) string {
	switch h.(type) {
	case *PollHandle:
		return "poll"
	case *EventHandle:
		return "event"
	default:
		return "other"
	}
}
