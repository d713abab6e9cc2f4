package provisioning

import "github.com/prometheus/client_golang/prometheus"

// Compensation outcome labels.
const (
	compensationAttempted = "attempted"
	compensationFailed    = "failed"
)

var (
	operationsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gkectl",
			Subsystem: "provisioning",
			Name:      "operations_submitted_total",
			Help:      "Total number of mutating requests accepted by the provider by resource kind",
		},
		[]string{"kind"},
	)

	compensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gkectl",
			Subsystem: "provisioning",
			Name:      "compensations_total",
			Help:      "Total number of rollback steps by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(operationsSubmitted, compensationsTotal)
}
