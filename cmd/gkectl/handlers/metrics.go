package handlers

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsGatherer is the registry WriteMetrics reads.
var metricsGatherer prometheus.Gatherer = prometheus.DefaultGatherer

// WriteMetrics writes the process metrics to path in the node exporter
// textfile format. An empty path does nothing.
func WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, metricsGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
