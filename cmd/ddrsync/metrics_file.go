package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/ddrsync/pkg/metrics"
)

// writeMetrics dumps the pipeline registry in the text exposition format, for
// pickup by a node exporter textfile collector.
func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, metrics.GetRegistry()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
