package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Generation outcomes by origin and result (generated/skipped/failed)
	GenerationRuns *prometheus.CounterVec

	// Simulation model call latency
	SimulationLatency prometheus.Histogram
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		GenerationRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kingscanvas_generation_runs_total",
			Help: "Total number of opportunity generation runs by origin and result",
		}, []string{"origin", "result"}), // result: "generated", "skipped", "failed"

		SimulationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kingscanvas_simulation_request_duration_seconds",
			Help:    "Simulation model request latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60}, // LLM calls can take a while
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordGeneration bumps the generation outcome counter. Safe to call before
// InitMetrics (no-op), which keeps unit tests free of registry setup.
func RecordGeneration(origin, result string) {
	if globalMetrics == nil {
		return
	}
	globalMetrics.GenerationRuns.WithLabelValues(origin, result).Inc()
}

// ObserveSimulationLatency records one simulation round-trip duration.
func ObserveSimulationLatency(seconds float64) {
	if globalMetrics == nil {
		return
	}
	globalMetrics.SimulationLatency.Observe(seconds)
}
