package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all metrics
	namespace = "portsim"
	// Subsystem for simulation metrics
	subsystem = "simulation"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSimulationCollector is the singleton simulation metrics collector
	// Set by SetGlobalSimulationCollector() when metrics are enabled
	globalSimulationCollector SimulationMetricsRecorder
)

// SimulationMetricsRecorder defines the interface for recording simulation events
// This interface is used by application code to record metrics
type SimulationMetricsRecorder interface {
	RecordAction(actionType, outcome string)
	RecordVoyage(originPortID, destinationPortID string, distanceKm, fuelUsed float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Handler exposes the registry on an HTTP handler, or a 404 handler when
// metrics are disabled
func Handler() http.Handler {
	if Registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetGlobalSimulationCollector sets the global simulation metrics collector
func SetGlobalSimulationCollector(collector SimulationMetricsRecorder) {
	globalSimulationCollector = collector
}

// RecordAction records an applied action globally
func RecordAction(actionType, outcome string) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordAction(actionType, outcome)
	}
}

// RecordVoyage records a completed sail globally
func RecordVoyage(originPortID, destinationPortID string, distanceKm, fuelUsed float64) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordVoyage(originPortID, destinationPortID, distanceKm, fuelUsed)
	}
}
