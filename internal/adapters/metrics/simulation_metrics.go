package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SimulationMetricsCollector handles action and voyage metrics
type SimulationMetricsCollector struct {
	// Action metrics
	actionsTotal *prometheus.CounterVec

	// Voyage metrics
	voyagesTotal     *prometheus.CounterVec
	distanceSailed   prometheus.Counter
	fuelConsumed     prometheus.Counter
	voyageDistanceKm prometheus.Histogram
}

// NewSimulationMetricsCollector creates a new simulation metrics collector
func NewSimulationMetricsCollector() *SimulationMetricsCollector {
	return &SimulationMetricsCollector{
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "actions_total",
				Help:      "Total number of applied actions by type and outcome",
			},
			[]string{"action", "outcome"},
		),

		voyagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "voyages_total",
				Help:      "Total number of completed sails by origin and destination port",
			},
			[]string{"origin", "destination"},
		),

		distanceSailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "distance_sailed_km_total",
				Help:      "Total great-circle distance sailed in kilometers",
			},
		),

		fuelConsumed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fuel_consumed_total",
				Help:      "Total fuel burned by completed sails",
			},
		),

		voyageDistanceKm: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "voyage_distance_km",
				Help:      "Distribution of single-sail distances",
				Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
		),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.actionsTotal,
		c.voyagesTotal,
		c.distanceSailed,
		c.fuelConsumed,
		c.voyageDistanceKm,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordAction increments the action counter
func (c *SimulationMetricsCollector) RecordAction(actionType, outcome string) {
	c.actionsTotal.WithLabelValues(actionType, outcome).Inc()
}

// RecordVoyage records distance and fuel for a completed sail
func (c *SimulationMetricsCollector) RecordVoyage(originPortID, destinationPortID string, distanceKm, fuelUsed float64) {
	c.voyagesTotal.WithLabelValues(originPortID, destinationPortID).Inc()
	c.distanceSailed.Add(distanceKm)
	c.voyageDistanceKm.Observe(distanceKm)
	if fuelUsed > 0 {
		c.fuelConsumed.Add(fuelUsed)
	}
}
