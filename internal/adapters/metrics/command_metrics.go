package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcome labels. A rejected command ran without error but reported
// that the world did not change.
const (
	commandSucceeded = "success"
	commandRejected  = "rejected"
	commandFailed    = "error"
)

// CommandMetricsCollector tracks mediator dispatches: latency and outcome per
// command type, plus how many are in flight (non-zero only in parallel runs)
type CommandMetricsCollector struct {
	commandDuration  *prometheus.HistogramVec
	commandsTotal    *prometheus.CounterVec
	commandsInFlight prometheus.Gauge
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Time spent in a command handler",
				// handlers are in-memory, so the interesting range is sub-millisecond
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"command", "outcome"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Commands dispatched through the mediator by type and outcome",
			},
			[]string{"command", "outcome"},
		),
		commandsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_in_flight",
				Help:      "Commands currently being handled",
			},
		),
	}
}

// Register adds the collector to Registry. No-op when metrics are disabled.
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}

	for _, metric := range []prometheus.Collector{c.commandDuration, c.commandsTotal, c.commandsInFlight} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *CommandMetricsCollector) started() {
	c.commandsInFlight.Inc()
}

// RecordCommand observes one finished command
func (c *CommandMetricsCollector) RecordCommand(commandName, outcome string, seconds float64) {
	c.commandsInFlight.Dec()
	c.commandDuration.WithLabelValues(commandName, outcome).Observe(seconds)
	c.commandsTotal.WithLabelValues(commandName, outcome).Inc()
}
