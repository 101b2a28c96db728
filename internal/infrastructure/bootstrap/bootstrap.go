package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andrescamacho/portsim-go/internal/adapters/metrics"
	"github.com/andrescamacho/portsim-go/internal/adapters/persistence"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/config"
	"github.com/andrescamacho/portsim-go/pkg/utils"
)

// WorldOptions turns simulation settings into world build options
func WorldOptions(cfg config.SimulationConfig) (world.Options, error) {
	policy, err := navigation.ParseFuelPolicy(cfg.FuelPolicy)
	if err != nil {
		return world.Options{}, err
	}
	switch cfg.SailStrategy {
	case "", navigation.SailStrategyDirect, navigation.SailStrategyRefueling:
	default:
		return world.Options{}, fmt.Errorf("unknown sail strategy: %s", cfg.SailStrategy)
	}
	return world.Options{
		FuelPolicy:   policy,
		SailStrategy: navigation.NewSailStrategy(cfg.SailStrategy, cfg.MaxRefuelHops),
	}, nil
}

// InitMetrics creates the registry and registers every collector. The
// returned command collector feeds the mediator middleware.
func InitMetrics() (*metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()

	simulationCollector := metrics.NewSimulationMetricsCollector()
	if err := simulationCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register simulation metrics: %w", err)
	}
	metrics.SetGlobalSimulationCollector(simulationCollector)

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return commandCollector, nil
}

// ServeMetrics exposes the registry over HTTP in the background
func ServeMetrics(cfg config.MetricsConfig, logger common.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())

	addr := cfg.Addr()
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log(common.LevelWarn, "Metrics server exited", map[string]interface{}{"error": err.Error()})
		}
	}()

	logger.Log(common.LevelInfo, "Serving Prometheus metrics", map[string]interface{}{
		"addr": addr,
		"path": cfg.Path,
	})
	return srv
}

// ControllerDeps are the optional collaborators of every controller
type ControllerDeps struct {
	CommandMetrics *metrics.CommandMetricsCollector
	ActionLogs     persistence.ActionLogRepository
}

// NewControllerFactory returns a constructor for controllers sharing one
// configuration. Each controller gets its own run id and mediator.
func NewControllerFactory(cfg config.SimulationConfig, deps ControllerDeps) func(w *world.World) (*simulation.Controller, error) {
	return func(w *world.World) (*simulation.Controller, error) {
		mediator := common.NewMediator()
		if deps.CommandMetrics != nil {
			mediator.Use(metrics.PrometheusMiddleware(deps.CommandMetrics))
		}

		runID := utils.GenerateRunID()
		opts := []simulation.Option{
			simulation.WithMediator(mediator),
			simulation.WithRunID(runID),
			simulation.WithActionsPerSecond(cfg.ActionsPerSecond),
		}
		if deps.ActionLogs != nil {
			opts = append(opts, simulation.WithLogger(persistence.NewRunLogger(deps.ActionLogs, runID)))
		}
		return simulation.NewController(w, opts...)
	}
}

// Run applies a batch with the configured mode
func Run(ctx context.Context, controller *simulation.Controller, cfg config.SimulationConfig, actions []types.Action) simulation.Report {
	if cfg.Parallel {
		return controller.ApplyParallel(ctx, actions, cfg.Workers)
	}
	return controller.ApplyAll(ctx, actions)
}
