package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrescamacho/portsim-go/internal/adapters/grpc"
	"github.com/andrescamacho/portsim-go/internal/adapters/persistence"
	"github.com/andrescamacho/portsim-go/internal/adapters/worldfile"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/bootstrap"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/config"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/database"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/logging"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/tracing"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	worldPath := flag.String("world", "", "World file to load at startup (overrides daemon.world_file)")
	forceFlag := flag.Bool("force", false, "Stop any existing daemon and start a new one")
	flag.Parse()

	cfg := config.MustLoadConfig(*configPath)
	if *worldPath != "" {
		cfg.Daemon.WorldFile = *worldPath
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	// Single instance per PID file
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to stop the existing daemon", err)
		}
		logger.Log(common.LevelWarn, "Force mode enabled, stopping existing daemon", nil)
		if _, stopErr := pf.Stop(); stopErr != nil {
			log.Fatalf("Failed to stop existing daemon: %v", stopErr)
		}
		time.Sleep(cfg.Daemon.ShutdownTimeout / 2)
		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after stopping existing daemon: %v", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Log(common.LevelWarn, "Failed to release PID file", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := run(cfg, logger); err != nil {
		logger.Log(common.LevelError, "Daemon stopped with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger common.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	logger.Log(common.LevelInfo, "Database connected", map[string]interface{}{"type": cfg.Database.Type})

	snapshots := persistence.NewGormSnapshotRepository(db, nil)
	deps := bootstrap.ControllerDeps{}
	if cfg.Logging.PersistActions {
		deps.ActionLogs = persistence.NewGormActionLogRepository(db, nil)
	}

	// 2. Metrics
	if cfg.Metrics.Enabled {
		commandMetrics, err := bootstrap.InitMetrics()
		if err != nil {
			return err
		}
		deps.CommandMetrics = commandMetrics

		srv := bootstrap.ServeMetrics(cfg.Metrics, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer tracing.Shutdown(shutdownTracing, logger)

	// 4. Simulation
	worldOpts, err := bootstrap.WorldOptions(cfg.Simulation)
	if err != nil {
		return err
	}
	newController := bootstrap.NewControllerFactory(cfg.Simulation, deps)

	var controller *simulation.Controller
	if cfg.Daemon.WorldFile != "" {
		doc, err := worldfile.Load(cfg.Daemon.WorldFile)
		if err != nil {
			return err
		}
		w, err := world.BuildWorld(doc, worldOpts)
		if err != nil {
			return fmt.Errorf("invalid world %s: %w", cfg.Daemon.WorldFile, err)
		}
		controller, err = newController(w)
		if err != nil {
			return err
		}
		logger.Log(common.LevelInfo, "World loaded", map[string]interface{}{
			"file":   cfg.Daemon.WorldFile,
			"run_id": controller.RunID(),
		})
	}

	service := grpc.NewSimulationService(controller, grpc.ServiceOptions{
		WorldOptions:  worldOpts,
		NewController: newController,
		Snapshots:     snapshots,
		Logger:        logger,
		Workers:       cfg.Simulation.Workers,
		Parallel:      cfg.Simulation.Parallel,
		AutoSnapshot:  cfg.Daemon.AutoSnapshot,
	})

	// 5. Serve until signalled
	server, err := grpc.NewDaemonServer(service, cfg.Daemon.SocketPath, cfg.Daemon.ShutdownTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}
	return server.Start(ctx)
}
