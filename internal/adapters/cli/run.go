package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portsim-go/internal/adapters/persistence"
	"github.com/andrescamacho/portsim-go/internal/adapters/worldfile"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/bootstrap"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/config"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/database"
)

type runOptions struct {
	fuelPolicy  string
	strategy    string
	maxHops     int
	parallel    bool
	workers     int
	pace        float64
	outPath     string
	stateFormat string
	save        bool
	label       string
	persistLogs bool
	quiet       bool
	strict      bool
}

// applyOverrides copies flags the user actually set onto the config
func (o *runOptions) applyOverrides(cmd *cobra.Command, cfg *config.SimulationConfig) {
	flags := cmd.Flags()
	if flags.Changed("fuel-policy") {
		cfg.FuelPolicy = o.fuelPolicy
	}
	if flags.Changed("strategy") {
		cfg.SailStrategy = o.strategy
	}
	if flags.Changed("max-hops") {
		cfg.MaxRefuelHops = o.maxHops
	}
	if flags.Changed("parallel") {
		cfg.Parallel = o.parallel
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("pace") {
		cfg.ActionsPerSecond = o.pace
	}
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <world-file>",
		Short: "Apply the actions of a world file and report the outcome",
		Long: `Load a world (ports, containers, ships and actions) from a JSON or YAML
file, apply every action in order and print one line per action.

Rejected actions (capacity, fuel) and failed actions (unknown
ship, port or container) never stop the run.

Examples:
  portsim run world.yaml
  portsim run world.yaml --parallel --workers 8
  portsim run world.yaml --strategy refueling --fuel-policy cargo_weighted
  portsim run world.yaml --out final.yaml --save --label nightly`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorld(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.fuelPolicy, "fuel-policy", "", "Fuel policy: ship_only or cargo_weighted")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Sail strategy: direct or refueling")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops", 0, "Maximum refuelling stops for the refueling strategy")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Run ships concurrently")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Worker pool size for --parallel")
	cmd.Flags().Float64Var(&opts.pace, "pace", 0, "Actions per second (0 = unpaced)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write the final world (no actions) to this .json/.yaml file")
	cmd.Flags().StringVar(&opts.stateFormat, "state", "", "Print the final state as json or yaml")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the final state as a snapshot in the database")
	cmd.Flags().StringVar(&opts.label, "label", "", "Label for the stored snapshot")
	cmd.Flags().BoolVar(&opts.persistLogs, "persist-logs", false, "Store action logs in the database")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the summary line")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error if any action failed")

	return cmd
}

func runWorld(cmd *cobra.Command, path string, opts *runOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts.applyOverrides(cmd, &cfg.Simulation)
	if err := config.NewValidator().Validate(&cfg.Simulation); err != nil {
		return err
	}

	doc, err := worldfile.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fuel-policy") {
		doc.FuelPolicy = ""
	}
	worldOpts, err := bootstrap.WorldOptions(cfg.Simulation)
	if err != nil {
		return err
	}
	w, err := world.BuildWorld(doc, worldOpts)
	if err != nil {
		return fmt.Errorf("invalid world: %w", err)
	}

	var (
		deps      bootstrap.ControllerDeps
		snapshots *persistence.GormSnapshotRepository
	)
	if opts.save || opts.persistLogs || cfg.Logging.PersistActions {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		snapshots = persistence.NewGormSnapshotRepository(db, nil)
		if opts.persistLogs || cfg.Logging.PersistActions {
			deps.ActionLogs = persistence.NewGormActionLogRepository(db, nil)
		}
	}

	controller, err := bootstrap.NewControllerFactory(cfg.Simulation, deps)(w)
	if err != nil {
		return err
	}

	logger, closeLogger, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, logger)

	report := bootstrap.Run(ctx, controller, cfg.Simulation, doc.Actions)

	out := cmd.OutOrStdout()
	if opts.quiet {
		fmt.Fprintf(out, "Run %s: %d succeeded, %d rejected, %d failed\n",
			report.RunID, report.Succeeded, report.Rejected, report.Failed)
	} else {
		printReport(out, report)
	}

	state, err := controller.Snapshot(ctx)
	if err != nil {
		return err
	}

	if opts.stateFormat != "" {
		fmt.Fprintln(out)
		if err := writeState(out, state, opts.stateFormat); err != nil {
			return err
		}
	}

	if opts.outPath != "" {
		if err := worldfile.Save(opts.outPath, state.Document()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Final world written to %s\n", opts.outPath)
	}

	if opts.save {
		record, err := snapshots.Save(ctx, report.RunID, opts.label, state)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Snapshot saved: %s\n", record.ID)
	}

	if opts.strict && report.Failed > 0 {
		return fmt.Errorf("%d action(s) failed", report.Failed)
	}
	return nil
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <world-file>",
		Short: "Check that a world file builds without applying actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := worldfile.Load(args[0])
			if err != nil {
				return err
			}
			w, err := world.BuildWorld(doc, world.Options{})
			if err != nil {
				return fmt.Errorf("invalid world: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d ports, %d ships, %d containers, %d actions\n",
				args[0], len(w.Ports()), len(w.Ships()), w.ContainerCount(), len(doc.Actions))
			return nil
		},
	}
}

// NewPresetsCommand lists the built-in ship capacity presets
func NewPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List ship capacity presets usable as preset: in world files",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %10s %5s %5s %5s %5s %5s %8s %10s\n",
				"PRESET", "WEIGHT", "ALL", "BASIC", "HEAVY", "REFR", "LIQ", "FUEL/KM", "TANK")

			for _, name := range navigation.PresetNames() {
				c, _ := navigation.PresetConfig(name)
				fmt.Fprintf(out, "%-8s %10.0f %5d %5d %5d %5d %5d %8.2f %10.0f\n",
					name, c.TotalWeightCapacity, c.MaxAllContainers, c.MaxBasicContainers,
					c.MaxHeavyContainers, c.MaxRefrigeratedContainers, c.MaxLiquidContainers,
					c.FuelConsumptionPerKm, c.MaxFuelCapacity)
			}
			return nil
		},
	}
}
