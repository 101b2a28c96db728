package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect portsim configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PORTSIM_* prefix, e.g. PORTSIM_SIMULATION_FUEL_POLICY)
2. Config file (config.yaml or --config)
3. Default values

Example:
  portsim config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "portsim Configuration")
			fmt.Fprintln(out, "=====================")

			fmt.Fprintln(out, "\nSimulation:")
			fmt.Fprintf(out, "  Fuel Policy:      %s\n", cfg.Simulation.FuelPolicy)
			fmt.Fprintf(out, "  Sail Strategy:    %s\n", cfg.Simulation.SailStrategy)
			fmt.Fprintf(out, "  Max Refuel Hops:  %d\n", cfg.Simulation.MaxRefuelHops)
			fmt.Fprintf(out, "  Parallel:         %t (workers: %d)\n", cfg.Simulation.Parallel, cfg.Simulation.Workers)
			if cfg.Simulation.ActionsPerSecond > 0 {
				fmt.Fprintf(out, "  Pace:             %.2f actions/s\n", cfg.Simulation.ActionsPerSecond)
			} else {
				fmt.Fprintf(out, "  Pace:             unpaced\n")
			}

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nDaemon:")
			fmt.Fprintf(out, "  Socket Path:      %s\n", cfg.Daemon.SocketPath)
			fmt.Fprintf(out, "  PID File:         %s\n", cfg.Daemon.PIDFile)
			if cfg.Daemon.WorldFile != "" {
				fmt.Fprintf(out, "  World File:       %s\n", cfg.Daemon.WorldFile)
			}
			fmt.Fprintf(out, "  Auto Snapshot:    %t\n", cfg.Daemon.AutoSnapshot)

			fmt.Fprintln(out, "\nMetrics:")
			fmt.Fprintf(out, "  Enabled:          %t\n", cfg.Metrics.Enabled)
			fmt.Fprintf(out, "  Endpoint:         %s%s\n", cfg.Metrics.Addr(), cfg.Metrics.Path)

			fmt.Fprintln(out, "\nTracing:")
			fmt.Fprintf(out, "  Enabled:          %t\n", cfg.Tracing.Enabled)
			if cfg.Tracing.Enabled {
				fmt.Fprintf(out, "  Exporter:         %s\n", cfg.Tracing.Exporter)
				fmt.Fprintf(out, "  Sample Ratio:     %.2f\n", cfg.Tracing.SampleRatio)
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)
			fmt.Fprintf(out, "  Persist Actions:  %t\n", cfg.Logging.PersistActions)

			return nil
		},
	}
}
