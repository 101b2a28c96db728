package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portsim-go/internal/adapters/grpc"
	"github.com/andrescamacho/portsim-go/internal/adapters/worldfile"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/pidfile"
)

// NewDaemonCommand creates the daemon command with subcommands
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Talk to a running portsim-daemon",
		Long: `Control a long-running simulation daemon over its Unix socket.
Start the daemon with the portsim-daemon binary.

Examples:
  portsim daemon status
  portsim daemon load world.yaml
  portsim daemon apply actions.yaml --parallel
  portsim daemon snapshot --format yaml
  portsim daemon save --label checkpoint
  portsim daemon restore latest`,
	}

	cmd.AddCommand(newDaemonStatusCommand())
	cmd.AddCommand(newDaemonStopCommand())
	cmd.AddCommand(newDaemonLoadCommand())
	cmd.AddCommand(newDaemonApplyCommand())
	cmd.AddCommand(newDaemonSnapshotCommand())
	cmd.AddCommand(newDaemonSaveCommand())
	cmd.AddCommand(newDaemonRestoreCommand())

	return cmd
}

// withDaemon connects to the socket for the duration of fn
func withDaemon(fn func(ctx context.Context, client *grpc.DaemonClient) error) error {
	client, err := grpc.NewDaemonClient(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return fn(ctx, client)
}

func newDaemonStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			pid, err := pidfile.New(cfg.Daemon.PIDFile).Running()
			if errors.Is(err, pidfile.ErrNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Daemon is running (PID %d)\n", pid)
			fmt.Fprintf(out, "  Socket: %s\n", socketPath)
			return nil
		},
	}
}

func newDaemonStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down gracefully",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pid, err := pidfile.New(cfg.Daemon.PIDFile).Stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Sent SIGTERM to daemon (PID %d)\n", pid)
			return nil
		},
	}
}

func newDaemonLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <world-file>",
		Short: "Replace the daemon's world with a world file (actions are ignored)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := worldfile.Load(args[0])
			if err != nil {
				return err
			}
			doc.Actions = nil

			return withDaemon(func(ctx context.Context, client *grpc.DaemonClient) error {
				state, err := client.LoadWorld(ctx, doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ World loaded: %d ports, %d ships\n", len(state.Ports), len(state.Ships))
				return nil
			})
		},
	}
}

func newDaemonApplyCommand() *cobra.Command {
	var parallel bool

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Apply the actions listed in a world or actions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := worldfile.Load(args[0])
			if err != nil {
				return err
			}
			if len(doc.Actions) == 0 {
				return fmt.Errorf("%s contains no actions", args[0])
			}

			return withDaemon(func(ctx context.Context, client *grpc.DaemonClient) error {
				reply, err := client.Apply(ctx, doc.Actions, parallel)
				if err != nil {
					return err
				}
				printApplyReply(cmd, reply)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run ships concurrently on the daemon")
	return cmd
}

func printApplyReply(cmd *cobra.Command, reply *grpc.ApplyReply) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-5s %-8s %-12s %-9s %s\n", "#", "ACTION", "SHIP", "OUTCOME", "DETAIL")
	for _, r := range reply.Results {
		detail := r.Reason
		if r.Error != "" {
			detail = r.Error
		} else if r.Distance > 0 {
			detail = fmt.Sprintf("%.2f km, fuel %.2f left", r.Distance, r.FuelAfter)
		}
		fmt.Fprintf(out, "%-5d %-8s %-12s %-9s %s\n", r.Index, r.Type, r.ShipID, r.Outcome, detail)
	}
	fmt.Fprintf(out, "\nRun %s: %d succeeded, %d rejected, %d failed\n",
		reply.RunID, reply.Succeeded, reply.Rejected, reply.Failed)
}

func newDaemonSnapshotCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the daemon's current world state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(func(ctx context.Context, client *grpc.DaemonClient) error {
				state, err := client.Snapshot(ctx)
				if err != nil {
					return err
				}
				return writeState(cmd.OutOrStdout(), *state, format)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newDaemonSaveCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist the daemon's current world as a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(func(ctx context.Context, client *grpc.DaemonClient) error {
				reply, err := client.SaveSnapshot(ctx, label)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Snapshot saved: %s\n", reply.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Label for the snapshot")
	return cmd
}

func newDaemonRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [snapshot-id|latest]",
		Short: "Load a stored snapshot into the daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 && args[0] != "latest" {
				id = args[0]
			}
			return withDaemon(func(ctx context.Context, client *grpc.DaemonClient) error {
				state, err := client.RestoreSnapshot(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Snapshot restored: %d ports, %d ships\n", len(state.Ports), len(state.Ships))
				return nil
			})
		},
	}
}
