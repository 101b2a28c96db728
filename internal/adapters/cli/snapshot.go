package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portsim-go/internal/adapters/persistence"
	"github.com/andrescamacho/portsim-go/internal/adapters/worldfile"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/database"
)

// NewSnapshotCommand creates the snapshot command with subcommands
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Browse world snapshots stored in the database",
		Long: `Browse world snapshots saved by 'portsim run --save' or the daemon.

Examples:
  portsim snapshot list --limit 5
  portsim snapshot show latest --format yaml
  portsim snapshot export snapshot-1a2b3c4d resume.yaml`,
	}

	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotShowCommand())
	cmd.AddCommand(newSnapshotExportCommand())

	return cmd
}

// withSnapshots opens the database for the duration of fn
func withSnapshots(fn func(ctx context.Context, repo *persistence.GormSnapshotRepository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return fn(ctx, persistence.NewGormSnapshotRepository(db, nil))
}

// findSnapshot resolves an id or the word "latest"
func findSnapshot(ctx context.Context, repo *persistence.GormSnapshotRepository, id string) (*persistence.SnapshotRecord, error) {
	if strings.EqualFold(id, "latest") {
		return repo.Latest(ctx)
	}
	return repo.Get(ctx, id)
}

func newSnapshotListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(func(ctx context.Context, repo *persistence.GormSnapshotRepository) error {
				records, err := repo.List(ctx, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No snapshots found")
					return nil
				}

				fmt.Fprintf(out, "%-18s %-20s %-16s %5s %5s %10s  %s\n",
					"SNAPSHOT ID", "CREATED", "LABEL", "PORTS", "SHIPS", "CONTAINERS", "RUN")
				fmt.Fprintln(out, strings.Repeat("─", 100))
				for _, r := range records {
					fmt.Fprintf(out, "%-18s %-20s %-16s %5d %5d %10d  %s\n",
						r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Label,
						r.PortCount, r.ShipCount, r.ContainerCount, r.RunID)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots to list (0 = all)")
	return cmd
}

func newSnapshotShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <snapshot-id|latest>",
		Short: "Print a stored world state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(func(ctx context.Context, repo *persistence.GormSnapshotRepository) error {
				record, err := findSnapshot(ctx, repo, args[0])
				if err != nil {
					return err
				}
				return writeState(cmd.OutOrStdout(), record.State, format)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newSnapshotExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <snapshot-id|latest> <file>",
		Short: "Write a snapshot as a world file that 'portsim run' can resume from",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(func(ctx context.Context, repo *persistence.GormSnapshotRepository) error {
				record, err := findSnapshot(ctx, repo, args[0])
				if err != nil {
					return err
				}
				if err := worldfile.Save(args[1], record.State.Document()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Snapshot %s exported to %s\n", record.ID, args[1])
				return nil
			})
		},
	}
}

// NewLogsCommand prints the stored action log of a run
func NewLogsCommand() *cobra.Command {
	var (
		level string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "logs <run-id>",
		Short: "Show the stored action log of a run",
		Long: `Show the action log of a run stored with --persist-logs or
logging.persist_actions.

Examples:
  portsim logs 3f2a...
  portsim logs 3f2a... --level WARNING`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			var levelPtr *string
			if level != "" {
				upper := strings.ToUpper(level)
				levelPtr = &upper
			}

			repo := persistence.NewGormActionLogRepository(db, nil)
			entries, err := repo.GetLogs(context.Background(), args[0], limit, levelPtr)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No log entries found")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s [%-7s] %s%s\n",
					e.Timestamp.Format("15:04:05.000"), e.Level, e.Message, formatMetadata(e.Metadata))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Only show entries of this level (INFO, WARNING, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries (0 = all)")
	return cmd
}
