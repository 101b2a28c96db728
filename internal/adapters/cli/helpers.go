package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/portsim-go/internal/adapters/worldfile"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/config"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/database"
	"github.com/andrescamacho/portsim-go/internal/infrastructure/logging"
)

// loadConfig loads configuration honouring the --config flag
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openDatabase connects and migrates the configured database
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newCommandLogger returns the process logger, or a silent one unless
// --verbose is set
func newCommandLogger(cfg *config.Config) (common.Logger, func(), error) {
	if !verbose {
		return common.MultiLogger{}, func() {}, nil
	}
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { logger.Close() }, nil
}

// writeState prints a world state in the requested format
func writeState(w io.Writer, state types.WorldState, format string) error {
	f, err := worldfile.ParseFormat(format)
	if err != nil {
		return err
	}
	return worldfile.Encode(w, state, f)
}

// printReport renders a run report as a table followed by a summary
func printReport(w io.Writer, report simulation.Report) {
	fmt.Fprintf(w, "%-5s %-8s %-12s %-30s %-9s %s\n",
		"#", "ACTION", "SHIP", "TARGET", "OUTCOME", "DETAIL")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, r := range report.Results {
		fmt.Fprintf(w, "%-5d %-8s %-12s %-30s %-9s %s\n",
			r.Index, r.Action.Type, r.Action.ShipID, actionTarget(r.Action), r.Outcome(), resultDetail(r))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s: %d succeeded, %d rejected, %d failed in %s\n",
		report.RunID, report.Succeeded, report.Rejected, report.Failed, report.Duration.Round(time.Microsecond))
}

func actionTarget(a types.Action) string {
	switch a.Type {
	case types.ActionLoad, types.ActionUnload:
		return a.ContainerID
	case types.ActionSail:
		return a.PortID
	case types.ActionRefuel:
		return fmt.Sprintf("%.2f", a.Amount)
	default:
		return ""
	}
}

func resultDetail(r simulation.ActionResult) string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case !r.Success:
		return r.Reason
	case r.Response == nil:
		return ""
	case r.Response.Distance > 0:
		detail := fmt.Sprintf("%.2f km, fuel %.2f left", r.Response.Distance, r.Response.FuelAfter)
		if len(r.Response.Hops) > 0 {
			detail += " via " + strings.Join(r.Response.Hops, ", ")
		}
		return detail
	default:
		return fmt.Sprintf("fuel %.2f", r.Response.FuelAfter)
	}
}

// maskPassword hides the password part of a connection URL
func maskPassword(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 {
		return url
	}
	creds := url[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon != -1 {
		return url[:scheme+3] + creds[:colon] + ":****" + url[at:]
	}
	return url
}

// formatMetadata renders metadata as sorted key=value pairs
func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}
