package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/internal/fraud"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a fraud scan and print new alerts",
		Long: `Runs every fraud rule against the completed trips in the active backend
and prints the alerts raised by this scan.

Alerts already raised by a previous scan are not duplicated; an empty
result means the fleet is clean since the last check.`,
		Example: `  # Scan and print a table of new alerts
  fleetwatch check

  # Machine-readable output
  fleetwatch check --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			handles, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer handles.Close()

			if err := handles.SQLite.Migrate(); err != nil {
				return err
			}

			engine := fraud.NewEngine(handles.Store, cfg.Fraud, logger)
			alerts, err := engine.Scan(ctx)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(alerts)
			}
			renderAlerts(cmd.OutOrStdout(), alerts)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json")

	return cmd
}

func renderAlerts(w io.Writer, alerts []fleet.Alert) {
	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(w, "No new alerts.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Severity", "Driver", "Trip", "Detail"})

	for _, a := range alerts {
		t.AppendRow(table.Row{a.Rule, a.Severity, a.DriverID, a.TripID, a.Details})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d new alerts)\n", len(alerts))
}
