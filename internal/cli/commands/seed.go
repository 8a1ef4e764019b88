package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// seedTables maps CSV base names to the tables they feed. Files outside
// this set are skipped so stray CSVs in the directory do not break seeding.
var seedTables = map[string]string{
	"drivers":   fleet.TableDrivers,
	"vehicles":  fleet.TableVehicles,
	"trips":     fleet.TableTrips,
	"fuel_logs": fleet.TableFuelLogs,
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var seedsDir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fleet data from CSV files",
		Long: `Load drivers, vehicles, trips, and fuel logs from CSV files into the
active backend.

Each CSV is named after its table (drivers.csv, vehicles.csv, trips.csv,
fuel_logs.csv) with a header row of column names. Numeric-looking values
are inserted as numbers, everything else as text.`,
		Example: `  # Load all CSVs from ./seeds
  fleetwatch seed

  # Load from a specific directory into the local backend
  fleetwatch seed --seeds-dir ./testdata/fleet --local`,
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

			entries, err := os.ReadDir(seedsDir)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "No seeds directory at %s\n", seedsDir)
					return nil
				}
				return err
			}

			loaded := 0
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || !strings.HasSuffix(name, ".csv") {
					continue
				}
				table, ok := seedTables[strings.TrimSuffix(name, ".csv")]
				if !ok {
					logger.Warn("skipping unrecognized seed file", "file", name)
					continue
				}

				rows, err := readSeedCSV(filepath.Join(seedsDir, name))
				if err != nil {
					return fmt.Errorf("seed %s: %w", name, err)
				}
				if len(rows) == 0 {
					continue
				}

				if _, err := handles.Store.Insert(ctx, table, rows); err != nil {
					return fmt.Errorf("seed %s: %w", name, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s\n", len(rows), table)
				loaded++
			}

			if loaded == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No seed files found in %s\n", seedsDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&seedsDir, "seeds-dir", "seeds", "Directory containing seed CSV files")

	return cmd
}

// readSeedCSV parses a CSV file with a header row into records, coercing
// numeric-looking cells so they land in numeric columns correctly.
func readSeedCSV(path string) ([]query.Record, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user's seeds directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []query.Record
	for {
		cells, err := reader.Read()
		if err != nil {
			break
		}
		rec := make(query.Record, len(headers))
		for i, h := range headers {
			if i >= len(cells) {
				break
			}
			rec[strings.TrimSpace(h)] = coerceCell(cells[i])
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func coerceCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
