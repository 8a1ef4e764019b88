package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fleetstack-labs/fleetwatch/pkg/backends/sqlite"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the local database",
		Long: `Creates or upgrades the local embedded database schema.

The remote backend is a managed service whose schema is provisioned
out of band; migrate only touches the local file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := filepath.Dir(cfg.Local.Path)
			if dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return fmt.Errorf("create data dir: %w", err)
				}
			}

			t, err := sqlite.Open(cfg.Local.Path, logger)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			if err := t.Migrate(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s\n", cfg.Local.Path)
			return nil
		},
	}
}
