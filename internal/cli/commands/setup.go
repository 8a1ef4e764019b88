package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fleetstack-labs/fleetwatch/internal/config"
	"github.com/fleetstack-labs/fleetwatch/pkg/backends/postgres"
	"github.com/fleetstack-labs/fleetwatch/pkg/backends/sqlite"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

var (
	cfg     *config.Config
	cfgFile string
	logger  *slog.Logger
)

// Setup injects the loaded configuration and logger into the command
// package. Called from the root command's PersistentPreRunE before any
// subcommand runs.
func Setup(c *config.Config, file string, l *slog.Logger) {
	cfg = c
	cfgFile = file
	logger = l
}

// storeHandles bundles the query store with the concrete translators so
// commands can close the underlying connections.
type storeHandles struct {
	Store  *query.Store
	SQLite *sqlite.Translator
	PG     *postgres.Translator
}

func (h *storeHandles) Close() {
	if h.SQLite != nil {
		_ = h.SQLite.Close()
	}
	if h.PG != nil {
		_ = h.PG.Close()
	}
}

// openStore opens the local translator, the remote translator when
// configured, and wires both into a query.Store for the active backend.
func openStore(ctx context.Context) (*storeHandles, error) {
	localDir := filepath.Dir(cfg.Local.Path)
	if localDir != "." && localDir != "" {
		if err := os.MkdirAll(localDir, 0750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	local, err := sqlite.Open(cfg.Local.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	h := &storeHandles{SQLite: local}

	// Assigning a nil *postgres.Translator into the interface would make
	// it non-nil, so only assign when a connection actually exists.
	var remote query.Translator
	if cfg.Remote.Configured() {
		pg, err := postgres.Open(ctx, postgres.Config{
			Host:     cfg.Remote.Host,
			Port:     cfg.Remote.Port,
			Database: cfg.Remote.Database,
			User:     cfg.Remote.User,
			Password: cfg.Remote.Password,
			SSLMode:  cfg.Remote.SSLMode,
		}, logger)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("open remote database: %w", err)
		}
		h.PG = pg
		remote = pg
	}

	h.Store = query.NewStore(cfg.Backend(), remote, local, logger)
	return h, nil
}
