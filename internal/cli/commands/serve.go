package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fleetstack-labs/fleetwatch/internal/config"
	"github.com/fleetstack-labs/fleetwatch/internal/fraud"
	"github.com/fleetstack-labs/fleetwatch/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring API server",
		Long: `Starts the HTTP API server for the fleet dashboard.

Serves fleet CRUD endpoints, alert management, KPI summaries, and the
fraud scan trigger. Fraud thresholds are reloaded from the config file
while the server runs; edit the file and the next scan picks them up.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handles, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer handles.Close()

			if err := handles.SQLite.Migrate(); err != nil {
				return err
			}

			engine := fraud.NewEngine(handles.Store, cfg.Fraud, logger)

			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			srv := server.NewServer(server.Config{
				Store:           handles.Store,
				Engine:          engine,
				Port:            cfg.Server.Port,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				Logger:          logger,
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Serve(ctx)
			})

			watchFile := cfgFile
			if watchFile == "" {
				watchFile = config.ConfigFileName
			}
			if _, statErr := os.Stat(watchFile); statErr == nil {
				g.Go(func() error {
					return config.Watch(ctx, watchFile, logger, func(next *config.Config) {
						engine.SetThresholds(next.Fraud)
						logger.Info("fraud thresholds reloaded")
					})
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8090, "Port to listen on")

	return cmd
}
