// Package router sets up HTTP routes for the API server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/internal/fraud"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/alerts"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/common"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/fleetapi"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/kpis"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/trips"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// SetupRoutes configures all routes for the API server.
func SetupRoutes(router chi.Router, store *query.Store, engine *fraud.Engine, logger *slog.Logger) {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		common.JSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"backend": store.Backend().String(),
		})
	})

	kpis.SetupRoutes(router, store, logger)
	fleetapi.SetupRoutes(router, store, logger)
	trips.SetupRoutes(router, store, logger)
	alerts.SetupRoutes(router, store, engine, logger)
}
