// Package alerts serves the fraud alert endpoints.
package alerts

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/internal/fraud"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// SetupRoutes registers the alerts feature routes.
func SetupRoutes(router chi.Router, store *query.Store, engine *fraud.Engine, logger *slog.Logger) {
	h := NewHandlers(store, engine, logger)

	router.Route("/api/alerts", func(r chi.Router) {
		r.Get("/", h.ListAlerts)
		r.Post("/scan", h.Scan)
		r.Patch("/{id}", h.UpdateAlert)
	})
}
