// Package trips serves the trip and fuel log endpoints.
package trips

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// SetupRoutes registers the trips feature routes.
func SetupRoutes(router chi.Router, store *query.Store, logger *slog.Logger) {
	h := NewHandlers(store, logger)

	router.Route("/api/trips", func(r chi.Router) {
		r.Get("/", h.ListTrips)
		r.Post("/", h.CreateTrip)
	})
	router.Route("/api/fuel-logs", func(r chi.Router) {
		r.Get("/", h.ListFuelLogs)
		r.Post("/", h.CreateFuelLog)
	})
}
