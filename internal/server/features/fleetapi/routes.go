// Package fleetapi serves the driver and vehicle endpoints.
package fleetapi

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// SetupRoutes registers the fleet feature routes.
func SetupRoutes(router chi.Router, store *query.Store, logger *slog.Logger) {
	h := NewHandlers(store, logger)

	router.Route("/api/drivers", func(r chi.Router) {
		r.Get("/", h.ListDrivers)
		r.Post("/", h.CreateDriver)
		r.Patch("/{id}", h.UpdateDriver)
		r.Delete("/{id}", h.DeleteDriver)
	})

	router.Route("/api/vehicles", func(r chi.Router) {
		r.Get("/", h.ListVehicles)
		r.Post("/", h.CreateVehicle)
		r.Patch("/{id}", h.UpdateVehicle)
		r.Delete("/{id}", h.DeleteVehicle)
	})
}
