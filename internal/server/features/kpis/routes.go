// Package kpis serves the dashboard summary endpoint.
package kpis

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// SetupRoutes registers the KPI feature routes.
func SetupRoutes(router chi.Router, store *query.Store, logger *slog.Logger) {
	h := NewHandlers(store, logger)
	router.Get("/api/kpis", h.Summary)
}
