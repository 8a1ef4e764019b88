package kpis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/pkg/backends/sqlite"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

func setupAPI(t *testing.T) (*chi.Mux, *query.Store) {
	t.Helper()
	tr, err := sqlite.Open(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, tr.Migrate())
	t.Cleanup(func() { _ = tr.Close() })

	store := query.NewStore(query.BackendLocal, nil, tr, nil)
	router := chi.NewRouter()
	SetupRoutes(router, store, nil)
	return router, store
}

func TestSummary(t *testing.T) {
	router, store := setupAPI(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, fleet.TableDrivers, []query.Record{
		{"name": "Ada", "license_no": "L1", "status": "active", "risk_score": int64(10)},
		{"name": "Lin", "license_no": "L2", "status": "active", "risk_score": int64(30)},
		{"name": "Bob", "license_no": "L3", "status": "suspended", "risk_score": int64(80)},
	})
	require.NoError(t, err)

	_, err = store.Insert(ctx, fleet.TableVehicles, []query.Record{
		{"plate": "FW-001", "status": "active"},
		{"plate": "FW-002", "status": "maintenance"},
	})
	require.NoError(t, err)

	_, err = store.Insert(ctx, fleet.TableTrips, []query.Record{
		{"driver_id": int64(1), "vehicle_id": int64(1), "started_at": "2026-03-10T09:00:00Z"},
		{"driver_id": int64(2), "vehicle_id": int64(1), "started_at": "2026-03-11T09:00:00Z"},
	})
	require.NoError(t, err)

	_, err = store.Insert(ctx, fleet.TableAlerts, []query.Record{
		{"id": "a1", "rule": "speeding", "severity": "critical", "status": "open"},
		{"id": "a2", "rule": "after_hours", "severity": "warning", "status": "open"},
		{"id": "a3", "rule": "speeding", "severity": "critical", "status": "dismissed"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data    Summary `json:"data"`
		Success bool    `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)

	s := env.Data
	assert.Equal(t, int64(2), s.ActiveDrivers)
	assert.Equal(t, int64(1), s.ActiveVehicles)
	assert.Equal(t, int64(2), s.TotalTrips)
	assert.Equal(t, int64(2), s.OpenAlerts)
	assert.Equal(t, int64(1), s.CriticalAlerts, "dismissed criticals do not count")
	assert.InDelta(t, 40.0, s.AverageRisk, 0.001, "average covers every driver, not just the top list")

	require.Len(t, s.TopRiskDrivers, 3)
	assert.Equal(t, "Bob", s.TopRiskDrivers[0].Name)
}

func TestSummaryEmptyFleet(t *testing.T) {
	router, _ := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Zero(t, env.Data.OpenAlerts)
	assert.Zero(t, env.Data.AverageRisk)
	assert.Empty(t, env.Data.TopRiskDrivers)
}
