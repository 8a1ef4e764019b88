package kpis

import (
	"log/slog"
	"net/http"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/common"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// Summary is the dashboard KPI payload.
type Summary struct {
	ActiveDrivers  int64          `json:"active_drivers"`
	ActiveVehicles int64          `json:"active_vehicles"`
	TotalTrips     int64          `json:"total_trips"`
	OpenAlerts     int64          `json:"open_alerts"`
	CriticalAlerts int64          `json:"critical_alerts"`
	AverageRisk    float64        `json:"average_risk"`
	TopRiskDrivers []fleet.Driver `json:"top_risk_drivers"`
}

// Handlers provides the KPI handler.
type Handlers struct {
	store  *query.Store
	logger *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(store *query.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// Summary assembles the dashboard KPIs from a handful of counts plus the
// top-risk driver list.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		out Summary
		err error
	)

	if out.ActiveDrivers, err = h.store.Count(ctx, fleet.TableDrivers,
		[]query.Condition{query.Eq("status", "active")}); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if out.ActiveVehicles, err = h.store.Count(ctx, fleet.TableVehicles,
		[]query.Condition{query.Eq("status", "active")}); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if out.TotalTrips, err = h.store.Count(ctx, fleet.TableTrips, nil); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if out.OpenAlerts, err = h.store.Count(ctx, fleet.TableAlerts,
		[]query.Condition{query.Eq("status", "open")}); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if out.CriticalAlerts, err = h.store.Count(ctx, fleet.TableAlerts,
		[]query.Condition{query.Eq("status", "open"), query.Eq("severity", "critical")}); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	res, err := h.store.Select(ctx, query.Query{
		Table:   fleet.TableDrivers,
		Columns: []string{"id", "name", "license_no", "status", "risk_score"},
		OrderBy: &query.Order{Column: "risk_score", Desc: true},
		Limit:   5,
	})
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	out.TopRiskDrivers = make([]fleet.Driver, 0, len(res.Rows))
	for _, rec := range res.Rows {
		out.TopRiskDrivers = append(out.TopRiskDrivers, fleet.DriverFromRecord(rec))
	}

	scores, err := h.store.Select(ctx, query.Query{
		Table:   fleet.TableDrivers,
		Columns: []string{"risk_score"},
	})
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	var riskSum int64
	for _, rec := range scores.Rows {
		riskSum += fleet.Int64(rec, "risk_score")
	}
	if len(scores.Rows) > 0 {
		out.AverageRisk = float64(riskSum) / float64(len(scores.Rows))
	}

	common.JSON(w, http.StatusOK, out)
}
