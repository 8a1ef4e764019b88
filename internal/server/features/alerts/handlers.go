package alerts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/internal/fraud"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/common"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

var alertSortable = map[string]bool{
	"created_at": true, "severity": true, "rule": true,
}

// Handlers provides HTTP handlers for alerts and fraud scans.
type Handlers struct {
	store  *query.Store
	engine *fraud.Engine
	logger *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(store *query.Store, engine *fraud.Engine, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, engine: engine, logger: logger}
}

// ListAlerts returns alerts filtered by status, driver, and rule/severity
// sets. rule and severity accept comma-separated lists and translate to
// set-membership conditions.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := query.Query{Table: fleet.TableAlerts}

	if status := r.URL.Query().Get("status"); status != "" {
		q.Where = append(q.Where, query.Eq("status", status))
	}
	if driverID, ok := common.QueryInt64(r, "driver_id"); ok {
		q.Where = append(q.Where, query.Eq("driver_id", driverID))
	}
	if rules := csvValues(r.URL.Query().Get("rule")); len(rules) > 0 {
		q.Where = append(q.Where, query.In("rule", rules...))
	}
	if sevs := csvValues(r.URL.Query().Get("severity")); len(sevs) > 0 {
		q.Where = append(q.Where, query.In("severity", sevs...))
	}
	common.ApplyPage(r, &q, alertSortable)

	res, err := h.store.Select(r.Context(), q)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]fleet.Alert, 0, len(res.Rows))
	for _, rec := range res.Rows {
		out = append(out, fleet.AlertFromRecord(rec))
	}
	common.JSONCount(w, http.StatusOK, out, res.Count)
}

// Scan runs all fraud checks and returns the newly raised alerts.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	created, err := h.engine.Scan(r.Context())
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if created == nil {
		created = []fleet.Alert{}
	}
	common.JSON(w, http.StatusOK, created)
}

// UpdateAlert changes an alert's status (acknowledge / dismiss).
func (h *Handlers) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}
	switch in.Status {
	case "open", "acknowledged", "dismissed":
	default:
		common.Fail(w, http.StatusBadRequest, errors.New("status must be open, acknowledged or dismissed"))
		return
	}

	rows, err := h.store.Update(r.Context(), fleet.TableAlerts,
		query.Record{"status": in.Status},
		[]query.Condition{query.Eq("id", id)})
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if len(rows) == 0 {
		common.Fail(w, http.StatusNotFound, errors.New("alert not found"))
		return
	}
	common.JSON(w, http.StatusOK, fleet.AlertFromRecord(rows[0]))
}

// csvValues splits a comma-separated query parameter into condition values.
func csvValues(raw string) []any {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
