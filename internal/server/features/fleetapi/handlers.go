package fleetapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/common"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

var driverSortable = map[string]bool{
	"id": true, "name": true, "risk_score": true, "status": true,
}

var vehicleSortable = map[string]bool{
	"id": true, "plate": true, "odometer_km": true, "status": true,
}

// Handlers provides HTTP handlers for drivers and vehicles.
type Handlers struct {
	store  *query.Store
	logger *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(store *query.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// ListDrivers returns drivers filtered by status, name substring, and
// minimum risk score, paginated with a total count.
func (h *Handlers) ListDrivers(w http.ResponseWriter, r *http.Request) {
	q := query.Query{Table: fleet.TableDrivers}

	if status := r.URL.Query().Get("status"); status != "" {
		q.Where = append(q.Where, query.Eq("status", status))
	}
	if name := r.URL.Query().Get("q"); name != "" {
		q.Where = append(q.Where, query.Like("name", name))
	}
	if minRisk, ok := common.QueryInt64(r, "min_risk"); ok {
		q.Where = append(q.Where, query.Gte("risk_score", minRisk))
	}
	common.ApplyPage(r, &q, driverSortable)

	res, err := h.store.Select(r.Context(), q)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	drivers := make([]fleet.Driver, 0, len(res.Rows))
	for _, rec := range res.Rows {
		drivers = append(drivers, fleet.DriverFromRecord(rec))
	}
	common.JSONCount(w, http.StatusOK, drivers, res.Count)
}

// CreateDriver inserts a driver and echoes the stored row.
func (h *Handlers) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name      string `json:"name"`
		LicenseNo string `json:"license_no"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}
	if in.Status == "" {
		in.Status = "active"
	}

	rec, err := h.store.InsertOne(r.Context(), fleet.TableDrivers, query.Record{
		"name":       in.Name,
		"license_no": in.LicenseNo,
		"status":     in.Status,
		"risk_score": int64(0),
	})
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	common.JSON(w, http.StatusCreated, fleet.DriverFromRecord(rec))
}

// UpdateDriver applies a partial patch to one driver.
func (h *Handlers) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}

	patch, err := decodePatch(r, "name", "license_no", "status", "risk_score")
	if err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.store.Update(r.Context(), fleet.TableDrivers, patch,
		[]query.Condition{query.Eq("id", id)})
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if len(rows) == 0 {
		common.Fail(w, http.StatusNotFound, errNotFound)
		return
	}
	common.JSON(w, http.StatusOK, fleet.DriverFromRecord(rows[0]))
}

// DeleteDriver removes a driver. Deleting an unknown id is a no-op success,
// matching the store contract.
func (h *Handlers) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}
	if err := h.store.Delete(r.Context(), fleet.TableDrivers,
		[]query.Condition{query.Eq("id", id)}); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	common.JSON(w, http.StatusOK, nil)
}

// ListVehicles returns vehicles filtered by status and assigned driver.
func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	q := query.Query{Table: fleet.TableVehicles}

	if status := r.URL.Query().Get("status"); status != "" {
		q.Where = append(q.Where, query.Eq("status", status))
	}
	if driverID, ok := common.QueryInt64(r, "driver_id"); ok {
		q.Where = append(q.Where, query.Eq("driver_id", driverID))
	}
	common.ApplyPage(r, &q, vehicleSortable)

	res, err := h.store.Select(r.Context(), q)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	vehicles := make([]fleet.Vehicle, 0, len(res.Rows))
	for _, rec := range res.Rows {
		vehicles = append(vehicles, fleet.VehicleFromRecord(rec))
	}
	common.JSONCount(w, http.StatusOK, vehicles, res.Count)
}

// CreateVehicle inserts a vehicle and echoes the stored row.
func (h *Handlers) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Plate             string  `json:"plate"`
		Model             string  `json:"model"`
		Status            string  `json:"status"`
		ExpectedLPer100Km float64 `json:"expected_l_per_100km"`
		DriverID          int64   `json:"driver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}
	if in.Status == "" {
		in.Status = "active"
	}

	rec := query.Record{
		"plate":  in.Plate,
		"model":  in.Model,
		"status": in.Status,
	}
	if in.ExpectedLPer100Km > 0 {
		rec["expected_l_per_100km"] = in.ExpectedLPer100Km
	}
	if in.DriverID != 0 {
		rec["driver_id"] = in.DriverID
	}

	stored, err := h.store.InsertOne(r.Context(), fleet.TableVehicles, rec)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	common.JSON(w, http.StatusCreated, fleet.VehicleFromRecord(stored))
}

// UpdateVehicle applies a partial patch to one vehicle.
func (h *Handlers) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}

	patch, err := decodePatch(r, "plate", "model", "status", "odometer_km", "expected_l_per_100km", "driver_id")
	if err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.store.Update(r.Context(), fleet.TableVehicles, patch,
		[]query.Condition{query.Eq("id", id)})
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	if len(rows) == 0 {
		common.Fail(w, http.StatusNotFound, errNotFound)
		return
	}
	common.JSON(w, http.StatusOK, fleet.VehicleFromRecord(rows[0]))
}

// DeleteVehicle removes a vehicle.
func (h *Handlers) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}
	if err := h.store.Delete(r.Context(), fleet.TableVehicles,
		[]query.Condition{query.Eq("id", id)}); err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	common.JSON(w, http.StatusOK, nil)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodePatch reads a JSON body and keeps only the allowed columns,
// preserving whatever value types the client sent.
func decodePatch(r *http.Request, allowed ...string) (query.Record, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	patch := query.Record{}
	for _, col := range allowed {
		if v, ok := body[col]; ok {
			patch[col] = v
		}
	}
	if len(patch) == 0 {
		return nil, errors.New("no updatable fields in request body")
	}
	return patch, nil
}
