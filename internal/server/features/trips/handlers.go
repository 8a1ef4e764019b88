package trips

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/internal/server/features/common"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

var tripSortable = map[string]bool{
	"id": true, "started_at": true, "distance_km": true, "max_speed_kmh": true,
}

// Handlers provides HTTP handlers for trips and fuel logs.
type Handlers struct {
	store  *query.Store
	logger *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(store *query.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// ListTrips returns trips filtered by driver, vehicle, minimum top speed,
// and start-time window, paginated with a total count.
func (h *Handlers) ListTrips(w http.ResponseWriter, r *http.Request) {
	q := query.Query{Table: fleet.TableTrips}

	if driverID, ok := common.QueryInt64(r, "driver_id"); ok {
		q.Where = append(q.Where, query.Eq("driver_id", driverID))
	}
	if vehicleID, ok := common.QueryInt64(r, "vehicle_id"); ok {
		q.Where = append(q.Where, query.Eq("vehicle_id", vehicleID))
	}
	if minSpeed, ok := common.QueryFloat(r, "min_speed"); ok {
		q.Where = append(q.Where, query.Gte("max_speed_kmh", minSpeed))
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			q.Where = append(q.Where, query.Gte("started_at", t.UTC()))
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			q.Where = append(q.Where, query.Lte("started_at", t.UTC()))
		}
	}
	common.ApplyPage(r, &q, tripSortable)

	res, err := h.store.Select(r.Context(), q)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]fleet.Trip, 0, len(res.Rows))
	for _, rec := range res.Rows {
		out = append(out, fleet.TripFromRecord(rec))
	}
	common.JSONCount(w, http.StatusOK, out, res.Count)
}

// CreateTrip records a completed trip from the telematics feed.
func (h *Handlers) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var in fleet.Trip
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}

	rec := query.Record{
		"driver_id":          in.DriverID,
		"vehicle_id":         in.VehicleID,
		"started_at":         in.StartedAt.UTC(),
		"distance_km":        in.DistanceKm,
		"max_speed_kmh":      in.MaxSpeedKmh,
		"route_deviation_km": in.RouteDeviationKm,
		"odometer_start_km":  in.OdometerStartKm,
		"odometer_end_km":    in.OdometerEndKm,
	}
	if in.EndedAt != nil {
		rec["ended_at"] = in.EndedAt.UTC()
	}

	stored, err := h.store.InsertOne(r.Context(), fleet.TableTrips, rec)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	common.JSON(w, http.StatusCreated, fleet.TripFromRecord(stored))
}

// ListFuelLogs returns fuel logs filtered by vehicle or trip.
func (h *Handlers) ListFuelLogs(w http.ResponseWriter, r *http.Request) {
	q := query.Query{Table: fleet.TableFuelLogs}

	if vehicleID, ok := common.QueryInt64(r, "vehicle_id"); ok {
		q.Where = append(q.Where, query.Eq("vehicle_id", vehicleID))
	}
	if tripID, ok := common.QueryInt64(r, "trip_id"); ok {
		q.Where = append(q.Where, query.Eq("trip_id", tripID))
	}
	common.ApplyPage(r, &q, map[string]bool{"id": true, "logged_at": true})

	res, err := h.store.Select(r.Context(), q)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]fleet.FuelLog, 0, len(res.Rows))
	for _, rec := range res.Rows {
		out = append(out, fleet.FuelLogFromRecord(rec))
	}
	common.JSONCount(w, http.StatusOK, out, res.Count)
}

// CreateFuelLog records a refuelling event.
func (h *Handlers) CreateFuelLog(w http.ResponseWriter, r *http.Request) {
	var in fleet.FuelLog
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.Fail(w, http.StatusBadRequest, err)
		return
	}
	if in.LoggedAt.IsZero() {
		in.LoggedAt = time.Now().UTC()
	}

	rec := query.Record{
		"vehicle_id":  in.VehicleID,
		"liters":      in.Liters,
		"odometer_km": in.OdometerKm,
		"logged_at":   in.LoggedAt.UTC(),
	}
	if in.TripID != 0 {
		rec["trip_id"] = in.TripID
	}

	stored, err := h.store.InsertOne(r.Context(), fleet.TableFuelLogs, rec)
	if err != nil {
		common.Fail(w, http.StatusInternalServerError, err)
		return
	}
	common.JSON(w, http.StatusCreated, fleet.FuelLogFromRecord(stored))
}
