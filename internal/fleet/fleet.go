// Package fleet defines the domain row types shared by the fraud engine and
// the HTTP feature handlers, plus their conversions to and from the query
// store's record shape.
package fleet

import (
	"time"

	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// Logical table names. Every store call goes through these constants; there
// are no free-form table strings in the codebase.
const (
	TableDrivers  = "drivers"
	TableVehicles = "vehicles"
	TableTrips    = "trips"
	TableFuelLogs = "fuel_logs"
	TableAlerts   = "alerts"
)

// Driver is a fleet driver with an accumulated fraud risk score.
type Driver struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LicenseNo string `json:"license_no"`
	Status    string `json:"status"`
	RiskScore int64  `json:"risk_score"`
}

// Vehicle is a fleet vehicle. ExpectedLPer100Km is the manufacturer fuel
// consumption baseline the fuel-anomaly rule compares against.
type Vehicle struct {
	ID                int64   `json:"id"`
	Plate             string  `json:"plate"`
	Model             string  `json:"model"`
	Status            string  `json:"status"`
	OdometerKm        float64 `json:"odometer_km"`
	ExpectedLPer100Km float64 `json:"expected_l_per_100km"`
	DriverID          int64   `json:"driver_id"`
}

// Trip is a completed or in-progress journey recorded by the telematics feed.
type Trip struct {
	ID               int64      `json:"id"`
	DriverID         int64      `json:"driver_id"`
	VehicleID        int64      `json:"vehicle_id"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	DistanceKm       float64    `json:"distance_km"`
	MaxSpeedKmh      float64    `json:"max_speed_kmh"`
	RouteDeviationKm float64    `json:"route_deviation_km"`
	OdometerStartKm  float64    `json:"odometer_start_km"`
	OdometerEndKm    float64    `json:"odometer_end_km"`
}

// FuelLog is a single refuelling record.
type FuelLog struct {
	ID         int64     `json:"id"`
	VehicleID  int64     `json:"vehicle_id"`
	TripID     int64     `json:"trip_id"`
	Liters     float64   `json:"liters"`
	OdometerKm float64   `json:"odometer_km"`
	LoggedAt   time.Time `json:"logged_at"`
}

// Alert is a fraud finding produced by the rule engine.
type Alert struct {
	ID        string    `json:"id"`
	Rule      string    `json:"rule"`
	Severity  string    `json:"severity"`
	DriverID  int64     `json:"driver_id"`
	VehicleID int64     `json:"vehicle_id"`
	TripID    int64     `json:"trip_id"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Record converts an alert into the store's record shape for insertion.
func (a Alert) Record() query.Record {
	return query.Record{
		"id":         a.ID,
		"rule":       a.Rule,
		"severity":   a.Severity,
		"driver_id":  a.DriverID,
		"vehicle_id": a.VehicleID,
		"trip_id":    a.TripID,
		"details":    a.Details,
		"status":     a.Status,
		"created_at": a.CreatedAt,
	}
}

// DriverFromRecord builds a Driver from a store row.
func DriverFromRecord(rec query.Record) Driver {
	return Driver{
		ID:        Int64(rec, "id"),
		Name:      String(rec, "name"),
		LicenseNo: String(rec, "license_no"),
		Status:    String(rec, "status"),
		RiskScore: Int64(rec, "risk_score"),
	}
}

// VehicleFromRecord builds a Vehicle from a store row.
func VehicleFromRecord(rec query.Record) Vehicle {
	return Vehicle{
		ID:                Int64(rec, "id"),
		Plate:             String(rec, "plate"),
		Model:             String(rec, "model"),
		Status:            String(rec, "status"),
		OdometerKm:        Float64(rec, "odometer_km"),
		ExpectedLPer100Km: Float64(rec, "expected_l_per_100km"),
		DriverID:          Int64(rec, "driver_id"),
	}
}

// TripFromRecord builds a Trip from a store row.
func TripFromRecord(rec query.Record) Trip {
	t := Trip{
		ID:               Int64(rec, "id"),
		DriverID:         Int64(rec, "driver_id"),
		VehicleID:        Int64(rec, "vehicle_id"),
		StartedAt:        Time(rec, "started_at"),
		DistanceKm:       Float64(rec, "distance_km"),
		MaxSpeedKmh:      Float64(rec, "max_speed_kmh"),
		RouteDeviationKm: Float64(rec, "route_deviation_km"),
		OdometerStartKm:  Float64(rec, "odometer_start_km"),
		OdometerEndKm:    Float64(rec, "odometer_end_km"),
	}
	if rec["ended_at"] != nil {
		ended := Time(rec, "ended_at")
		t.EndedAt = &ended
	}
	return t
}

// FuelLogFromRecord builds a FuelLog from a store row.
func FuelLogFromRecord(rec query.Record) FuelLog {
	return FuelLog{
		ID:         Int64(rec, "id"),
		VehicleID:  Int64(rec, "vehicle_id"),
		TripID:     Int64(rec, "trip_id"),
		Liters:     Float64(rec, "liters"),
		OdometerKm: Float64(rec, "odometer_km"),
		LoggedAt:   Time(rec, "logged_at"),
	}
}

// AlertFromRecord builds an Alert from a store row.
func AlertFromRecord(rec query.Record) Alert {
	return Alert{
		ID:        String(rec, "id"),
		Rule:      String(rec, "rule"),
		Severity:  String(rec, "severity"),
		DriverID:  Int64(rec, "driver_id"),
		VehicleID: Int64(rec, "vehicle_id"),
		TripID:    Int64(rec, "trip_id"),
		Details:   String(rec, "details"),
		Status:    String(rec, "status"),
		CreatedAt: Time(rec, "created_at"),
	}
}
