package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
	"github.com/fleetstack-labs/fleetwatch/pkg/query"
)

// Engine runs the fraud checks against the query store and persists the
// resulting alerts. It is safe for concurrent use; thresholds may be
// swapped at runtime via SetThresholds (config hot reload).
type Engine struct {
	store  *query.Store
	logger *slog.Logger

	mu sync.RWMutex
	th Thresholds
}

// NewEngine builds an engine over the given store. Zero threshold fields are
// filled with defaults. If logger is nil, a discard logger is used.
func NewEngine(store *query.Store, th Thresholds, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{store: store, th: th.withDefaults(), logger: logger}
}

// Thresholds returns the limits currently in effect.
func (e *Engine) Thresholds() Thresholds {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.th
}

// SetThresholds swaps the limits used by subsequent scans.
func (e *Engine) SetThresholds(th Thresholds) {
	e.mu.Lock()
	e.th = th.withDefaults()
	e.mu.Unlock()
	e.logger.Info("fraud thresholds updated",
		slog.Float64("max_speed_kmh", th.MaxSpeedKmh),
		slog.Float64("max_route_deviation_km", th.MaxRouteDeviationKm))
}

// Scan runs every rule over all completed trips and persists new alerts.
// The scan is idempotent: a trip+rule pair that already has an alert is
// skipped, so repeated scans do not duplicate findings. Each new alert also
// bumps the driver's risk score by the rule's severity weight.
func (e *Engine) Scan(ctx context.Context) ([]fleet.Alert, error) {
	th := e.Thresholds()

	tripRecs, err := e.store.Select(ctx, query.Query{Table: fleet.TableTrips})
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	vehicles, err := e.loadVehicles(ctx)
	if err != nil {
		return nil, err
	}
	fuelByTrip, err := e.loadFuelTotals(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := e.loadExistingAlerts(ctx)
	if err != nil {
		return nil, err
	}

	var created []fleet.Alert
	for _, rec := range tripRecs.Rows {
		trip := fleet.TripFromRecord(rec)
		if trip.EndedAt == nil {
			continue
		}

		findings := []*Finding{
			CheckSpeed(trip, th),
			CheckRouteDeviation(trip, th),
			CheckAfterHours(trip, th),
			CheckOdometer(trip, th),
			CheckFuel(trip, fuelByTrip[trip.ID], vehicles[trip.VehicleID], th),
		}

		for _, f := range findings {
			if f == nil {
				continue
			}
			if existing[alertKey{rule: f.Rule, tripID: trip.ID}] {
				continue
			}

			alert := fleet.Alert{
				ID:        uuid.New().String(),
				Rule:      f.Rule,
				Severity:  f.Severity,
				DriverID:  trip.DriverID,
				VehicleID: trip.VehicleID,
				TripID:    trip.ID,
				Details:   f.Details,
				Status:    "open",
				CreatedAt: time.Now().UTC(),
			}
			if _, err := e.store.InsertOne(ctx, fleet.TableAlerts, alert.Record()); err != nil {
				return created, fmt.Errorf("failed to persist alert: %w", err)
			}
			if err := e.bumpRiskScore(ctx, trip.DriverID, riskWeight(f.Severity)); err != nil {
				return created, err
			}

			e.logger.Info("fraud alert raised",
				slog.String("rule", f.Rule),
				slog.String("severity", f.Severity),
				slog.Int64("trip_id", trip.ID),
				slog.Int64("driver_id", trip.DriverID))
			created = append(created, alert)
		}
	}
	return created, nil
}

type alertKey struct {
	rule   string
	tripID int64
}

func (e *Engine) loadVehicles(ctx context.Context) (map[int64]fleet.Vehicle, error) {
	res, err := e.store.Select(ctx, query.Query{Table: fleet.TableVehicles})
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	out := make(map[int64]fleet.Vehicle, len(res.Rows))
	for _, rec := range res.Rows {
		v := fleet.VehicleFromRecord(rec)
		out[v.ID] = v
	}
	return out, nil
}

// loadFuelTotals sums refuelled liters per trip.
func (e *Engine) loadFuelTotals(ctx context.Context) (map[int64]float64, error) {
	res, err := e.store.Select(ctx, query.Query{Table: fleet.TableFuelLogs})
	if err != nil {
		return nil, fmt.Errorf("failed to load fuel logs: %w", err)
	}
	out := make(map[int64]float64)
	for _, rec := range res.Rows {
		log := fleet.FuelLogFromRecord(rec)
		if log.TripID != 0 {
			out[log.TripID] += log.Liters
		}
	}
	return out, nil
}

func (e *Engine) loadExistingAlerts(ctx context.Context) (map[alertKey]bool, error) {
	res, err := e.store.Select(ctx, query.Query{
		Table:   fleet.TableAlerts,
		Columns: []string{"rule", "trip_id"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load existing alerts: %w", err)
	}
	out := make(map[alertKey]bool, len(res.Rows))
	for _, rec := range res.Rows {
		out[alertKey{rule: fleet.String(rec, "rule"), tripID: fleet.Int64(rec, "trip_id")}] = true
	}
	return out, nil
}

// bumpRiskScore adds delta to a driver's risk score. Read-modify-write is
// fine here: scans are serialized by the caller, and the score is advisory.
func (e *Engine) bumpRiskScore(ctx context.Context, driverID, delta int64) error {
	res, err := e.store.Select(ctx, query.Query{
		Table:   fleet.TableDrivers,
		Columns: []string{"risk_score"},
		Where:   []query.Condition{query.Eq("id", driverID)},
	})
	if err != nil {
		return fmt.Errorf("failed to load driver %d: %w", driverID, err)
	}
	if len(res.Rows) == 0 {
		return nil
	}
	score := fleet.Int64(res.Rows[0], "risk_score") + delta
	_, err = e.store.Update(ctx, fleet.TableDrivers,
		query.Record{"risk_score": score},
		[]query.Condition{query.Eq("id", driverID)})
	if err != nil {
		return fmt.Errorf("failed to update driver %d risk score: %w", driverID, err)
	}
	return nil
}
