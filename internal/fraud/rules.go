// Package fraud implements FleetWatch's threshold-based fraud checks and the
// engine that runs them against the query store.
package fraud

import (
	"fmt"
	"math"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
)

// Rule names as stored in the alerts table.
const (
	RuleSpeeding       = "speeding"
	RuleRouteDeviation = "route_deviation"
	RuleFuelAnomaly    = "fuel_anomaly"
	RuleAfterHours     = "after_hours"
	RuleOdometer       = "odometer_tampering"
)

// Alert severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Thresholds holds the tunable limits the rules compare against. Zero-value
// fields are filled from DefaultThresholds.
type Thresholds struct {
	MaxSpeedKmh         float64 `koanf:"max_speed_kmh"`
	MaxRouteDeviationKm float64 `koanf:"max_route_deviation_km"`
	FuelTolerance       float64 `koanf:"fuel_tolerance"`
	WorkdayStartHour    int     `koanf:"workday_start_hour"`
	WorkdayEndHour      int     `koanf:"workday_end_hour"`
	OdometerSlackKm     float64 `koanf:"odometer_slack_km"`
}

// DefaultThresholds returns the stock limits used when configuration leaves
// them unset.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxSpeedKmh:         120,
		MaxRouteDeviationKm: 15,
		FuelTolerance:       1.3,
		WorkdayStartHour:    6,
		WorkdayEndHour:      22,
		OdometerSlackKm:     5,
	}
}

// withDefaults fills unset fields from the defaults.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.MaxSpeedKmh <= 0 {
		t.MaxSpeedKmh = d.MaxSpeedKmh
	}
	if t.MaxRouteDeviationKm <= 0 {
		t.MaxRouteDeviationKm = d.MaxRouteDeviationKm
	}
	if t.FuelTolerance <= 0 {
		t.FuelTolerance = d.FuelTolerance
	}
	if t.WorkdayEndHour <= 0 {
		t.WorkdayStartHour = d.WorkdayStartHour
		t.WorkdayEndHour = d.WorkdayEndHour
	}
	if t.OdometerSlackKm <= 0 {
		t.OdometerSlackKm = d.OdometerSlackKm
	}
	return t
}

// Finding is a single rule violation before it becomes a persisted alert.
type Finding struct {
	Rule     string
	Severity string
	Details  string
}

// CheckSpeed flags trips whose recorded top speed exceeds the limit.
func CheckSpeed(trip fleet.Trip, th Thresholds) *Finding {
	if trip.MaxSpeedKmh <= th.MaxSpeedKmh {
		return nil
	}
	severity := SeverityWarning
	if trip.MaxSpeedKmh > th.MaxSpeedKmh*1.25 {
		severity = SeverityCritical
	}
	return &Finding{
		Rule:     RuleSpeeding,
		Severity: severity,
		Details:  fmt.Sprintf("max speed %.0f km/h exceeds limit %.0f km/h", trip.MaxSpeedKmh, th.MaxSpeedKmh),
	}
}

// CheckRouteDeviation flags trips that strayed too far from the planned route.
func CheckRouteDeviation(trip fleet.Trip, th Thresholds) *Finding {
	if trip.RouteDeviationKm <= th.MaxRouteDeviationKm {
		return nil
	}
	return &Finding{
		Rule:     RuleRouteDeviation,
		Severity: SeverityWarning,
		Details:  fmt.Sprintf("route deviation %.1f km exceeds limit %.1f km", trip.RouteDeviationKm, th.MaxRouteDeviationKm),
	}
}

// CheckAfterHours flags trips that started outside the permitted daily
// window [start, end).
func CheckAfterHours(trip fleet.Trip, th Thresholds) *Finding {
	hour := trip.StartedAt.Hour()
	if hour >= th.WorkdayStartHour && hour < th.WorkdayEndHour {
		return nil
	}
	return &Finding{
		Rule:     RuleAfterHours,
		Severity: SeverityWarning,
		Details:  fmt.Sprintf("trip started at %02d:00, outside %02d:00-%02d:00", hour, th.WorkdayStartHour, th.WorkdayEndHour),
	}
}

// CheckOdometer flags odometer readings that went backwards or diverge from
// the recorded trip distance beyond the slack.
func CheckOdometer(trip fleet.Trip, th Thresholds) *Finding {
	if trip.OdometerEndKm == 0 && trip.OdometerStartKm == 0 {
		return nil
	}
	if trip.OdometerEndKm < trip.OdometerStartKm {
		return &Finding{
			Rule:     RuleOdometer,
			Severity: SeverityCritical,
			Details: fmt.Sprintf("odometer went backwards: %.0f km to %.0f km",
				trip.OdometerStartKm, trip.OdometerEndKm),
		}
	}
	gap := trip.OdometerEndKm - trip.OdometerStartKm
	if math.Abs(gap-trip.DistanceKm) > th.OdometerSlackKm {
		return &Finding{
			Rule:     RuleOdometer,
			Severity: SeverityWarning,
			Details: fmt.Sprintf("odometer gap %.1f km disagrees with trip distance %.1f km",
				gap, trip.DistanceKm),
		}
	}
	return nil
}

// CheckFuel flags trips whose fuel consumption exceeds the vehicle's
// expected rate by more than the tolerance factor. Trips shorter than a
// kilometer are skipped; the rate is meaningless there.
func CheckFuel(trip fleet.Trip, liters float64, vehicle fleet.Vehicle, th Thresholds) *Finding {
	if trip.DistanceKm < 1 || liters <= 0 {
		return nil
	}
	expected := vehicle.ExpectedLPer100Km
	if expected <= 0 {
		return nil
	}
	actual := liters / trip.DistanceKm * 100
	if actual <= expected*th.FuelTolerance {
		return nil
	}
	return &Finding{
		Rule:     RuleFuelAnomaly,
		Severity: SeverityWarning,
		Details: fmt.Sprintf("consumption %.1f l/100km exceeds expected %.1f l/100km (tolerance %.0f%%)",
			actual, expected, (th.FuelTolerance-1)*100),
	}
}

// riskWeight maps a severity to the amount added to a driver's risk score.
func riskWeight(severity string) int64 {
	if severity == SeverityCritical {
		return 10
	}
	return 5
}
