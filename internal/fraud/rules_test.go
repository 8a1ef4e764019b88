package fraud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetstack-labs/fleetwatch/internal/fleet"
)

func tripAt(hour int) fleet.Trip {
	return fleet.Trip{
		StartedAt: time.Date(2026, 3, 10, hour, 30, 0, 0, time.UTC),
	}
}

func TestCheckSpeed(t *testing.T) {
	th := DefaultThresholds()

	assert.Nil(t, CheckSpeed(fleet.Trip{MaxSpeedKmh: 115}, th))
	assert.Nil(t, CheckSpeed(fleet.Trip{MaxSpeedKmh: 120}, th), "at the limit is not a violation")

	f := CheckSpeed(fleet.Trip{MaxSpeedKmh: 130}, th)
	require.NotNil(t, f)
	assert.Equal(t, RuleSpeeding, f.Rule)
	assert.Equal(t, SeverityWarning, f.Severity)

	f = CheckSpeed(fleet.Trip{MaxSpeedKmh: 160}, th)
	require.NotNil(t, f)
	assert.Equal(t, SeverityCritical, f.Severity, "well over the limit escalates")
}

func TestCheckRouteDeviation(t *testing.T) {
	th := DefaultThresholds()

	assert.Nil(t, CheckRouteDeviation(fleet.Trip{RouteDeviationKm: 14.9}, th))

	f := CheckRouteDeviation(fleet.Trip{RouteDeviationKm: 20}, th)
	require.NotNil(t, f)
	assert.Equal(t, RuleRouteDeviation, f.Rule)
	assert.Equal(t, SeverityWarning, f.Severity)
}

func TestCheckAfterHours(t *testing.T) {
	th := DefaultThresholds() // workday 06:00-22:00

	assert.Nil(t, CheckAfterHours(tripAt(6), th), "window start is inside")
	assert.Nil(t, CheckAfterHours(tripAt(21), th))

	f := CheckAfterHours(tripAt(22), th)
	require.NotNil(t, f, "window end is outside")
	assert.Equal(t, RuleAfterHours, f.Rule)

	assert.NotNil(t, CheckAfterHours(tripAt(3), th))
	assert.NotNil(t, CheckAfterHours(tripAt(5), th))
}

func TestCheckOdometer(t *testing.T) {
	th := DefaultThresholds()

	t.Run("no readings is skipped", func(t *testing.T) {
		assert.Nil(t, CheckOdometer(fleet.Trip{DistanceKm: 50}, th))
	})

	t.Run("consistent readings", func(t *testing.T) {
		assert.Nil(t, CheckOdometer(fleet.Trip{
			DistanceKm: 50, OdometerStartKm: 1000, OdometerEndKm: 1052,
		}, th))
	})

	t.Run("backwards is critical", func(t *testing.T) {
		f := CheckOdometer(fleet.Trip{OdometerStartKm: 1000, OdometerEndKm: 900}, th)
		require.NotNil(t, f)
		assert.Equal(t, RuleOdometer, f.Rule)
		assert.Equal(t, SeverityCritical, f.Severity)
	})

	t.Run("gap beyond slack is warning", func(t *testing.T) {
		f := CheckOdometer(fleet.Trip{
			DistanceKm: 50, OdometerStartKm: 1000, OdometerEndKm: 1070,
		}, th)
		require.NotNil(t, f)
		assert.Equal(t, SeverityWarning, f.Severity)
	})
}

func TestCheckFuel(t *testing.T) {
	th := DefaultThresholds() // tolerance 1.3
	vehicle := fleet.Vehicle{ExpectedLPer100Km: 8}

	t.Run("within tolerance", func(t *testing.T) {
		// 10 l over 100 km = 10 l/100km, limit is 8 * 1.3 = 10.4.
		assert.Nil(t, CheckFuel(fleet.Trip{DistanceKm: 100}, 10, vehicle, th))
	})

	t.Run("over tolerance", func(t *testing.T) {
		f := CheckFuel(fleet.Trip{DistanceKm: 100}, 12, vehicle, th)
		require.NotNil(t, f)
		assert.Equal(t, RuleFuelAnomaly, f.Rule)
	})

	t.Run("short trips skipped", func(t *testing.T) {
		assert.Nil(t, CheckFuel(fleet.Trip{DistanceKm: 0.5}, 50, vehicle, th))
	})

	t.Run("no fuel skipped", func(t *testing.T) {
		assert.Nil(t, CheckFuel(fleet.Trip{DistanceKm: 100}, 0, vehicle, th))
	})

	t.Run("unknown baseline skipped", func(t *testing.T) {
		assert.Nil(t, CheckFuel(fleet.Trip{DistanceKm: 100}, 50, fleet.Vehicle{}, th))
	})
}

func TestWithDefaults(t *testing.T) {
	filled := Thresholds{}.withDefaults()
	assert.Equal(t, DefaultThresholds(), filled)

	partial := Thresholds{MaxSpeedKmh: 90}.withDefaults()
	assert.Equal(t, 90.0, partial.MaxSpeedKmh)
	assert.Equal(t, 15.0, partial.MaxRouteDeviationKm)
	assert.Equal(t, 6, partial.WorkdayStartHour)
}

func TestRiskWeight(t *testing.T) {
	assert.Equal(t, int64(10), riskWeight(SeverityCritical))
	assert.Equal(t, int64(5), riskWeight(SeverityWarning))
}
