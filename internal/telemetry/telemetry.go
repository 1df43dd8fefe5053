// Package telemetry simulates the in-flight dashboard numbers. A
// simulation run exists only while the in-flight screen is shown: it
// is started on entry and stopped on exit, releasing its ticker.
package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Bounds of the simulated values
const (
	MaxAltitudeM      = 150.0
	MinBatteryPct     = 75.0
	BatteryDrainPct   = 0.1
	MaxClimbPerTickM  = 2.0
	AirspeedBaseKmh   = 42.0
	AirspeedJitterKmh = 6.0
)

// Telemetry is one frame of flight data
type Telemetry struct {
	AltitudeM   float64   `json:"altitude_m"`
	BatteryPct  float64   `json:"battery_pct"`
	AirspeedKmh float64   `json:"airspeed_kmh"`
	ArrivalTime string    `json:"arrival_time"`
	FlightPhase string    `json:"flight_phase"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Config holds the simulation parameters
type Config struct {
	Interval        time.Duration
	InitialAltitude float64
	InitialBattery  float64
	InitialAirspeed float64
	ArrivalTime     string
	FlightPhase     string
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
}

// DefaultConfig ticks every two seconds from 120 m, 85 % and 45 km/h
func DefaultConfig() Config {
	return Config{
		Interval:        2 * time.Second,
		InitialAltitude: 120,
		InitialBattery:  85,
		InitialAirspeed: 45,
		ArrivalTime:     "14:23",
		FlightPhase:     "En Route",
	}
}

// Initial returns the first frame of a run
func Initial(cfg Config, now time.Time) Telemetry {
	return Telemetry{
		AltitudeM:   math.Min(cfg.InitialAltitude, MaxAltitudeM),
		BatteryPct:  math.Max(cfg.InitialBattery, MinBatteryPct),
		AirspeedKmh: cfg.InitialAirspeed,
		ArrivalTime: cfg.ArrivalTime,
		FlightPhase: cfg.FlightPhase,
		UpdatedAt:   now,
	}
}

// Step computes the next frame. Altitude climbs by up to 2 m and never
// exceeds 150; battery drains 0.1 points and never drops below 75;
// airspeed is redrawn in [42, 48).
func Step(prev Telemetry, rng *rand.Rand, now time.Time) Telemetry {
	next := prev
	next.AltitudeM = math.Min(MaxAltitudeM, prev.AltitudeM+rng.Float64()*MaxClimbPerTickM)
	next.BatteryPct = math.Max(MinBatteryPct, prev.BatteryPct-BatteryDrainPct)
	next.AirspeedKmh = AirspeedBaseKmh + rng.Float64()*AirspeedJitterKmh
	next.UpdatedAt = now
	return next
}

// Display returns the values as the dashboard shows them
func (t Telemetry) Display() (altitude, battery, airspeed int) {
	return int(math.Round(t.AltitudeM)), int(math.Round(t.BatteryPct)), int(math.Round(t.AirspeedKmh))
}
