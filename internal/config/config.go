package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

// Config is the complete application configuration
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Logging       logger.Config       `toml:"logging"`
	Storage       StorageConfig       `toml:"storage"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
	Pricing       booking.Pricing     `toml:"pricing"`
	Sessions      SessionsConfig      `toml:"sessions"`
	GroundControl GroundControlConfig `toml:"ground_control"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	ListenAddr          string   `toml:"listen_addr"`
	CORSAllowedOrigins  []string `toml:"cors_allowed_origins"`
	ReadTimeoutSeconds  int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds"`
}

// StorageConfig configures the booking ledger
type StorageConfig struct {
	Enabled    bool   `toml:"enabled"`
	SQLitePath string `toml:"sqlite_path"`
}

// TelemetryConfig configures the in-flight simulation
type TelemetryConfig struct {
	IntervalMillis  int     `toml:"interval_ms"`
	InitialAltitude float64 `toml:"initial_altitude_m"`
	InitialBattery  float64 `toml:"initial_battery_pct"`
	InitialAirspeed float64 `toml:"initial_airspeed_kmh"`
	ArrivalTime     string  `toml:"arrival_time"`
	FlightPhase     string  `toml:"flight_phase"`
	Seed            int64   `toml:"seed"`
}

// SessionsConfig configures API flow sessions
type SessionsConfig struct {
	IdleTimeoutMinutes   int `toml:"idle_timeout_minutes"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
	MaxSessions          int `toml:"max_sessions"`
}

// GroundControlConfig configures the in-flight chat with Ground Control
type GroundControlConfig struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	MaxResponseTokens int     `toml:"max_response_tokens"`
	Temperature       float64 `toml:"temperature"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	PhoneNumber       string  `toml:"phone_number"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	sim := telemetry.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			ListenAddr:          ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Storage: StorageConfig{
			Enabled:    true,
			SQLitePath: "skyglyde.db",
		},
		Telemetry: TelemetryConfig{
			IntervalMillis:  int(sim.Interval / time.Millisecond),
			InitialAltitude: sim.InitialAltitude,
			InitialBattery:  sim.InitialBattery,
			InitialAirspeed: sim.InitialAirspeed,
			ArrivalTime:     sim.ArrivalTime,
			FlightPhase:     sim.FlightPhase,
		},
		Pricing: booking.DefaultPricing(),
		Sessions: SessionsConfig{
			IdleTimeoutMinutes:   30,
			SweepIntervalSeconds: 60,
			MaxSessions:          1000,
		},
		GroundControl: GroundControlConfig{
			Model:             "gpt-4o-mini",
			MaxResponseTokens: 200,
			Temperature:       0.4,
			TimeoutSeconds:    20,
			PhoneNumber:       "+49 30 1234 5678",
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults. OPENAI_API_KEY fills the Ground Control key when the file
// leaves it empty.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
		}
	}

	if cfg.GroundControl.APIKey == "" {
		cfg.GroundControl.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Telemetry.IntervalMillis <= 0 {
		errs = append(errs, fmt.Errorf("telemetry.interval_ms must be positive, got %d", c.Telemetry.IntervalMillis))
	}
	if c.Pricing.EstimatedTotalEUR < 0 {
		errs = append(errs, fmt.Errorf("pricing.estimated_total_eur must not be negative"))
	}
	if c.Pricing.SeatsPerVehicle < 1 {
		errs = append(errs, fmt.Errorf("pricing.seats_per_vehicle must be at least 1"))
	}
	if c.Storage.Enabled && c.Storage.SQLitePath == "" {
		errs = append(errs, fmt.Errorf("storage.sqlite_path is required when storage is enabled"))
	}
	if c.Sessions.IdleTimeoutMinutes <= 0 || c.Sessions.SweepIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("sessions idle timeout and sweep interval must be positive"))
	}
	return errors.Join(errs...)
}

// SimulatorConfig converts the telemetry section
func (c *Config) SimulatorConfig() telemetry.Config {
	return telemetry.Config{
		Interval:        time.Duration(c.Telemetry.IntervalMillis) * time.Millisecond,
		InitialAltitude: c.Telemetry.InitialAltitude,
		InitialBattery:  c.Telemetry.InitialBattery,
		InitialAirspeed: c.Telemetry.InitialAirspeed,
		ArrivalTime:     c.Telemetry.ArrivalTime,
		FlightPhase:     c.Telemetry.FlightPhase,
		Seed:            c.Telemetry.Seed,
	}
}

// IdleTimeout returns the session idle timeout
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Sessions.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval returns how often idle sessions are collected
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sessions.SweepIntervalSeconds) * time.Second
}
