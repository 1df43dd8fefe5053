package telemetry

// Cabin control limits
const (
	MinCabinTemperatureC = 18
	MaxCabinTemperatureC = 26
	MinCabinVolumePct    = 0
	MaxCabinVolumePct    = 100
)

// CabinSettings are the passenger-adjustable cabin controls
type CabinSettings struct {
	TemperatureC int `json:"temperature_c"`
	VolumePct    int `json:"volume_pct"`
}

// DefaultCabin is 22 °C at half volume
func DefaultCabin() CabinSettings {
	return CabinSettings{TemperatureC: 22, VolumePct: 50}
}

// WithTemperature returns the settings with the temperature clamped to
// the supported range
func (c CabinSettings) WithTemperature(celsius int) CabinSettings {
	c.TemperatureC = clamp(celsius, MinCabinTemperatureC, MaxCabinTemperatureC)
	return c
}

// WithVolume returns the settings with the volume clamped to 0-100
func (c CabinSettings) WithVolume(pct int) CabinSettings {
	c.VolumePct = clamp(pct, MinCabinVolumePct, MaxCabinVolumePct)
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
