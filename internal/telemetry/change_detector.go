package telemetry

import "github.com/yegors/skyglyde/pkg/logger"

// ChangeDetector tracks the last frame pushed to a client and reports
// whether a new frame would look any different on the dashboard.
type ChangeDetector struct {
	previous *Telemetry
	logger   *logger.Logger
}

// NewChangeDetector creates a change detector for one stream
func NewChangeDetector(log *logger.Logger) *ChangeDetector {
	if log == nil {
		log = logger.Nop()
	}
	return &ChangeDetector{
		logger: log.Named("change-detector"),
	}
}

// DetectChange compares current with the previous frame and remembers
// current when it differs. The first frame always counts as a change.
func (cd *ChangeDetector) DetectChange(current Telemetry) bool {
	if cd.previous != nil && !cd.hasDisplayChanges(*cd.previous, current) {
		return false
	}
	cd.previous = &current
	return true
}

// hasDisplayChanges compares the values as rendered: whole metres,
// whole percent, whole km/h and the two labels.
func (cd *ChangeDetector) hasDisplayChanges(previous, current Telemetry) bool {
	pa, pb, ps := previous.Display()
	ca, cb, cs := current.Display()

	if pa != ca {
		return true
	}
	if pb != cb {
		return true
	}
	if ps != cs {
		return true
	}
	if previous.ArrivalTime != current.ArrivalTime || previous.FlightPhase != current.FlightPhase {
		return true
	}

	cd.logger.Debug("Suppressing unchanged telemetry frame",
		logger.Int("altitude", ca),
		logger.Int("battery", cb),
		logger.Int("airspeed", cs))
	return false
}

// Reset forgets the previous frame, so the next one is always sent
func (cd *ChangeDetector) Reset() {
	cd.previous = nil
}
