package groundcontrol

import (
	"time"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/session"
)

// ContextFromSnapshot collects the trip details Ground Control needs
// from a session snapshot
func ContextFromSnapshot(snap session.Snapshot, phoneNumber string, now time.Time) FlightContext {
	fc := FlightContext{
		Timestamp:   now.UTC(),
		Screen:      string(snap.Screen),
		Destination: snap.Draft.Destination,
		Passengers:  snap.Draft.Passengers,
		PhoneNumber: phoneNumber,
	}
	if d := snap.Draft.SkyportDeparture; d != nil {
		fc.Departure = d.Name
	}
	if a := snap.Draft.SkyportArrival; a != nil {
		fc.Arrival = a.Name
	}

	// Telemetry and cabin only mean something once airborne
	if snap.Screen == booking.TerminalScreen && snap.Telemetry != nil {
		frame := *snap.Telemetry
		cabin := snap.Cabin
		fc.Telemetry = &frame
		fc.Cabin = &cabin
	}
	return fc
}
