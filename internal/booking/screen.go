package booking

import (
	"strings"

	"github.com/yegors/skyglyde/internal/catalog"
)

// Screen identifies one state of the booking flow
type Screen string

const (
	ScreenHome                Screen = "home"
	ScreenHowItWorks          Screen = "howItWorks"
	ScreenLocationAccess      Screen = "locationAccess"
	ScreenPassengers          Screen = "passengers"
	ScreenMultipleVehicles    Screen = "multipleVehicles"
	ScreenSkyportDeparture    Screen = "skyportDeparture"
	ScreenGroundTransportTo   Screen = "groundTransportTo"
	ScreenGroundTransportFrom Screen = "groundTransportFrom"
	ScreenSummary             Screen = "summary"
	ScreenSafetyBriefing      Screen = "safetyBriefing"
	ScreenInFlight            Screen = "inFlight"
)

// InitialScreen is where every flow starts
const InitialScreen = ScreenHome

// TerminalScreen has no outgoing transitions
const TerminalScreen = ScreenInFlight

var screenOrder = []Screen{
	ScreenHome,
	ScreenHowItWorks,
	ScreenLocationAccess,
	ScreenPassengers,
	ScreenMultipleVehicles,
	ScreenSkyportDeparture,
	ScreenGroundTransportTo,
	ScreenGroundTransportFrom,
	ScreenSummary,
	ScreenSafetyBriefing,
	ScreenInFlight,
}

// Screens returns all screens in flow order
func Screens() []Screen {
	out := make([]Screen, len(screenOrder))
	copy(out, screenOrder)
	return out
}

// Valid reports whether s is a known screen
func (s Screen) Valid() bool {
	for _, known := range screenOrder {
		if s == known {
			return true
		}
	}
	return false
}

// EventType is the kind of user completion a view emits
type EventType string

const (
	EventSubmit  EventType = "submit"
	EventNext    EventType = "next"
	EventBack    EventType = "back"
	EventGrant   EventType = "grant"
	EventConfirm EventType = "confirm"
	EventAccept  EventType = "accept"
)

// Event is a transition event. Only the payload field that belongs to
// the current screen's submit is read.
type Event struct {
	Type EventType

	Destination string
	Passengers  int
	Skyport     *catalog.Skyport
	Transport   *catalog.TransportOption

	// Granted is the location-access answer, Accepted the safety
	// briefing checkbox.
	Granted  bool
	Accepted bool
}

// SubmitDestination is emitted by the home screen
func SubmitDestination(destination string) Event {
	return Event{Type: EventSubmit, Destination: destination}
}

// SubmitPassengers is emitted by the passenger screen
func SubmitPassengers(n int) Event {
	return Event{Type: EventSubmit, Passengers: n}
}

// SubmitSkyport is emitted by the departure skyport screen
func SubmitSkyport(s catalog.Skyport) Event {
	return Event{Type: EventSubmit, Skyport: &s}
}

// SubmitTransport is emitted by either ground transport screen
func SubmitTransport(t catalog.TransportOption) Event {
	return Event{Type: EventSubmit, Transport: &t}
}

func Next() Event    { return Event{Type: EventNext} }
func Back() Event    { return Event{Type: EventBack} }
func Confirm() Event { return Event{Type: EventConfirm} }

// Grant is emitted by the location access screen
func Grant(granted bool) Event {
	return Event{Type: EventGrant, Granted: granted}
}

// Accept is emitted by the safety briefing with the checkbox value
func Accept(checked bool) Event {
	return Event{Type: EventAccept, Accepted: checked}
}

// normalizeDestination trims the free-text destination. A destination
// made only of whitespace counts as empty.
func normalizeDestination(destination string) string {
	return strings.TrimSpace(destination)
}
