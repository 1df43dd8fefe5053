package booking

import "github.com/yegors/skyglyde/internal/catalog"

// MultiVehicleThreshold is the passenger count from which the flow
// detours through the multiple vehicles notice.
const MultiVehicleThreshold = 3

// Draft is the in-progress booking accumulated across screens. Views
// receive copies; only the controller replaces fields. Referenced
// catalog entries are never mutated, so copies may share pointers.
type Draft struct {
	Destination         string                   `json:"destination"`
	Passengers          int                      `json:"passengers"`
	SkyportDeparture    *catalog.Skyport         `json:"skyport_departure,omitempty"`
	SkyportArrival      *catalog.Skyport         `json:"skyport_arrival,omitempty"`
	GroundTransportTo   *catalog.TransportOption `json:"ground_transport_to,omitempty"`
	GroundTransportFrom *catalog.TransportOption `json:"ground_transport_from,omitempty"`
	LocationEnabled     bool                     `json:"location_enabled"`
}

// NewDraft returns the draft every flow starts with
func NewDraft() Draft {
	return Draft{Passengers: 1}
}

// NeedsMultipleVehicles reports whether the group is too large for one taxi
func (d Draft) NeedsMultipleVehicles() bool {
	return d.Passengers >= MultiVehicleThreshold
}

// ReadyForSummary reports whether every field the summary shows is set
func (d Draft) ReadyForSummary() bool {
	return d.Destination != "" &&
		d.Passengers >= 1 &&
		d.SkyportArrival != nil &&
		d.SkyportDeparture != nil &&
		d.GroundTransportTo != nil &&
		d.GroundTransportFrom != nil
}

// State is the full controller state: where the user is and what they
// have entered so far.
type State struct {
	Screen Screen `json:"screen"`
	Draft  Draft  `json:"draft"`

	// Booking is set once the summary has been confirmed
	Booking *Booking `json:"booking,omitempty"`
}

// InitialState is the state of a fresh flow
func InitialState() State {
	return State{Screen: InitialScreen, Draft: NewDraft()}
}
