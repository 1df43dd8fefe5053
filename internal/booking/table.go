package booking

// Transition is one row of the transition table. Guard and Patch may
// be nil. Next is evaluated on the patched draft, so routing can depend
// on the value just submitted as well as on earlier answers.
type Transition struct {
	Guard func(d Draft, ev Event) bool
	Patch func(d *Draft, ev Event)
	Next  func(d Draft) Screen
}

// Table maps a screen and event type to its transition. Screens
// without an entry are terminal.
type Table map[Screen]map[EventType]Transition

func to(s Screen) func(Draft) Screen {
	return func(Draft) Screen { return s }
}

// NewTable builds the booking flow's transition table. The matcher
// derives the arrival skyport when the destination is submitted.
func NewTable(matcher Matcher) Table {
	return Table{
		ScreenHome: {
			EventSubmit: {
				Guard: func(_ Draft, ev Event) bool {
					return normalizeDestination(ev.Destination) != ""
				},
				Patch: func(d *Draft, ev Event) {
					d.Destination = normalizeDestination(ev.Destination)
					arrival := matcher.Match(d.Destination)
					d.SkyportArrival = &arrival
				},
				Next: to(ScreenHowItWorks),
			},
		},
		ScreenHowItWorks: {
			EventNext: {Next: to(ScreenLocationAccess)},
			EventBack: {Next: to(ScreenHome)},
		},
		ScreenLocationAccess: {
			// Location access is mandatory; declining never advances.
			EventGrant: {
				Guard: func(_ Draft, ev Event) bool { return ev.Granted },
				Patch: func(d *Draft, ev Event) { d.LocationEnabled = ev.Granted },
				Next:  to(ScreenPassengers),
			},
			EventBack: {Next: to(ScreenHowItWorks)},
		},
		ScreenPassengers: {
			EventSubmit: {
				Guard: func(_ Draft, ev Event) bool { return ev.Passengers >= 1 },
				Patch: func(d *Draft, ev Event) { d.Passengers = ev.Passengers },
				Next:  afterPassengers,
			},
			EventBack: {Next: to(ScreenLocationAccess)},
		},
		ScreenMultipleVehicles: {
			EventNext: {Next: to(ScreenSkyportDeparture)},
			EventBack: {Next: to(ScreenPassengers)},
		},
		ScreenSkyportDeparture: {
			EventSubmit: {
				Guard: func(_ Draft, ev Event) bool { return ev.Skyport != nil },
				Patch: func(d *Draft, ev Event) {
					s := *ev.Skyport
					d.SkyportDeparture = &s
				},
				Next: to(ScreenGroundTransportTo),
			},
			EventBack: {Next: backFromDeparture},
		},
		ScreenGroundTransportTo: {
			EventSubmit: {
				Guard: func(_ Draft, ev Event) bool { return ev.Transport != nil },
				Patch: func(d *Draft, ev Event) {
					t := *ev.Transport
					d.GroundTransportTo = &t
				},
				Next: to(ScreenGroundTransportFrom),
			},
			EventBack: {Next: to(ScreenSkyportDeparture)},
		},
		ScreenGroundTransportFrom: {
			EventSubmit: {
				Guard: func(_ Draft, ev Event) bool { return ev.Transport != nil },
				Patch: func(d *Draft, ev Event) {
					t := *ev.Transport
					d.GroundTransportFrom = &t
				},
				Next: to(ScreenSummary),
			},
			EventBack: {Next: to(ScreenGroundTransportTo)},
		},
		ScreenSummary: {
			EventConfirm: {
				Guard: func(d Draft, _ Event) bool { return d.ReadyForSummary() },
				Next:  to(ScreenSafetyBriefing),
			},
			EventBack: {Next: to(ScreenGroundTransportFrom)},
		},
		ScreenSafetyBriefing: {
			EventAccept: {
				Guard: func(_ Draft, ev Event) bool { return ev.Accepted },
				Next:  to(ScreenInFlight),
			},
		},
	}
}

// afterPassengers routes groups large enough for several taxis through
// the multiple vehicles notice.
func afterPassengers(d Draft) Screen {
	if d.NeedsMultipleVehicles() {
		return ScreenMultipleVehicles
	}
	return ScreenSkyportDeparture
}

// backFromDeparture returns to whichever screen led to the departure
// skyport screen.
func backFromDeparture(d Draft) Screen {
	if d.NeedsMultipleVehicles() {
		return ScreenMultipleVehicles
	}
	return ScreenPassengers
}

// Lookup returns the transition for an event on a screen
func (t Table) Lookup(from Screen, kind EventType) (Transition, bool) {
	events, ok := t[from]
	if !ok {
		return Transition{}, false
	}
	tr, ok := events[kind]
	return tr, ok
}

// Allows reports whether ev would fire from state
func (t Table) Allows(state State, ev Event) bool {
	tr, ok := t.Lookup(state.Screen, ev.Type)
	if !ok {
		return false
	}
	return tr.Guard == nil || tr.Guard(state.Draft, ev)
}

// Apply is the flow's reducer. It returns the next state and whether a
// transition fired. Unknown events and failed guards leave the state
// untouched.
func (t Table) Apply(state State, ev Event) (State, bool) {
	tr, ok := t.Lookup(state.Screen, ev.Type)
	if !ok {
		return state, false
	}
	if tr.Guard != nil && !tr.Guard(state.Draft, ev) {
		return state, false
	}

	next := state
	if tr.Patch != nil {
		tr.Patch(&next.Draft, ev)
	}
	next.Screen = tr.Next(next.Draft)
	return next, true
}

// Events lists the event types defined for a screen
func (t Table) Events(from Screen) []EventType {
	var out []EventType
	for _, kind := range []EventType{EventSubmit, EventNext, EventGrant, EventConfirm, EventAccept, EventBack} {
		if _, ok := t[from][kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}
