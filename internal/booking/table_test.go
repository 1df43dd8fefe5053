package booking

import (
	"testing"

	"github.com/yegors/skyglyde/internal/catalog"
)

func stateAt(screen Screen, passengers int) State {
	s := InitialState()
	s.Screen = screen
	s.Draft.Passengers = passengers
	return s
}

func TestPassengerRouting(t *testing.T) {
	table := NewTable(DefaultMatcher())
	tests := []struct {
		passengers int
		want       Screen
	}{
		{1, ScreenSkyportDeparture},
		{2, ScreenSkyportDeparture},
		{3, ScreenMultipleVehicles},
		{7, ScreenMultipleVehicles},
	}
	for _, tt := range tests {
		next, fired := table.Apply(stateAt(ScreenPassengers, 1), SubmitPassengers(tt.passengers))
		if !fired {
			t.Fatalf("submit(%d) did not fire", tt.passengers)
		}
		if next.Screen != tt.want {
			t.Errorf("submit(%d) -> %s, want %s", tt.passengers, next.Screen, tt.want)
		}
		if next.Draft.Passengers != tt.passengers {
			t.Errorf("submit(%d) stored %d passengers", tt.passengers, next.Draft.Passengers)
		}
	}

	for _, n := range []int{0, -1} {
		if _, fired := table.Apply(stateAt(ScreenPassengers, 1), SubmitPassengers(n)); fired {
			t.Errorf("submit(%d) should be guarded out", n)
		}
	}
}

func TestMultipleVehiclesContinuesToDeparture(t *testing.T) {
	table := NewTable(DefaultMatcher())
	next, fired := table.Apply(stateAt(ScreenMultipleVehicles, 3), Next())
	if !fired || next.Screen != ScreenSkyportDeparture {
		t.Fatalf("multipleVehicles.next -> %s (fired=%v), want skyportDeparture", next.Screen, fired)
	}
	back, _ := table.Apply(stateAt(ScreenMultipleVehicles, 3), Back())
	if back.Screen != ScreenPassengers {
		t.Fatalf("multipleVehicles.back -> %s, want passengers", back.Screen)
	}
}

func TestSkyportDepartureBackDependsOnPassengers(t *testing.T) {
	table := NewTable(DefaultMatcher())

	for _, n := range []int{1, 2} {
		small, fired := table.Apply(stateAt(ScreenSkyportDeparture, n), Back())
		if !fired || small.Screen != ScreenPassengers {
			t.Errorf("back with %d passengers -> %s (fired=%v), want passengers", n, small.Screen, fired)
		}
	}
	group, _ := table.Apply(stateAt(ScreenSkyportDeparture, 3), Back())
	if group.Screen != ScreenMultipleVehicles {
		t.Errorf("back with 3 passengers -> %s, want multipleVehicles", group.Screen)
	}
}

func TestFixedBackEdges(t *testing.T) {
	table := NewTable(DefaultMatcher())
	tests := []struct {
		from, want Screen
	}{
		{ScreenHowItWorks, ScreenHome},
		{ScreenLocationAccess, ScreenHowItWorks},
		{ScreenPassengers, ScreenLocationAccess},
		{ScreenGroundTransportTo, ScreenSkyportDeparture},
		{ScreenGroundTransportFrom, ScreenGroundTransportTo},
		{ScreenSummary, ScreenGroundTransportFrom},
	}
	for _, tt := range tests {
		next, fired := table.Apply(stateAt(tt.from, 1), Back())
		if !fired || next.Screen != tt.want {
			t.Errorf("%s.back -> %s (fired=%v), want %s", tt.from, next.Screen, fired, tt.want)
		}
	}

	for _, s := range []Screen{ScreenHome, ScreenSafetyBriefing, ScreenInFlight} {
		if _, fired := table.Apply(stateAt(s, 1), Back()); fired {
			t.Errorf("%s offers back", s)
		}
	}
}

func TestAdvanceDisabledUntilSelectionSet(t *testing.T) {
	table := NewTable(DefaultMatcher())
	skyport := catalog.Skyports()[0]
	walk := catalog.TransportOptions()[0]

	tests := []struct {
		screen  Screen
		unset   Event
		set     Event
		wantNew Screen
	}{
		{ScreenHome, SubmitDestination(""), SubmitDestination("Alexanderplatz"), ScreenHowItWorks},
		{ScreenHome, SubmitDestination("   "), SubmitDestination(" x "), ScreenHowItWorks},
		{ScreenSkyportDeparture, Event{Type: EventSubmit}, SubmitSkyport(skyport), ScreenGroundTransportTo},
		{ScreenGroundTransportTo, Event{Type: EventSubmit}, SubmitTransport(walk), ScreenGroundTransportFrom},
		{ScreenGroundTransportFrom, Event{Type: EventSubmit}, SubmitTransport(walk), ScreenSummary},
		{ScreenSafetyBriefing, Accept(false), Accept(true), ScreenInFlight},
	}
	for _, tt := range tests {
		state := stateAt(tt.screen, 1)
		if table.Allows(state, tt.unset) {
			t.Errorf("%s: advance enabled with nothing selected", tt.screen)
		}
		unchanged, fired := table.Apply(state, tt.unset)
		if fired || unchanged.Screen != tt.screen {
			t.Errorf("%s: transition fired without selection", tt.screen)
		}
		if !table.Allows(state, tt.set) {
			t.Errorf("%s: advance still disabled after selection", tt.screen)
		}
		next, fired := table.Apply(state, tt.set)
		if !fired || next.Screen != tt.wantNew {
			t.Errorf("%s: -> %s (fired=%v), want %s", tt.screen, next.Screen, fired, tt.wantNew)
		}
	}
}

func TestHomeSubmitDerivesArrival(t *testing.T) {
	table := NewTable(DefaultMatcher())
	next, fired := table.Apply(InitialState(), SubmitDestination("  Charlottenburg Palace "))
	if !fired {
		t.Fatal("submit did not fire")
	}
	if next.Draft.Destination != "Charlottenburg Palace" {
		t.Errorf("destination = %q", next.Draft.Destination)
	}
	if next.Draft.SkyportArrival == nil || next.Draft.SkyportArrival.ID != 4 {
		t.Errorf("arrival = %+v, want skyport 4", next.Draft.SkyportArrival)
	}
}

func TestLocationGrantIsMandatory(t *testing.T) {
	table := NewTable(DefaultMatcher())
	if _, fired := table.Apply(stateAt(ScreenLocationAccess, 1), Grant(false)); fired {
		t.Fatal("declining location access advanced the flow")
	}
	next, fired := table.Apply(stateAt(ScreenLocationAccess, 1), Grant(true))
	if !fired || next.Screen != ScreenPassengers || !next.Draft.LocationEnabled {
		t.Fatalf("grant(true) -> %+v (fired=%v)", next, fired)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	table := NewTable(DefaultMatcher())
	before := stateAt(ScreenSkyportDeparture, 1)
	_, _ = table.Apply(before, SubmitSkyport(catalog.Skyports()[2]))
	if before.Draft.SkyportDeparture != nil || before.Screen != ScreenSkyportDeparture {
		t.Fatalf("input state mutated: %+v", before)
	}
}

func TestInFlightIsTerminal(t *testing.T) {
	table := NewTable(DefaultMatcher())
	state := stateAt(ScreenInFlight, 1)
	for _, ev := range []Event{Next(), Back(), Confirm(), Accept(true), Grant(true), SubmitDestination("x")} {
		if _, fired := table.Apply(state, ev); fired {
			t.Errorf("inFlight accepted %s", ev.Type)
		}
	}
	if events := table.Events(ScreenInFlight); len(events) != 0 {
		t.Errorf("inFlight lists events %v", events)
	}
}
