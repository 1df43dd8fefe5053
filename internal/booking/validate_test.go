package booking

import (
	"strings"
	"testing"
)

func TestShippedTableIsValid(t *testing.T) {
	if err := ValidateTable(NewTable(DefaultMatcher())); err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}
}

func TestValidateTableFindsProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Table)
		want   string
	}{
		{
			name:   "terminal with outgoing event",
			mutate: func(t Table) { t[ScreenInFlight] = map[EventType]Transition{EventBack: {Next: to(ScreenSummary)}} },
			want:   "terminal screen inFlight",
		},
		{
			name:   "dead end",
			mutate: func(t Table) { delete(t, ScreenSummary) },
			want:   "screen summary has no outgoing events",
		},
		{
			name: "unknown target",
			mutate: func(t Table) {
				t[ScreenHowItWorks][EventNext] = Transition{Next: to(Screen("faq"))}
			},
			want: `leads to unknown screen "faq"`,
		},
		{
			name: "unreachable detour",
			mutate: func(t Table) {
				t[ScreenPassengers][EventSubmit] = Transition{Next: to(ScreenSkyportDeparture)}
				t[ScreenSkyportDeparture][EventBack] = Transition{Next: to(ScreenPassengers)}
			},
			want: "screen multipleVehicles is unreachable",
		},
		{
			name: "back edge that stays put",
			mutate: func(t Table) {
				t[ScreenSkyportDeparture][EventBack] = Transition{Next: to(ScreenSkyportDeparture)}
			},
			want: "back from skyportDeparture stays on skyportDeparture",
		},
		{
			name: "back reusing forward routing",
			mutate: func(t Table) {
				t[ScreenSkyportDeparture][EventBack] = Transition{Next: afterPassengers}
			},
			want: "back from skyportDeparture stays on skyportDeparture (passengers=1)",
		},
		{
			name: "back into a dead end",
			mutate: func(t Table) {
				t[ScreenGroundTransportTo][EventBack] = Transition{Next: to(ScreenInFlight)}
			},
			want: "back from groundTransportTo to inFlight",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(DefaultMatcher())
			tt.mutate(table)
			err := ValidateTable(table)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
