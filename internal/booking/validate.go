package booking

import (
	"errors"
	"fmt"

	"github.com/yegors/skyglyde/internal/catalog"
)

// representativeDrafts covers both sides of every draft-dependent edge
// in the table: a small party and one that needs several taxis.
func representativeDrafts() []Draft {
	skyport := catalog.Skyports()[0]
	transport := catalog.TransportOptions()[0]
	base := Draft{
		Destination:         "Alexanderplatz",
		Passengers:          1,
		SkyportArrival:      &skyport,
		SkyportDeparture:    &skyport,
		GroundTransportTo:   &transport,
		GroundTransportFrom: &transport,
		LocationEnabled:     true,
	}
	group := base
	group.Passengers = MultiVehicleThreshold
	return []Draft{base, group}
}

// ValidateTable checks a transition table as data. It reports every
// problem it finds, joined into one error:
//   - every screen except the terminal one has an outgoing event, and
//     the terminal screen has none;
//   - every target, for each representative draft, is a known screen;
//   - every screen is reachable from the initial screen;
//   - a back edge never strands the user: the screen it leaves must be
//     reachable again from where it lands.
func ValidateTable(t Table) error {
	var errs []error

	for _, s := range screenOrder {
		events := t[s]
		if s == TerminalScreen {
			if len(events) > 0 {
				errs = append(errs, fmt.Errorf("terminal screen %s has %d outgoing events", s, len(events)))
			}
			continue
		}
		if len(events) == 0 {
			errs = append(errs, fmt.Errorf("screen %s has no outgoing events", s))
		}
	}
	for s := range t {
		if !s.Valid() {
			errs = append(errs, fmt.Errorf("table has unknown source screen %q", s))
		}
	}

	graph := make(map[Screen]map[Screen]bool)
	for from, events := range t {
		for kind, tr := range events {
			if tr.Next == nil {
				errs = append(errs, fmt.Errorf("%s.%s has no next screen", from, kind))
				continue
			}
			for _, d := range representativeDrafts() {
				target := tr.Next(d)
				if !target.Valid() {
					errs = append(errs, fmt.Errorf("%s.%s leads to unknown screen %q", from, kind, target))
					continue
				}
				if graph[from] == nil {
					graph[from] = make(map[Screen]bool)
				}
				graph[from][target] = true
			}
		}
	}

	fromInitial := reachable(graph, InitialScreen)
	for _, s := range screenOrder {
		if !fromInitial[s] {
			errs = append(errs, fmt.Errorf("screen %s is unreachable from %s", s, InitialScreen))
		}
	}

	for from, events := range t {
		back, ok := events[EventBack]
		if !ok || back.Next == nil {
			continue
		}
		for _, d := range representativeDrafts() {
			target := back.Next(d)
			if !target.Valid() {
				continue
			}
			if target == from {
				errs = append(errs, fmt.Errorf("back from %s stays on %s (passengers=%d)", from, from, d.Passengers))
				continue
			}
			if !reachable(graph, target)[from] {
				errs = append(errs, fmt.Errorf("back from %s to %s cannot return to %s", from, target, from))
			}
		}
	}

	return errors.Join(errs...)
}

func reachable(graph map[Screen]map[Screen]bool, start Screen) map[Screen]bool {
	seen := map[Screen]bool{start: true}
	queue := []Screen{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for next := range graph[current] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}
