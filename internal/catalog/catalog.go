// Package catalog holds the static, read-only reference data of the
// booking flow: skyports, ground transport options and the popular
// destinations offered on the destination screen. Nothing in this
// package is mutated after startup.
package catalog

import "strings"

// Skyport is a boarding/landing facility
type Skyport struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Walk     string `json:"walk"`
	Features string `json:"features"`
}

// TransportID identifies a ground transport mode
type TransportID string

const (
	TransportWalk   TransportID = "walk"
	TransportPublic TransportID = "public"
	TransportRide   TransportID = "ride"
)

// TransportOption is one ground transport choice for a single leg
type TransportOption struct {
	ID   TransportID `json:"id"`
	Name string      `json:"name"`
	Time string      `json:"time"`
	Cost string      `json:"cost"`
}

// Destination is a suggested destination shown while the user types
type Destination struct {
	Name     string `json:"name"`
	Distance string `json:"distance"`
	Time     string `json:"time"`
}

const skyportFeatures = "Secure boarding • Flight supervision"

var skyports = [...]Skyport{
	{ID: 1, Name: "Friedrichstrasse Skyport", Walk: "2 min walk", Features: skyportFeatures},
	{ID: 2, Name: "Alexanderplatz Skyport", Walk: "8 min walk", Features: skyportFeatures},
	{ID: 3, Name: "Sudkreuz Skyport", Walk: "15 min walk", Features: skyportFeatures},
	{ID: 4, Name: "Westkreuz Skyport", Walk: "12 min walk", Features: skyportFeatures},
	{ID: 5, Name: "Ostkreuz Skyport", Walk: "10 min walk", Features: skyportFeatures},
	{ID: 6, Name: "Gesundbrunnen Skyport", Walk: "7 min walk", Features: skyportFeatures},
}

var transportOptions = [...]TransportOption{
	{ID: TransportWalk, Name: "Walk", Time: "5-15 min", Cost: "Free"},
	{ID: TransportPublic, Name: "Public Transport", Time: "10-20 min", Cost: "€2-4"},
	{ID: TransportRide, Name: "Ride Service", Time: "5-10 min", Cost: "€8-15"},
}

var popularDestinations = [...]Destination{
	{Name: "Alexanderplatz", Distance: "5.2 km", Time: "5 min"},
	{Name: "Brandenburg Gate", Distance: "4.8 km", Time: "4 min"},
	{Name: "Potsdamer Platz", Distance: "3.5 km", Time: "3 min"},
	{Name: "Charlottenburg Palace", Distance: "7.1 km", Time: "7 min"},
}

// Skyports returns a copy of the skyport catalog in display order
func Skyports() []Skyport {
	out := make([]Skyport, len(skyports))
	copy(out, skyports[:])
	return out
}

// SkyportByID looks up a skyport by its catalog ID
func SkyportByID(id int) (Skyport, bool) {
	for _, s := range skyports {
		if s.ID == id {
			return s, true
		}
	}
	return Skyport{}, false
}

// TransportOptions returns a fresh set of the three options. Every
// ground transport screen gets its own slice so legs never share one.
func TransportOptions() []TransportOption {
	out := make([]TransportOption, len(transportOptions))
	copy(out, transportOptions[:])
	return out
}

// TransportByID looks up a transport option
func TransportByID(id TransportID) (TransportOption, bool) {
	for _, t := range transportOptions {
		if t.ID == id {
			return t, true
		}
	}
	return TransportOption{}, false
}

// PopularDestinations returns every suggested destination
func PopularDestinations() []Destination {
	out := make([]Destination, len(popularDestinations))
	copy(out, popularDestinations[:])
	return out
}

// SuggestDestinations filters the popular destinations by a
// case-insensitive substring. An empty query returns all of them.
func SuggestDestinations(query string) []Destination {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return PopularDestinations()
	}
	var out []Destination
	for _, d := range popularDestinations {
		if strings.Contains(strings.ToLower(d.Name), query) {
			out = append(out, d)
		}
	}
	return out
}
