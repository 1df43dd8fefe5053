package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yegors/skyglyde/internal/catalog"
)

// Pricing holds the flat fare shown on the trip summary
type Pricing struct {
	EstimatedTotalEUR int `toml:"estimated_total_eur" json:"estimated_total_eur"`
	SeatsPerVehicle   int `toml:"seats_per_vehicle" json:"seats_per_vehicle"`
}

// DefaultPricing is a flat €45 including all transport segments, two
// passengers per taxi.
func DefaultPricing() Pricing {
	return Pricing{EstimatedTotalEUR: 45, SeatsPerVehicle: 2}
}

// Vehicles returns how many taxis a party needs
func (p Pricing) Vehicles(passengers int) int {
	seats := p.SeatsPerVehicle
	if seats < 1 {
		seats = 1
	}
	if passengers < 1 {
		return 0
	}
	return (passengers + seats - 1) / seats
}

// Booking is a confirmed trip, built from a complete draft
type Booking struct {
	ID                string                  `json:"id"`
	Destination       string                  `json:"destination"`
	Passengers        int                     `json:"passengers"`
	Vehicles          int                     `json:"vehicles"`
	Departure         catalog.Skyport         `json:"departure"`
	Arrival           catalog.Skyport         `json:"arrival"`
	TransportTo       catalog.TransportOption `json:"transport_to"`
	TransportFrom     catalog.TransportOption `json:"transport_from"`
	EstimatedTotalEUR int                     `json:"estimated_total_eur"`
	CreatedAt         time.Time               `json:"created_at"`
}

var errDraftIncomplete = errors.New("draft is not ready for summary")

// NewBooking turns a finished draft into a booking record
func NewBooking(d Draft, pricing Pricing, now time.Time) (*Booking, error) {
	if !d.ReadyForSummary() {
		return nil, errDraftIncomplete
	}
	return &Booking{
		ID:                uuid.NewString(),
		Destination:       d.Destination,
		Passengers:        d.Passengers,
		Vehicles:          pricing.Vehicles(d.Passengers),
		Departure:         *d.SkyportDeparture,
		Arrival:           *d.SkyportArrival,
		TransportTo:       *d.GroundTransportTo,
		TransportFrom:     *d.GroundTransportFrom,
		EstimatedTotalEUR: pricing.EstimatedTotalEUR,
		CreatedAt:         now.UTC(),
	}, nil
}
