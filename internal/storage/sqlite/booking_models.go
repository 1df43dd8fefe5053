package sqlite

import (
	"fmt"
	"time"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/catalog"
)

// BookingRecord is a confirmed booking as stored. Skyports and
// transport options are stored by catalog ID; the catalog owns them.
type BookingRecord struct {
	ID                 string    `json:"id"`
	Destination        string    `json:"destination"`
	Passengers         int       `json:"passengers"`
	Vehicles           int       `json:"vehicles"`
	DepartureSkyportID int       `json:"departure_skyport_id"`
	ArrivalSkyportID   int       `json:"arrival_skyport_id"`
	TransportTo        string    `json:"transport_to"`
	TransportFrom      string    `json:"transport_from"`
	EstimatedTotalEUR  int       `json:"estimated_total_eur"`
	CreatedAt          time.Time `json:"created_at"`
}

func recordFromBooking(b *booking.Booking) *BookingRecord {
	return &BookingRecord{
		ID:                 b.ID,
		Destination:        b.Destination,
		Passengers:         b.Passengers,
		Vehicles:           b.Vehicles,
		DepartureSkyportID: b.Departure.ID,
		ArrivalSkyportID:   b.Arrival.ID,
		TransportTo:        string(b.TransportTo.ID),
		TransportFrom:      string(b.TransportFrom.ID),
		EstimatedTotalEUR:  b.EstimatedTotalEUR,
		CreatedAt:          b.CreatedAt,
	}
}

// toBooking resolves catalog references back into a booking
func (r *BookingRecord) toBooking() (*booking.Booking, error) {
	departure, ok := catalog.SkyportByID(r.DepartureSkyportID)
	if !ok {
		return nil, fmt.Errorf("booking %s references unknown departure skyport %d", r.ID, r.DepartureSkyportID)
	}
	arrival, ok := catalog.SkyportByID(r.ArrivalSkyportID)
	if !ok {
		return nil, fmt.Errorf("booking %s references unknown arrival skyport %d", r.ID, r.ArrivalSkyportID)
	}
	to, ok := catalog.TransportByID(catalog.TransportID(r.TransportTo))
	if !ok {
		return nil, fmt.Errorf("booking %s references unknown transport %q", r.ID, r.TransportTo)
	}
	from, ok := catalog.TransportByID(catalog.TransportID(r.TransportFrom))
	if !ok {
		return nil, fmt.Errorf("booking %s references unknown transport %q", r.ID, r.TransportFrom)
	}
	return &booking.Booking{
		ID:                r.ID,
		Destination:       r.Destination,
		Passengers:        r.Passengers,
		Vehicles:          r.Vehicles,
		Departure:         departure,
		Arrival:           arrival,
		TransportTo:       to,
		TransportFrom:     from,
		EstimatedTotalEUR: r.EstimatedTotalEUR,
		CreatedAt:         r.CreatedAt,
	}, nil
}
