package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/catalog"
)

func TestRenderProducesPDF(t *testing.T) {
	departure, _ := catalog.SkyportByID(1)
	arrival, _ := catalog.SkyportByID(3)
	walk, _ := catalog.TransportByID(catalog.TransportWalk)
	ride, _ := catalog.TransportByID(catalog.TransportRide)

	b := &booking.Booking{
		ID:                "3f1c2a9e-1111-2222-3333-444455556666",
		Destination:       "Potsdamer Platz",
		Passengers:        1,
		Vehicles:          1,
		Departure:         departure,
		Arrival:           arrival,
		TransportTo:       walk,
		TransportFrom:     ride,
		EstimatedTotalEUR: 45,
		CreatedAt:         time.Date(2026, 10, 16, 14, 5, 0, 0, time.UTC),
	}

	data, filename, err := Render(b)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
	if filename != "SKYGLYDE_3F1C2A9E.pdf" {
		t.Fatalf("filename = %q", filename)
	}
	if !strings.HasSuffix(strings.TrimSpace(string(data)), "%%EOF") {
		t.Fatal("PDF is truncated")
	}
}
