// Package receipt renders the trip summary of a confirmed booking as a
// one-page PDF.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/yegors/skyglyde/internal/booking"
)

// Render builds the PDF receipt and a download file name for it
func Render(b *booking.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sky-Glyde Trip Receipt", false)
	pdf.SetAuthor("Sky-Glyde", false)
	pdf.AddPage()

	// gofpdf core fonts are cp1252; the euro sign and bullets need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, "Sky-Glyde")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Certified Autonomous Flight")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "TRIP SUMMARY")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : %s", b.ID),
		fmt.Sprintf("Booked at      : %s", b.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
		fmt.Sprintf("Destination    : %s", safe(b.Destination)),
		fmt.Sprintf("Passengers     : %d (%s)", b.Passengers, vehiclesLabel(b.Vehicles)),
		fmt.Sprintf("To skyport     : %s, %s", b.TransportTo.Name, b.TransportTo.Time),
		fmt.Sprintf("Departure      : %s (%s)", b.Departure.Name, b.Departure.Walk),
		fmt.Sprintf("Arrival        : %s (%s)", b.Arrival.Name, b.Arrival.Walk),
		fmt.Sprintf("From skyport   : %s, %s", b.TransportFrom.Name, b.TransportFrom.Time),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, tr(fmt.Sprintf("ESTIMATED TOTAL  €%d", b.EstimatedTotalEUR)))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Includes all transport segments. Ground transport costs are estimates and are paid to the provider.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render receipt: %w", err)
	}

	filename := fmt.Sprintf("SKYGLYDE_%s.pdf", shortID(b.ID))
	return buf.Bytes(), filename, nil
}

func vehiclesLabel(n int) string {
	if n == 1 {
		return "1 vehicle"
	}
	return fmt.Sprintf("%d vehicles", n)
}

func safe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
