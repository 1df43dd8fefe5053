package groundcontrol

import (
	"time"

	"github.com/yegors/skyglyde/internal/telemetry"
)

// Message is one line of a Ground Control conversation
type Message struct {
	Role      string    `json:"role"` // "passenger" or "ground_control"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Roles of a conversation
const (
	RolePassenger     = "passenger"
	RoleGroundControl = "ground_control"
)

// FlightContext is what Ground Control knows about the passenger's trip
type FlightContext struct {
	Timestamp   time.Time                `json:"timestamp"`
	Screen      string                   `json:"screen"`
	Destination string                   `json:"destination"`
	Passengers  int                      `json:"passengers"`
	Departure   string                   `json:"departure,omitempty"`
	Arrival     string                   `json:"arrival,omitempty"`
	Telemetry   *telemetry.Telemetry     `json:"telemetry,omitempty"`
	Cabin       *telemetry.CabinSettings `json:"cabin,omitempty"`
	PhoneNumber string                   `json:"phone_number"`
}

// InFlight reports whether the context carries live telemetry
func (fc FlightContext) InFlight() bool { return fc.Telemetry != nil }

// Reply is Ground Control's answer to one question
type Reply struct {
	Question string  `json:"question"`
	Answer   Message `json:"answer"`
	// Offline is set when the answer came from the built-in responder
	// because the assistant could not be reached.
	Offline bool `json:"offline"`
}

// EmergencyContact is what the emergency panel's "Call" action shows
type EmergencyContact struct {
	PhoneNumber string `json:"phone_number"`
	Available   string `json:"available"`
}
