package groundcontrol

import (
	"bytes"
	"fmt"
	"text/template"
)

const systemPromptText = `You are Sky-Glyde Ground Control, the remote operations desk for an autonomous air taxi over Berlin.
Answer the passenger calmly in at most three short sentences. Never invent flight data that is not listed below.
If the passenger reports a medical or safety emergency, tell them to call {{.PhoneNumber}} immediately.

Trip:
- Destination: {{or .Destination "not set"}}
- Passengers: {{.Passengers}}
{{- with .Departure}}
- Departure skyport: {{.}}
{{- end}}
{{- with .Arrival}}
- Arrival skyport: {{.}}
{{- end}}
- Booking step: {{.Screen}}
{{- if .InFlight}}

Live flight data:
- Altitude: {{printf "%.0f" .Telemetry.AltitudeM}} m
- Battery: {{printf "%.0f" .Telemetry.BatteryPct}} %
- Airspeed: {{printf "%.0f" .Telemetry.AirspeedKmh}} km/h
- Phase: {{.Telemetry.FlightPhase}}, arriving {{.Telemetry.ArrivalTime}}
{{- with .Cabin}}
- Cabin: {{.TemperatureC}} °C, audio volume {{.VolumePct}} %
{{- end}}
{{- else}}

The passenger is not airborne yet.
{{- end}}
`

var systemPrompt = template.Must(template.New("ground-control").Parse(systemPromptText))

// RenderSystemPrompt renders the assistant instructions for a flight
func RenderSystemPrompt(fc FlightContext) (string, error) {
	var buf bytes.Buffer
	if err := systemPrompt.Execute(&buf, fc); err != nil {
		return "", fmt.Errorf("failed to render ground control prompt: %w", err)
	}
	return buf.String(), nil
}
