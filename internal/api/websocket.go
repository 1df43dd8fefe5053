package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

const telemetryWriteTimeout = 10 * time.Second

// TelemetryMessage is one frame pushed over the telemetry WebSocket
type TelemetryMessage struct {
	Type      string              `json:"type"`
	Telemetry telemetry.Telemetry `json:"telemetry"`
	Display   TelemetryDisplay    `json:"display"`
}

// TelemetryDisplay holds the values exactly as the dashboard shows them
type TelemetryDisplay struct {
	AltitudeM   int `json:"altitude_m"`
	BatteryPct  int `json:"battery_pct"`
	AirspeedKmh int `json:"airspeed_kmh"`
}

func newTelemetryMessage(frame telemetry.Telemetry) TelemetryMessage {
	altitude, battery, airspeed := frame.Display()
	return TelemetryMessage{
		Type:      "telemetry",
		Telemetry: frame,
		Display:   TelemetryDisplay{AltitudeM: altitude, BatteryPct: battery, AirspeedKmh: airspeed},
	}
}

// StreamTelemetry upgrades to a WebSocket and pushes every frame that
// changes the dashboard until the flight ends or the client leaves.
func (h *Handler) StreamTelemetry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	frames, unsubscribe, ok := s.SubscribeTelemetry()
	if !ok {
		writeError(w, http.StatusNotFound, "flight has not departed")
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client
		h.logger.Warn("WebSocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.WithSession(s.ID)
	log.Debug("Telemetry stream opened")

	// The read loop only notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	detector := telemetry.NewChangeDetector(log)
	for {
		select {
		case <-gone:
			log.Debug("Telemetry client disconnected")
			return
		case frame, open := <-frames:
			if !open {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "flight ended")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				log.Debug("Telemetry stream closed, flight ended")
				return
			}
			if !detector.DetectChange(frame) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(telemetryWriteTimeout))
			if err := conn.WriteJSON(newTelemetryMessage(frame)); err != nil {
				log.Debug("Telemetry write failed", logger.Error(err))
				return
			}
		}
	}
}
