package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/clock"
	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/internal/groundcontrol"
	"github.com/yegors/skyglyde/internal/session"
	"github.com/yegors/skyglyde/internal/storage/sqlite"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

type testServer struct {
	*httptest.Server
	clock *clock.FakeClock
}

type failingSubmitter struct{}

func (failingSubmitter) SubmitBooking(context.Context, *booking.Booking) error {
	return errors.New("database is locked")
}

// newTestServer wires the API around an in-memory ledger. A non-nil
// submitter replaces the ledger for confirmations.
func newTestServer(t *testing.T, submitter booking.Submitter) *testServer {
	t.Helper()
	cfg := config.DefaultConfig()
	log := logger.Nop()
	c := clock.Fake(time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC))

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := sqlite.NewBookingStorage(db, log)
	if err != nil {
		t.Fatalf("NewBookingStorage: %v", err)
	}
	if submitter == nil {
		submitter = store
	}

	simCfg := cfg.SimulatorConfig()
	simCfg.Seed = 3
	sessions := session.NewManager(context.Background(), session.Config{
		Controller: booking.ControllerConfig{Submitter: submitter, Pricing: cfg.Pricing},
		Simulator:  telemetry.NewSimulator(simCfg, c, log),
	}, c, log)

	router := NewRouter(Dependencies{
		Sessions:      sessions,
		Bookings:      store,
		GroundControl: groundcontrol.NewServiceWithResponder(nil, cfg.GroundControl.PhoneNumber, log),
	}, cfg, log)

	srv := httptest.NewServer(router.Routes())
	t.Cleanup(srv.Close)
	t.Cleanup(sessions.Stop)
	return &testServer{Server: srv, clock: c}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+"/api/v1"+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func (ts *testServer) createSession(t *testing.T) session.Snapshot {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/sessions", nil)
	if status != http.StatusCreated {
		t.Fatalf("create session: %d %s", status, body)
	}
	return decode[session.Snapshot](t, body)
}

func (ts *testServer) event(t *testing.T, id string, ev map[string]any) session.Snapshot {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/sessions/"+id+"/events", ev)
	if status != http.StatusOK {
		t.Fatalf("event %v: %d %s", ev, status, body)
	}
	return decode[session.Snapshot](t, body)
}

var potsdamerToSummary = []map[string]any{
	{"type": "submit", "destination": "Potsdamer Platz"},
	{"type": "next"},
	{"type": "grant", "granted": true},
	{"type": "submit", "passengers": 1},
	{"type": "submit", "skyport_id": 1},
	{"type": "submit", "transport_id": "walk"},
	{"type": "submit", "transport_id": "ride"},
}

func TestBookingFlowEndToEnd(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t).ID

	for _, ev := range potsdamerToSummary {
		ts.event(t, id, ev)
	}
	if status, _ := ts.do(t, http.MethodGet, "/sessions/"+id+"/telemetry", nil); status != http.StatusNotFound {
		t.Fatalf("telemetry before departure: %d", status)
	}

	ts.event(t, id, map[string]any{"type": "confirm"})
	final := ts.event(t, id, map[string]any{"type": "accept", "accepted": true})
	if final.Screen != booking.ScreenInFlight {
		t.Fatalf("final screen %s", final.Screen)
	}
	if final.Draft.SkyportArrival == nil || final.Draft.SkyportArrival.ID != 3 {
		t.Fatalf("arrival %+v", final.Draft.SkyportArrival)
	}
	if final.Booking == nil || final.Booking.EstimatedTotalEUR != 45 {
		t.Fatalf("booking %+v", final.Booking)
	}

	status, body := ts.do(t, http.MethodGet, "/sessions/"+id+"/telemetry", nil)
	if status != http.StatusOK {
		t.Fatalf("telemetry in flight: %d %s", status, body)
	}
	if frame := decode[telemetry.Telemetry](t, body); frame.AltitudeM != 120 || frame.FlightPhase != "En Route" {
		t.Fatalf("initial frame %+v", frame)
	}

	status, body = ts.do(t, http.MethodGet, "/bookings", nil)
	if status != http.StatusOK {
		t.Fatalf("list bookings: %d %s", status, body)
	}
	listed := decode[[]map[string]any](t, body)
	if len(listed) != 1 || listed[0]["id"] != final.Booking.ID || listed[0]["booked_ago"] == "" {
		t.Fatalf("listed bookings %v", listed)
	}

	status, body = ts.do(t, http.MethodGet, "/bookings/"+final.Booking.ID+"/receipt", nil)
	if status != http.StatusOK || !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Fatalf("receipt: %d %q", status, body[:min(len(body), 16)])
	}

	if status, _ := ts.do(t, http.MethodDelete, "/sessions/"+id, nil); status != http.StatusNoContent {
		t.Fatalf("close session: %d", status)
	}
	ts.clock.WaitForTimers(0)
	if status, _ := ts.do(t, http.MethodGet, "/sessions/"+id, nil); status != http.StatusNotFound {
		t.Fatalf("closed session still served: %d", status)
	}
}

func TestDisabledEventReturnsConflict(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t).ID

	for _, ev := range []map[string]any{
		{"type": "next"},
		{"type": "submit", "destination": "   "},
		{"type": "grant", "granted": true},
	} {
		status, body := ts.do(t, http.MethodPost, "/sessions/"+id+"/events", ev)
		if status != http.StatusConflict {
			t.Fatalf("%v on home: %d %s", ev, status, body)
		}
		resp := decode[errorResponse](t, body)
		if resp.Session == nil || resp.Session.Screen != booking.ScreenHome || resp.Session.Draft.Destination != "" {
			t.Fatalf("state changed after disabled event: %+v", resp.Session)
		}
	}
}

func TestEventValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t).ID

	tests := []map[string]any{
		{"type": "fly"},
		{},
		{"type": "submit", "transport_id": "teleport"},
		{"type": "submit", "skyport_id": 42},
	}
	for _, ev := range tests {
		if status, body := ts.do(t, http.MethodPost, "/sessions/"+id+"/events", ev); status != http.StatusBadRequest {
			t.Errorf("%v: %d %s", ev, status, body)
		}
	}
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/sessions/nope", "/sessions/nope/telemetry"} {
		if status, _ := ts.do(t, http.MethodGet, path, nil); status != http.StatusNotFound {
			t.Errorf("GET %s: %d", path, status)
		}
	}
	if status, _ := ts.do(t, http.MethodPost, "/sessions/nope/events", map[string]any{"type": "next"}); status != http.StatusNotFound {
		t.Errorf("event on unknown session: %d", status)
	}
}

func TestSubmissionFailureReturnsBadGateway(t *testing.T) {
	ts := newTestServer(t, failingSubmitter{})
	id := ts.createSession(t).ID
	for _, ev := range potsdamerToSummary {
		ts.event(t, id, ev)
	}

	status, body := ts.do(t, http.MethodPost, "/sessions/"+id+"/events", map[string]any{"type": "confirm"})
	if status != http.StatusBadGateway {
		t.Fatalf("confirm with failing store: %d %s", status, body)
	}
	resp := decode[errorResponse](t, body)
	if resp.Error != "booking submission failed" || resp.Session == nil || resp.Session.Screen != booking.ScreenSummary {
		t.Fatalf("unexpected failure response %+v", resp)
	}
}

func TestTelemetryWebSocketClosesWhenFlightEnds(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t).ID
	for _, ev := range potsdamerToSummary {
		ts.event(t, id, ev)
	}
	ts.event(t, id, map[string]any{"type": "confirm"})
	ts.event(t, id, map[string]any{"type": "accept", "accepted": true})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/sessions/" + id + "/telemetry/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg TelemetryMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "telemetry" || msg.Display.AltitudeM != 120 || msg.Display.BatteryPct != 85 {
		t.Fatalf("first message %+v", msg)
	}

	if status, body := ts.do(t, http.MethodPost, "/sessions/"+id+"/reset", nil); status != http.StatusOK {
		t.Fatalf("reset: %d %s", status, body)
	}

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("stream ended with %v, want normal closure", err)
	}
}

func TestTelemetryWebSocketRequiresFlight(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t).ID

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/sessions/" + id + "/telemetry/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded before departure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("handshake response %+v", resp)
	}
}

func TestCabinAndGroundControl(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t).ID

	status, body := ts.do(t, http.MethodPut, "/sessions/"+id+"/cabin", map[string]any{"temperature_c": 30})
	if status != http.StatusOK {
		t.Fatalf("cabin: %d %s", status, body)
	}
	if cabin := decode[telemetry.CabinSettings](t, body); cabin.TemperatureC != 26 || cabin.VolumePct != 50 {
		t.Fatalf("cabin %+v", cabin)
	}
	if status, _ := ts.do(t, http.MethodPut, "/sessions/"+id+"/cabin", map[string]any{}); status != http.StatusBadRequest {
		t.Fatalf("empty cabin update: %d", status)
	}

	status, body = ts.do(t, http.MethodPost, "/sessions/"+id+"/ground-control", map[string]any{"question": "This is an emergency"})
	if status != http.StatusOK {
		t.Fatalf("ground control: %d %s", status, body)
	}
	reply := decode[groundcontrol.Reply](t, body)
	if !reply.Offline || !strings.Contains(reply.Answer.Content, "+49 30 1234 5678") {
		t.Fatalf("reply %+v", reply)
	}
	if status, _ := ts.do(t, http.MethodPost, "/sessions/"+id+"/ground-control", map[string]any{"question": ""}); status != http.StatusBadRequest {
		t.Fatalf("blank question: %d", status)
	}

	status, body = ts.do(t, http.MethodGet, "/ground-control/emergency", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "+49 30 1234 5678") {
		t.Fatalf("emergency contact: %d %s", status, body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body := ts.do(t, http.MethodGet, "/catalog/skyports", nil)
	if status != http.StatusOK || len(decode[[]map[string]any](t, body)) != 6 {
		t.Fatalf("skyports: %d %s", status, body)
	}
	status, body = ts.do(t, http.MethodGet, "/catalog/transport", nil)
	if status != http.StatusOK || len(decode[[]map[string]any](t, body)) != 3 {
		t.Fatalf("transport: %d %s", status, body)
	}
	status, body = ts.do(t, http.MethodGet, "/catalog/destinations?q=alex", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "Alexanderplatz") {
		t.Fatalf("destinations: %d %s", status, body)
	}

	status, body = ts.do(t, http.MethodGet, "/match?destination=near%20ALEXANDERPLATZ%20please", nil)
	if status != http.StatusOK {
		t.Fatalf("match: %d %s", status, body)
	}
	match := decode[struct {
		Skyport struct {
			ID int `json:"id"`
		} `json:"skyport"`
	}](t, body)
	if match.Skyport.ID != 2 {
		t.Fatalf("matched skyport %d, want 2", match.Skyport.ID)
	}

	status, body = ts.do(t, http.MethodGet, "/health", nil)
	if status != http.StatusOK || !strings.Contains(string(body), `"storage":true`) {
		t.Fatalf("health: %d %s", status, body)
	}
}

func TestBookingNotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	if status, _ := ts.do(t, http.MethodGet, "/bookings/missing", nil); status != http.StatusNotFound {
		t.Fatalf("missing booking: %d", status)
	}
	if status, _ := ts.do(t, http.MethodGet, "/bookings?limit=0", nil); status != http.StatusBadRequest {
		t.Fatalf("bad limit: %d", status)
	}
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"browser request", http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173"},
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+"/api/v1/health", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("%s: %v", tt.method, err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin == "" && resp.Header.Get("Access-Control-Allow-Methods") != "" {
				t.Error("CORS methods set without an Origin")
			}
		})
	}
}
