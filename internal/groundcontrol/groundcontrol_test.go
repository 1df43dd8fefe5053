package groundcontrol

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/catalog"
	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/internal/session"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

var now = time.Date(2026, 10, 16, 14, 10, 0, 0, time.UTC)

func inFlightContext() FlightContext {
	frame := telemetry.Initial(telemetry.DefaultConfig(), now)
	cabin := telemetry.DefaultCabin()
	return FlightContext{
		Timestamp:   now,
		Screen:      string(booking.ScreenInFlight),
		Destination: "Potsdamer Platz",
		Passengers:  1,
		Departure:   "Berlin Hauptbahnhof Skyport",
		Arrival:     "Potsdamer Platz Skyport",
		Telemetry:   &frame,
		Cabin:       &cabin,
		PhoneNumber: "+49 30 1234 5678",
	}
}

func TestContextFromSnapshot(t *testing.T) {
	departure, _ := catalog.SkyportByID(1)
	arrival, _ := catalog.SkyportByID(3)
	frame := telemetry.Initial(telemetry.DefaultConfig(), now)

	snap := session.Snapshot{
		Screen: booking.ScreenSummary,
		Draft: booking.Draft{
			Destination:      "Potsdamer Platz",
			Passengers:       2,
			SkyportDeparture: &departure,
			SkyportArrival:   &arrival,
		},
		Telemetry: &frame,
		Cabin:     telemetry.DefaultCabin(),
	}

	fc := ContextFromSnapshot(snap, "112", now)
	if fc.Departure != departure.Name || fc.Arrival != arrival.Name || fc.Passengers != 2 {
		t.Fatalf("unexpected context %+v", fc)
	}
	if fc.InFlight() {
		t.Fatal("telemetry attached before the in-flight screen")
	}

	snap.Screen = booking.ScreenInFlight
	fc = ContextFromSnapshot(snap, "112", now)
	if !fc.InFlight() || fc.Cabin == nil || fc.Cabin.TemperatureC != 22 {
		t.Fatalf("in-flight context missing live data: %+v", fc)
	}
}

func TestRenderSystemPrompt(t *testing.T) {
	prompt, err := RenderSystemPrompt(inFlightContext())
	if err != nil {
		t.Fatalf("RenderSystemPrompt: %v", err)
	}
	for _, want := range []string{"Potsdamer Platz Skyport", "Altitude: 120 m", "Battery: 85 %", "arriving 14:23", "+49 30 1234 5678", "22 °C"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	grounded, err := RenderSystemPrompt(FlightContext{Screen: "home", Passengers: 1})
	if err != nil {
		t.Fatalf("RenderSystemPrompt: %v", err)
	}
	if !strings.Contains(grounded, "not airborne") || !strings.Contains(grounded, "Destination: not set") {
		t.Fatalf("grounded prompt:\n%s", grounded)
	}
}

func TestCannedResponder(t *testing.T) {
	fc := inFlightContext()
	tests := []struct {
		question string
		want     string
	}{
		{"I need help, there is smoke!", "+49 30 1234 5678"},
		{"How is the battery?", "85 %"},
		{"When do we arrive?", "14:23"},
		{"How high are we?", "120 m"},
		{"It's too cold in here", "18 and 26"},
		{"Tell me a joke", "monitored"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, err := CannedResponder{}.Respond(context.Background(), fc, tt.question)
			if err != nil {
				t.Fatalf("Respond: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("answer %q does not mention %q", got, tt.want)
			}
		})
	}
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, FlightContext, string) (string, error) {
	return "", ErrUnavailable
}

func TestServiceFallsBackOffline(t *testing.T) {
	svc := NewServiceWithResponder(failingResponder{}, "+49 30 1234 5678", logger.Nop())

	reply, err := svc.Ask(context.Background(), inFlightContext(), "  battery?  ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !reply.Offline || reply.Question != "battery?" || reply.Answer.Role != RoleGroundControl {
		t.Fatalf("unexpected reply %+v", reply)
	}

	if _, err := svc.Ask(context.Background(), inFlightContext(), " "); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("blank question error = %v", err)
	}
	if svc.Emergency().PhoneNumber != "+49 30 1234 5678" {
		t.Fatalf("emergency contact %+v", svc.Emergency())
	}
}

func TestServiceWithoutKeyAnswersOffline(t *testing.T) {
	svc := NewService(config.DefaultConfig().GroundControl, logger.Nop())
	reply, err := svc.Ask(context.Background(), FlightContext{Passengers: 1}, "emergency")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !reply.Offline || !strings.Contains(reply.Answer.Content, "+49 30 1234 5678") {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestOpenAIResponder(t *testing.T) {
	var request struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1760623800,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": " All systems nominal. "}
			}]
		}`)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().GroundControl
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL + "/"

	responder, err := NewOpenAIResponder(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewOpenAIResponder: %v", err)
	}

	answer, err := responder.Respond(context.Background(), inFlightContext(), "Are we OK?")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if answer != "All systems nominal." {
		t.Fatalf("answer = %q", answer)
	}
	if request.Model != "gpt-4o-mini" || len(request.Messages) != 2 {
		t.Fatalf("unexpected request %+v", request)
	}
	if request.Messages[0].Role != "system" || !strings.Contains(request.Messages[0].Content, "Potsdamer Platz") {
		t.Fatalf("system message %+v", request.Messages[0])
	}
	if request.Messages[1].Role != "user" || request.Messages[1].Content != "Are we OK?" {
		t.Fatalf("user message %+v", request.Messages[1])
	}
}

func TestOpenAIResponderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().GroundControl
	cfg.APIKey = "wrong"
	cfg.BaseURL = server.URL + "/"

	responder, err := NewOpenAIResponder(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewOpenAIResponder: %v", err)
	}
	if _, err := responder.Respond(context.Background(), inFlightContext(), "hello"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}

	cfg.APIKey = ""
	if _, err := NewOpenAIResponder(cfg, logger.Nop()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing key error = %v", err)
	}
}
