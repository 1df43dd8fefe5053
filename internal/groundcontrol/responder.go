package groundcontrol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/pkg/logger"
)

// ErrUnavailable is returned when the assistant cannot answer
var ErrUnavailable = errors.New("ground control unavailable")

// Responder answers a passenger question about their flight
type Responder interface {
	Respond(ctx context.Context, fc FlightContext, question string) (string, error)
}

// OpenAIResponder answers through the OpenAI chat completions API
type OpenAIResponder struct {
	client openai.Client
	config config.GroundControlConfig
	logger *logger.Logger
}

// NewOpenAIResponder creates a responder. It fails fast without an API key.
func NewOpenAIResponder(cfg config.GroundControlConfig, log *logger.Logger) (*OpenAIResponder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", ErrUnavailable)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}

	return &OpenAIResponder{
		client: openai.NewClient(opts...),
		config: cfg,
		logger: log.Named("ground-control-ai"),
	}, nil
}

// Respond sends the rendered flight context and the question
func (r *OpenAIResponder) Respond(ctx context.Context, fc FlightContext, question string) (string, error) {
	prompt, err := RenderSystemPrompt(fc)
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(question),
		},
	}
	if r.config.MaxResponseTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(r.config.MaxResponseTokens))
	}
	if r.config.Temperature > 0 {
		params.Temperature = openai.Float(r.config.Temperature)
	}

	r.logger.Debug("Asking ground control",
		logger.String("model", r.config.Model),
		logger.String("screen", fc.Screen))

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", ErrUnavailable)
	}
	return answer, nil
}

// CannedResponder answers common questions without a network connection
type CannedResponder struct{}

// Respond picks an answer by keyword
func (CannedResponder) Respond(_ context.Context, fc FlightContext, question string) (string, error) {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, "emergency", "help", "sick", "hurt", "fire", "smoke"):
		return fmt.Sprintf("Ground Control here. Stay seated with your belt fastened. For immediate assistance call %s.", fc.PhoneNumber), nil

	case containsAny(q, "battery", "charge", "power"):
		if fc.InFlight() {
			return fmt.Sprintf("Battery is at %.0f %%, well above the reserve needed to reach %s.",
				fc.Telemetry.BatteryPct, nonEmpty(fc.Arrival, "your skyport")), nil
		}
		return "Every Sky-Glyde vehicle departs fully charged with a reserve for diversions.", nil

	case containsAny(q, "arrive", "arrival", "eta", "how long", "when"):
		if fc.InFlight() {
			return fmt.Sprintf("You are %s and will arrive at %s at %s.",
				strings.ToLower(fc.Telemetry.FlightPhase), nonEmpty(fc.Arrival, "your skyport"), fc.Telemetry.ArrivalTime), nil
		}
		return "Your arrival time is shown once the flight has departed.", nil

	case containsAny(q, "altitude", "high", "height", "speed", "fast"):
		if fc.InFlight() {
			return fmt.Sprintf("We are cruising at %.0f m and %.0f km/h.", fc.Telemetry.AltitudeM, fc.Telemetry.AirspeedKmh), nil
		}
		return "Sky-Glyde flights cruise below 150 m at around 45 km/h.", nil

	case containsAny(q, "temperature", "cold", "warm", "hot", "volume", "music"):
		return "You can adjust cabin temperature between 18 and 26 °C and the audio volume from the cabin controls.", nil
	}

	return fmt.Sprintf("Ground Control here. Your flight is being monitored. If you need a person, call %s.", fc.PhoneNumber), nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
