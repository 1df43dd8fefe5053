// Package api serves the booking flow over HTTP: reference data, flow
// sessions driven by events, live telemetry over WebSocket, Ground
// Control chat and the booking ledger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/catalog"
	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/internal/groundcontrol"
	"github.com/yegors/skyglyde/internal/receipt"
	"github.com/yegors/skyglyde/internal/session"
	"github.com/yegors/skyglyde/internal/storage/sqlite"
	"github.com/yegors/skyglyde/pkg/logger"
)

// BookingStore reads confirmed bookings
type BookingStore interface {
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetRecentBookings(ctx context.Context, limit int) ([]*booking.Booking, error)
}

// Dependencies are the services the handlers use. Bookings may be nil
// when storage is disabled.
type Dependencies struct {
	Sessions      *session.Manager
	Bookings      BookingStore
	GroundControl *groundcontrol.Service
	Matcher       booking.Matcher
}

// Handler implements the API endpoints
type Handler struct {
	sessions      *session.Manager
	bookings      BookingStore
	groundControl *groundcontrol.Service
	matcher       booking.Matcher
	validate      *validator.Validate
	upgrader      websocket.Upgrader
	config        *config.Config
	now           func() time.Time
	logger        *logger.Logger
}

// NewHandler creates the endpoint handlers
func NewHandler(deps Dependencies, cfg *config.Config, log *logger.Logger) *Handler {
	if deps.Matcher == nil {
		deps.Matcher = booking.DefaultMatcher()
	}
	return &Handler{
		sessions:      deps.Sessions,
		bookings:      deps.Bookings,
		groundControl: deps.GroundControl,
		matcher:       deps.Matcher,
		validate:      validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		config: cfg,
		now:    time.Now,
		logger: log.Named("api-handler"),
	}
}

const defaultBookingLimit = 20

type errorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Session *session.Snapshot `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeAndValidate reads a JSON body into v and runs its validate tags
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", Details: err.Error()})
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: err.Error()})
		return false
	}
	return true
}

// lookupSession resolves the {id} URL parameter, writing 404 when absent
func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

// GetHealth reports liveness
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"time":     h.now().UTC(),
		"sessions": h.sessions.Len(),
		"storage":  h.bookings != nil,
	})
}

// GetSkyports returns the skyport catalog
func (h *Handler) GetSkyports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Skyports())
}

// GetTransportOptions returns the ground transport options
func (h *Handler) GetTransportOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.TransportOptions())
}

// GetDestinations returns popular destinations filtered by ?q=
func (h *Handler) GetDestinations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.SuggestDestinations(r.URL.Query().Get("q")))
}

// MatchSkyport returns the arrival skyport for ?destination=
func (h *Handler) MatchSkyport(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("destination")
	writeJSON(w, http.StatusOK, map[string]any{
		"destination": destination,
		"skyport":     h.matcher.Match(destination),
	})
}

// CreateSession opens a booking flow on the home screen
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		if errors.Is(err, session.ErrLimitReached) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Error("Failed to create session", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

// GetSession returns the current screen, draft and offered events
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// CloseSession ends a flow and its telemetry
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// eventRequest is the body of POST /sessions/{id}/events
type eventRequest struct {
	Type        booking.EventType `json:"type" validate:"required,oneof=submit next back grant confirm accept"`
	Destination string            `json:"destination" validate:"max=200"`
	Passengers  int               `json:"passengers" validate:"min=0,max=99"`
	SkyportID   int               `json:"skyport_id" validate:"min=0"`
	TransportID string            `json:"transport_id" validate:"omitempty,oneof=walk public ride"`
	Granted     bool              `json:"granted"`
	Accepted    bool              `json:"accepted"`
}

func (req eventRequest) toEvent() (booking.Event, error) {
	ev := booking.Event{
		Type:        req.Type,
		Destination: req.Destination,
		Passengers:  req.Passengers,
		Granted:     req.Granted,
		Accepted:    req.Accepted,
	}
	if req.SkyportID != 0 {
		s, ok := catalog.SkyportByID(req.SkyportID)
		if !ok {
			return booking.Event{}, fmt.Errorf("unknown skyport %d", req.SkyportID)
		}
		ev.Skyport = &s
	}
	if req.TransportID != "" {
		t, ok := catalog.TransportByID(catalog.TransportID(req.TransportID))
		if !ok {
			return booking.Event{}, fmt.Errorf("unknown transport option %q", req.TransportID)
		}
		ev.Transport = &t
	}
	return ev, nil
}

// DispatchEvent applies one flow event. A disabled event answers 409
// with the unchanged session.
func (h *Handler) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	ev, err := req.toEvent()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: err.Error()})
		return
	}

	snap, fired, err := s.Dispatch(r.Context(), ev)
	switch {
	case errors.Is(err, booking.ErrSubmissionFailed):
		current := s.Snapshot()
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: booking.ErrSubmissionFailed.Error(), Session: &current})
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusNotFound, "session not found")
	case err != nil:
		h.logger.Error("Failed to dispatch event", logger.String("session_id", s.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to dispatch event")
	case !fired:
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   fmt.Sprintf("event %s is not available on screen %s", ev.Type, snap.Screen),
			Session: &snap,
		})
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

// ResetSession abandons the flow and returns to the home screen
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	snap, err := s.Reset()
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetTelemetry returns the latest frame while the flow is in flight
func (h *Handler) GetTelemetry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	frame, ok := s.Telemetry()
	if !ok {
		writeError(w, http.StatusNotFound, "flight has not departed")
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

type cabinRequest struct {
	TemperatureC *int `json:"temperature_c"`
	VolumePct    *int `json:"volume_pct"`
}

// UpdateCabin sets cabin temperature and volume; values are clamped
func (h *Handler) UpdateCabin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req cabinRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.TemperatureC == nil && req.VolumePct == nil {
		writeError(w, http.StatusBadRequest, "temperature_c or volume_pct is required")
		return
	}

	cabin, err := s.UpdateCabin(session.CabinUpdate{TemperatureC: req.TemperatureC, VolumePct: req.VolumePct})
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, cabin)
}

type groundControlRequest struct {
	Question string `json:"question" validate:"required,max=500"`
}

// AskGroundControl answers a passenger question with the flight context
func (h *Handler) AskGroundControl(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req groundControlRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	fc := groundcontrol.ContextFromSnapshot(s.Snapshot(), h.groundControl.PhoneNumber(), h.now())
	reply, err := h.groundControl.Ask(r.Context(), fc, req.Question)
	if err != nil {
		if errors.Is(err, groundcontrol.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Ground control failed", logger.String("session_id", s.ID), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, groundcontrol.ErrUnavailable.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GetEmergencyContact returns the number the emergency "Call" shows
func (h *Handler) GetEmergencyContact(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.groundControl.Emergency())
}

type bookingResponse struct {
	*booking.Booking
	BookedAgo string `json:"booked_ago"`
}

func (h *Handler) toBookingResponse(b *booking.Booking) bookingResponse {
	return bookingResponse{Booking: b, BookedAgo: humanize.RelTime(b.CreatedAt, h.now(), "ago", "from now")}
}

func (h *Handler) requireStorage(w http.ResponseWriter) bool {
	if h.bookings == nil {
		writeError(w, http.StatusServiceUnavailable, "booking storage is disabled")
		return false
	}
	return true
}

// GetBookings returns recent confirmed bookings, newest first
func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	if !h.requireStorage(w) {
		return
	}

	limit := defaultBookingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	bookings, err := h.bookings.GetRecentBookings(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list bookings", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, h.toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) loadBooking(w http.ResponseWriter, r *http.Request) (*booking.Booking, bool) {
	if !h.requireStorage(w) {
		return nil, false
	}
	b, err := h.bookings.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrBookingNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("Failed to load booking", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load booking")
		return nil, false
	}
	return b, true
}

// GetBooking returns one confirmed booking
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBooking(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toBookingResponse(b))
}

// GetReceipt returns the booking's PDF receipt
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBooking(w, r)
	if !ok {
		return
	}

	pdf, filename, err := receipt.Render(b)
	if err != nil {
		h.logger.Error("Failed to render receipt", logger.String("booking_id", b.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
