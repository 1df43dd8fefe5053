package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

// Snapshot is a read-only view of a session
type Snapshot struct {
	ID        string                  `json:"id"`
	Screen    booking.Screen          `json:"screen"`
	Draft     booking.Draft           `json:"draft"`
	Booking   *booking.Booking        `json:"booking,omitempty"`
	Events    []booking.EventType     `json:"events"`
	Vehicles  int                     `json:"vehicles"`
	TotalEUR  int                     `json:"estimated_total_eur"`
	Cabin     telemetry.CabinSettings `json:"cabin"`
	Telemetry *telemetry.Telemetry    `json:"telemetry,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// Session is one user's booking flow. It serialises events to its
// controller and owns the telemetry run while the flow is in flight.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	controller *booking.Controller
	simulator  *telemetry.Simulator
	run        *telemetry.Run
	cabin      telemetry.CabinSettings
	closed     bool

	lastActive atomic.Int64
	now        func() time.Time
	logger     *logger.Logger
}

func newSession(ctx context.Context, id string, controller *booking.Controller, sim *telemetry.Simulator, now func() time.Time, log *logger.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:         id,
		CreatedAt:  now(),
		ctx:        ctx,
		cancel:     cancel,
		controller: controller,
		simulator:  sim,
		cabin:      telemetry.DefaultCabin(),
		now:        now,
		logger:     log.WithSession(id),
	}
	s.touch()
	controller.OnTransition(s.onTransition)
	return s
}

// onTransition runs with s.mu held, from inside Dispatch or Reset
func (s *Session) onTransition(from, to booking.Screen, _ booking.State) {
	switch {
	case to == booking.TerminalScreen && from != booking.TerminalScreen:
		s.startTelemetry()
	case from == booking.TerminalScreen && to != booking.TerminalScreen:
		s.stopTelemetry()
	}
}

func (s *Session) startTelemetry() {
	if s.run != nil || s.simulator == nil {
		return
	}
	s.run = s.simulator.Start(s.ctx)
	s.logger.Info("Flight started, telemetry running")
}

func (s *Session) stopTelemetry() {
	if s.run == nil {
		return
	}
	s.run.Stop()
	s.run = nil
	s.logger.Info("Telemetry stopped")
}

func (s *Session) touch() {
	s.lastActive.Store(s.now().UnixNano())
}

// LastActive returns when the session last handled a request
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Snapshot returns the current state of the session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	state := s.controller.State()
	snap := Snapshot{
		ID:        s.ID,
		Screen:    state.Screen,
		Draft:     state.Draft,
		Booking:   state.Booking,
		Events:    s.controller.Table().Events(state.Screen),
		Vehicles:  s.controller.Pricing().Vehicles(state.Draft.Passengers),
		TotalEUR:  s.controller.Pricing().EstimatedTotalEUR,
		Cabin:     s.cabin,
		CreatedAt: s.CreatedAt,
	}
	if s.run != nil {
		latest := s.run.Latest()
		snap.Telemetry = &latest
	}
	return snap
}

// Dispatch applies one event and returns the resulting snapshot. The
// boolean reports whether the event fired.
func (s *Session) Dispatch(ctx context.Context, ev booking.Event) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, false, ErrClosed
	}
	s.touch()

	fired, err := s.controller.Dispatch(ctx, ev)
	return s.snapshotLocked(), fired, err
}

// CanDispatch reports whether ev would fire on the current screen
func (s *Session) CanDispatch(ev booking.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.controller.CanDispatch(ev)
}

// Reset abandons the flow and returns to the home screen
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, ErrClosed
	}
	s.touch()
	s.controller.Reset()
	s.cabin = telemetry.DefaultCabin()
	return s.snapshotLocked(), nil
}

// Telemetry returns the latest frame. The boolean is false unless the
// flow is in flight.
func (s *Session) Telemetry() (telemetry.Telemetry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		return telemetry.Telemetry{}, false
	}
	s.touch()
	return s.run.Latest(), true
}

// SubscribeTelemetry streams telemetry frames until the flight ends or
// cancel is called. The boolean is false unless the flow is in flight.
func (s *Session) SubscribeTelemetry() (<-chan telemetry.Telemetry, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		return nil, nil, false
	}
	s.touch()
	ch, cancel := s.run.Subscribe()
	return ch, cancel, true
}

// CabinUpdate carries the cabin controls to change; nil leaves a value as is
type CabinUpdate struct {
	TemperatureC *int
	VolumePct    *int
}

// UpdateCabin applies clamped cabin settings
func (s *Session) UpdateCabin(update CabinUpdate) (telemetry.CabinSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return telemetry.CabinSettings{}, ErrClosed
	}
	s.touch()
	if update.TemperatureC != nil {
		s.cabin = s.cabin.WithTemperature(*update.TemperatureC)
	}
	if update.VolumePct != nil {
		s.cabin = s.cabin.WithVolume(*update.VolumePct)
	}
	return s.cabin, nil
}

// Close stops telemetry and rejects further events. Safe to call more
// than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTelemetry()
	s.cancel()
	s.logger.Debug("Session closed")
}
