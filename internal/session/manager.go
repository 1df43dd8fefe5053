// Package session keeps booking flows alive between requests. Each
// session owns its controller and, while in flight, its telemetry run.
// Idle sessions are swept and closed, which releases their runs.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/clock"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned when a closed session receives a request
	ErrClosed = errors.New("session closed")
	// ErrLimitReached is returned when MaxSessions sessions are open
	ErrLimitReached = errors.New("session limit reached")
)

// Config configures a Manager
type Config struct {
	// Controller is the template for every session's controller. Its Now
	// is replaced by the manager's clock.
	Controller    booking.ControllerConfig
	Simulator     *telemetry.Simulator
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

// Manager creates, finds and expires sessions
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*Session

	config Config
	clock  clock.Clock
	logger *logger.Logger
}

// NewManager creates a session manager. Sessions and their telemetry
// runs live until closed, expired, or the manager is stopped.
func NewManager(ctx context.Context, config Config, clk clock.Clock, log *logger.Logger) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logger.Nop()
	}
	mgrCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		ctx:      mgrCtx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
		config:   config,
		clock:    clk,
		logger:   log.Named("session-manager"),
	}
}

// Start launches the idle sweeper. It does nothing when either the idle
// timeout or the sweep interval is zero.
func (m *Manager) Start() {
	if m.config.IdleTimeout <= 0 || m.config.SweepInterval <= 0 {
		m.logger.Info("Idle session expiry is disabled")
		return
	}

	m.logger.Info("Starting idle session sweeper",
		logger.Duration("idle_timeout", m.config.IdleTimeout),
		logger.Duration("sweep_interval", m.config.SweepInterval))

	ticker := m.clock.NewTicker(m.config.SweepInterval)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Info("Expired idle sessions", logger.Int("count", n))
				}
			}
		}
	}()
}

// Stop ends the sweeper and closes every session
func (m *Manager) Stop() {
	m.logger.Info("Stopping session manager")
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Create opens a new session on the home screen
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		return nil, ErrLimitReached
	}

	id := uuid.NewString()
	cfg := m.config.Controller
	cfg.Now = m.clock.Now
	cfg.Logger = m.logger.WithSession(id)

	s := newSession(m.ctx, id, booking.NewController(cfg), m.config.Simulator, m.clock.Now, m.logger)
	m.sessions[id] = s

	m.logger.Debug("Session created", logger.String("session_id", id))
	return s, nil
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	s.touch()
	return s, nil
}

// Close closes and forgets a session
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and
// returns how many it closed
func (m *Manager) Sweep() int {
	cutoff := m.clock.Now().Add(-m.config.IdleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}
