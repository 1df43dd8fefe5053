package telemetry

import (
	"context"
	"math/rand"
	"sync"

	"github.com/yegors/skyglyde/internal/clock"
	"github.com/yegors/skyglyde/pkg/logger"
)

// Simulator starts telemetry runs
type Simulator struct {
	config Config
	clock  clock.Clock
	logger *logger.Logger
}

// NewSimulator creates a simulator. A non-positive interval falls back
// to the default.
func NewSimulator(config Config, clk clock.Clock, log *logger.Logger) *Simulator {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Simulator{
		config: config,
		clock:  clk,
		logger: log.Named("telemetry-sim"),
	}
}

// Run is one scoped simulation. The ticker is acquired by Start and
// released exactly once, when Stop is called or the context passed to
// Start is cancelled, whichever happens first.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	latest   Telemetry
	ticks    int
	nextSub  int
	subs     map[int]chan Telemetry
	finished bool

	logger *logger.Logger
}

// Start acquires a ticker and begins updating telemetry
func (s *Simulator) Start(ctx context.Context) *Run {
	ctx, cancel := context.WithCancel(ctx)

	seed := s.config.Seed
	if seed == 0 {
		seed = s.clock.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	r := &Run{
		cancel: cancel,
		done:   make(chan struct{}),
		latest: Initial(s.config, s.clock.Now()),
		subs:   make(map[int]chan Telemetry),
		logger: s.logger,
	}

	ticker := s.clock.NewTicker(s.config.Interval)
	s.logger.Debug("Telemetry run started", logger.Duration("interval", s.config.Interval))

	go r.loop(ctx, ticker, rng, s.clock)
	return r
}

func (r *Run) loop(ctx context.Context, ticker *clock.Ticker, rng *rand.Rand, clk clock.Clock) {
	defer close(r.done)
	defer r.closeSubscribers()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Telemetry run stopped", logger.Int("ticks", r.Ticks()))
			return
		case <-ticker.C:
			r.publish(func(prev Telemetry) Telemetry {
				return Step(prev, rng, clk.Now())
			})
		}
	}
}

func (r *Run) publish(step func(Telemetry) Telemetry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest = step(r.latest)
	r.ticks++
	for _, ch := range r.subs {
		offer(ch, r.latest)
	}
}

// offer replaces any unread frame with the newest one
func offer(ch chan Telemetry, t Telemetry) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- t:
	default:
	}
}

// Latest returns the most recent frame
func (r *Run) Latest() Telemetry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Ticks returns how many updates have been applied
func (r *Run) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Subscribe returns a channel carrying the current frame followed by
// every update. Slow readers only see the newest frame. The channel is
// closed when the run stops; cancel unsubscribes early.
func (r *Run) Subscribe() (<-chan Telemetry, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Telemetry, 1)
	if r.finished {
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- r.latest

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
}

func (r *Run) closeSubscribers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}

// Stop ends the run and waits until its ticker has been released.
// Safe to call more than once.
func (r *Run) Stop() {
	r.cancel()
	<-r.done
}

// Done is closed once the run has released its ticker
func (r *Run) Done() <-chan struct{} { return r.done }
