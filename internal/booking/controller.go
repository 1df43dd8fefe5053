package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yegors/skyglyde/pkg/logger"
)

// ErrSubmissionFailed is returned by Dispatch when the summary was
// confirmed but the booking could not be recorded. The flow stays on
// the summary screen so the user can retry.
var ErrSubmissionFailed = errors.New("booking submission failed")

// Submitter records a confirmed booking
type Submitter interface {
	SubmitBooking(ctx context.Context, b *Booking) error
}

// TransitionFunc observes a fired transition
type TransitionFunc func(from, to Screen, state State)

// ControllerConfig configures a Controller. Zero values get defaults.
type ControllerConfig struct {
	Matcher   Matcher
	Submitter Submitter
	Pricing   Pricing
	Now       func() time.Time
	Logger    *logger.Logger
}

// Controller owns one booking flow: the current screen and the draft.
// It is not safe for concurrent use; hosts serialise events.
type Controller struct {
	table     Table
	state     State
	submitter Submitter
	pricing   Pricing
	now       func() time.Time
	observers []TransitionFunc
	logger    *logger.Logger
}

// NewController creates a controller positioned on the home screen
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Matcher == nil {
		cfg.Matcher = DefaultMatcher()
	}
	if cfg.Pricing == (Pricing{}) {
		cfg.Pricing = DefaultPricing()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Controller{
		table:     NewTable(cfg.Matcher),
		state:     InitialState(),
		submitter: cfg.Submitter,
		pricing:   cfg.Pricing,
		now:       cfg.Now,
		logger:    cfg.Logger.Named("booking-controller"),
	}
}

// State returns a snapshot of the flow
func (c *Controller) State() State { return c.state }

// Screen returns the current screen
func (c *Controller) Screen() Screen { return c.state.Screen }

// Draft returns a copy of the booking draft
func (c *Controller) Draft() Draft { return c.state.Draft }

// Pricing returns the fare used for the summary
func (c *Controller) Pricing() Pricing { return c.pricing }

// Table exposes the transition table, for inspection
func (c *Controller) Table() Table { return c.table }

// OnTransition registers an observer called after every fired transition
func (c *Controller) OnTransition(fn TransitionFunc) {
	c.observers = append(c.observers, fn)
}

// CanDispatch reports whether ev would fire now. Views use it to
// disable their advance control.
func (c *Controller) CanDispatch(ev Event) bool {
	return c.table.Allows(c.state, ev)
}

// Dispatch applies ev. It returns false, with no error, when the event
// is not offered on the current screen or its guard fails. The only
// error is a failed booking submission on summary.confirm.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (bool, error) {
	from := c.state.Screen
	next, fired := c.table.Apply(c.state, ev)
	if !fired {
		c.logger.Debug("Event not offered",
			logger.String("screen", string(from)),
			logger.String("event", string(ev.Type)))
		return false, nil
	}

	if from == ScreenSummary && ev.Type == EventConfirm {
		b, err := c.confirm(ctx)
		if err != nil {
			return false, err
		}
		next.Booking = b
	}

	c.state = next
	c.logger.Debug("Transition",
		logger.String("from", string(from)),
		logger.String("event", string(ev.Type)),
		logger.String("to", string(next.Screen)))

	for _, fn := range c.observers {
		fn(from, next.Screen, c.state)
	}
	return true, nil
}

func (c *Controller) confirm(ctx context.Context) (*Booking, error) {
	b, err := NewBooking(c.state.Draft, c.pricing, c.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build booking: %w", err)
	}
	if c.submitter == nil {
		return b, nil
	}
	if err := c.submitter.SubmitBooking(ctx, b); err != nil {
		c.logger.Warn("Booking submission failed",
			logger.String("booking_id", b.ID),
			logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	c.logger.Info("Booking confirmed",
		logger.String("booking_id", b.ID),
		logger.String("destination", b.Destination),
		logger.Int("passengers", b.Passengers))
	return b, nil
}

// Reset discards the draft and returns to the home screen. Observers
// see it as a transition to the initial screen.
func (c *Controller) Reset() {
	from := c.state.Screen
	c.state = InitialState()
	for _, fn := range c.observers {
		fn(from, c.state.Screen, c.state)
	}
}
