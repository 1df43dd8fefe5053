// Package clock lets ticker-driven code run against real time in
// production and a manually advanced clock in tests.
//
// Components keep a Clock field instead of calling time.Now or
// time.NewTicker directly:
//
//	sim := telemetry.NewSimulator(cfg, clock.Real(), log)
//
// Tests inject a FakeClock, wait for the goroutine to register its
// ticker, then advance time deterministically:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	run := sim.Start(ctx)
//	c.WaitForTimers(1)
//	c.Advance(2 * time.Second)
package clock

import "time"

// Clock abstracts the time operations used in this module
type Clock interface {
	Now() time.Time
	// NewTicker panics if d <= 0, like time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C until Stop is called. C has capacity 1;
// ticks are dropped when the consumer falls behind.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns the ticker off. It does not close C.
func (t *Ticker) Stop() { t.stopFunc() }

// Real returns the wall clock
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) *Ticker {
	t := time.NewTicker(d)
	return &Ticker{C: t.C, stopFunc: t.Stop}
}
