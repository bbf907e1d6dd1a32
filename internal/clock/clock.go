// Package clock abstracts time for components that schedule delays.
// Production code uses System; tests drive a Fake clock deterministically.
package clock

import "time"

// Clock provides the current time and delay scheduling.
type Clock interface {
	Now() time.Time
	// After returns a channel that receives the current time once d has elapsed.
	After(d time.Duration) <-chan time.Time
	// NewTimer returns a stoppable timer firing after d.
	NewTimer(d time.Duration) Timer
}

// Timer is a stoppable delay, mirroring the time.Timer surface we need.
type Timer interface {
	C() <-chan time.Time
	// Stop prevents the timer from firing. It reports whether it stopped
	// the timer before it fired.
	Stop() bool
}

// System is the real wall clock.
type System struct{}

// NewSystem returns the production clock.
func NewSystem() System { return System{} }

// Now implements Clock.
func (System) Now() time.Time { return time.Now() }

// After implements Clock.
func (System) After(d time.Duration) <-chan time.Time { return time.After(d) }

// NewTimer implements Clock.
func (System) NewTimer(d time.Duration) Timer {
	return systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) C() <-chan time.Time { return st.t.C }

func (st systemTimer) Stop() bool { return st.t.Stop() }
