package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually-advanced clock for tests. Timers fire synchronously
// inside Advance, in deadline order, before Advance returns.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeTimer
}

// NewFake creates a fake clock starting at a fixed, arbitrary instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now implements Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After implements Clock.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	return f.NewTimer(d).C()
}

// NewTimer implements Clock.
func (f *Fake) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	ft := &fakeTimer{
		clock:    f,
		deadline: f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	if d <= 0 {
		ft.fired = true
		ft.ch <- f.now
		return ft
	}
	f.waiters = append(f.waiters, ft)
	return ft
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now

	var due []*fakeTimer
	remaining := f.waiters[:0]
	for _, ft := range f.waiters {
		if !ft.deadline.After(now) {
			due = append(due, ft)
		} else {
			remaining = append(remaining, ft)
		}
	}
	f.waiters = remaining
	f.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, ft := range due {
		ft.fire(now)
	}
}

// PendingTimers reports how many timers are armed. Useful for asserting that
// cancellation actually released a timer.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	ch       chan time.Time

	mu    sync.Mutex
	fired bool
}

func (ft *fakeTimer) C() <-chan time.Time { return ft.ch }

func (ft *fakeTimer) Stop() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.fired {
		return false
	}
	ft.fired = true

	ft.clock.mu.Lock()
	for i, w := range ft.clock.waiters {
		if w == ft {
			ft.clock.waiters = append(ft.clock.waiters[:i], ft.clock.waiters[i+1:]...)
			break
		}
	}
	ft.clock.mu.Unlock()
	return true
}

func (ft *fakeTimer) fire(now time.Time) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.fired {
		return
	}
	ft.fired = true
	ft.ch <- now
}
