// Package clock abstracts wall-clock reads and timers so the scheduling
// engine can be driven by a fake clock in tests.
package clock

import "time"

// Clock reports the current time and creates timers.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the waiter needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realClock struct{}

// New returns the system clock.
func New() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) C() <-chan time.Time { return r.t.C }
func (r *realTimer) Stop() bool          { return r.t.Stop() }
