// Package waiter implements the cancellable wait the scheduling loop
// suspends on.
//
// A Waiter hands out one wait at a time. The stop signal is the context
// passed to Wait; the reschedule signal is Reschedule. A reschedule raised
// while no wait is outstanding is dropped, so it can never cancel a later
// wait.
package waiter

import (
	"context"
	"sync"
	"time"

	"breakreminder/internal/domain/constant"
	"breakreminder/internal/pkg/clock"
)

// MaxSleep bounds a single timer so wall-clock steps and host suspends are
// noticed within that slice.
const MaxSleep = time.Minute

// Waiter is safe for concurrent use. Wait must not be called concurrently
// with itself.
type Waiter struct {
	clock clock.Clock

	mu      sync.Mutex
	pending chan struct{} // closed by Reschedule; nil while no wait is outstanding
}

// New creates a Waiter reading time from c.
func New(c clock.Clock) *Waiter {
	return &Waiter{clock: c}
}

// Wait suspends until target, a reschedule, or ctx is done.
func (w *Waiter) Wait(ctx context.Context, target time.Time) constant.Outcome {
	if ctx.Err() != nil {
		return constant.OutcomeStopped
	}
	if !target.After(w.clock.Now()) {
		return constant.OutcomeFired
	}

	cancelled := make(chan struct{})
	w.mu.Lock()
	w.pending = cancelled
	w.mu.Unlock()

	for {
		timer := w.clock.NewTimer(min(target.Sub(w.clock.Now()), MaxSleep))
		select {
		case <-ctx.Done():
			timer.Stop()
			w.release(cancelled)
			return constant.OutcomeStopped

		case <-cancelled:
			timer.Stop()
			w.release(cancelled)
			return constant.OutcomeCancelled

		case <-timer.C():
			if target.After(w.clock.Now()) {
				// Slice elapsed or the clock drifted. Sleep again.
				continue
			}
			return w.settle(ctx, cancelled)
		}
	}
}

// settle clears the outstanding wait and reports Fired unless a signal was
// raised before the lock was taken.
func (w *Waiter) settle(ctx context.Context, cancelled chan struct{}) constant.Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == cancelled {
		w.pending = nil
	}
	if ctx.Err() != nil {
		return constant.OutcomeStopped
	}
	select {
	case <-cancelled:
		return constant.OutcomeCancelled
	default:
		return constant.OutcomeFired
	}
}

func (w *Waiter) release(cancelled chan struct{}) {
	w.mu.Lock()
	if w.pending == cancelled {
		w.pending = nil
	}
	w.mu.Unlock()
}

// Reschedule cancels the outstanding wait, if any, and reports whether one
// was cancelled.
func (w *Waiter) Reschedule() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return false
	}
	close(w.pending)
	w.pending = nil
	return true
}

// Waiting reports whether a wait is outstanding.
func (w *Waiter) Waiting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}
