// Package clock abstracts the scheduling of wake-ups at points in time,
// so deadline-bearing code can run against the system timer, a cached
// coarse clock, or a fake clock in tests.
package clock

import (
	"sync"
	"time"
)

// A Waker is a single scheduled wake-up. Its channel is closed at or
// after the target instant, never before.
type Waker interface {
	// Done returns a channel closed once the target instant has passed.
	Done() <-chan struct{}

	// Stop releases the resources held by a pending wake-up. It is
	// idempotent and safe to call after the wake has fired.
	Stop()
}

// A Clock reads the current time and schedules wake-ups against it.
type Clock interface {
	Now() time.Time

	// Schedule returns a Waker that fires once Now() reaches at. An
	// instant in the past fires immediately.
	Schedule(at time.Time) Waker
}

var system = systemClock{}

// System returns the Clock backed by the runtime timers and time.Now.
func System() Clock {
	return system
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Schedule(at time.Time) Waker {
	w := &systemWaker{done: make(chan struct{})}
	d := time.Until(at)
	if d <= 0 {
		close(w.done)
		return w
	}
	w.timer = time.AfterFunc(d, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.stopped {
			close(w.done)
			w.fired = true
		}
	})
	return w
}

type systemWaker struct {
	done  chan struct{}
	timer *time.Timer

	mu      sync.Mutex
	fired   bool
	stopped bool
}

func (w *systemWaker) Done() <-chan struct{} { return w.done }

func (w *systemWaker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.fired {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}
