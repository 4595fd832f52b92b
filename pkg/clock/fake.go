package clock

import (
	"sync"
	"time"
)

// A Fake is a Clock whose time only moves when told to. It is meant for
// tests that need deterministic deadlines.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeWaker
}

// NewFake returns a Fake clock starting at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Unix(1000000000, 0)}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Schedule returns a Waker firing once the fake time reaches at.
func (f *Fake) Schedule(at time.Time) Waker {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := &fakeWaker{at: at, done: make(chan struct{})}
	if !f.now.Before(at) {
		close(w.done)
		return w
	}
	f.pending = append(f.pending, w)
	return w
}

// Advance moves the fake time forward by d, firing every due wake-up.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	t := f.now.Add(d)
	f.mu.Unlock()
	f.Set(t)
}

// Set moves the fake time to t, firing every due wake-up. Time never
// moves backwards; a t before the current fake time is ignored.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.Before(f.now) {
		return
	}
	f.now = t

	kept := f.pending[:0]
	for _, w := range f.pending {
		if w.stopped() {
			continue
		}
		if !f.now.Before(w.at) {
			close(w.done)
			continue
		}
		kept = append(kept, w)
	}
	f.pending = kept
}

type fakeWaker struct {
	at   time.Time
	done chan struct{}

	mu   sync.Mutex
	dead bool
}

func (w *fakeWaker) Done() <-chan struct{} { return w.done }

func (w *fakeWaker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
	default:
		w.dead = true
	}
}

func (w *fakeWaker) stopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dead
}
