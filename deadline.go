package stop

import (
	"time"

	"github.com/stopkit/stop/pkg/clock"
)

// A Deadline is a single-use, signal-shaped value: its Done channel
// closes exactly once, never before the target condition, and carries no
// payload. Tokens, durations, and instants all convert to one, which is
// what lets the combinators treat "stopped" and "timed out" uniformly.
//
// A Deadline already being awaited must not be handed to a second
// combinator; Clone derives a fresh equivalent one instead.
type Deadline struct {
	kind  deadlineKind
	done  <-chan struct{}
	waker clock.Waker

	// retained for Clone
	token Token
	clk   clock.Clock
	at    time.Time
	dur   time.Duration
}

type deadlineKind uint8

const (
	deadlineToken deadlineKind = iota
	deadlineAt
	deadlineAfter
)

// Deadline converts the token into a Deadline that fires when the token
// stops. The zero Token yields a Deadline that never fires.
func (t Token) Deadline() *Deadline {
	return &Deadline{
		kind:  deadlineToken,
		done:  t.Done(),
		token: t,
	}
}

// After returns a Deadline firing once d has elapsed, measured on the
// system clock.
func After(d time.Duration) *Deadline {
	return AfterOn(clock.System(), d)
}

// AfterOn is After on an explicit clock.
func AfterOn(c clock.Clock, d time.Duration) *Deadline {
	w := c.Schedule(c.Now().Add(d))
	return &Deadline{
		kind:  deadlineAfter,
		done:  w.Done(),
		waker: w,
		clk:   c,
		dur:   d,
	}
}

// At returns a Deadline firing once the system clock reaches t.
func At(t time.Time) *Deadline {
	return AtOn(clock.System(), t)
}

// AtOn is At on an explicit clock.
func AtOn(c clock.Clock, t time.Time) *Deadline {
	w := c.Schedule(t)
	return &Deadline{
		kind:  deadlineAt,
		done:  w.Done(),
		waker: w,
		clk:   c,
		at:    t,
	}
}

// Done returns a channel closed once the deadline has fired.
func (d *Deadline) Done() <-chan struct{} {
	return d.done
}

// Expired reports whether the deadline has fired.
func (d *Deadline) Expired() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Stop releases a pending timer wake-up when a time-based Deadline is
// discarded before firing. Token-based Deadlines have nothing to
// release. Idempotent.
func (d *Deadline) Stop() {
	if d.waker != nil {
		d.waker.Stop()
	}
}

// Clone derives a fresh, unstarted Deadline with the same target.
// Duration deadlines are re-anchored to the clock's current time;
// instant and token deadlines keep their target exactly.
func (d *Deadline) Clone() *Deadline {
	switch d.kind {
	case deadlineAt:
		return AtOn(d.clk, d.at)
	case deadlineAfter:
		return AfterOn(d.clk, d.dur)
	default:
		return d.token.Deadline()
	}
}
