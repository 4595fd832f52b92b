package stop

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrStopped is returned by combinators that terminated because their
// signal fired rather than because the wrapped work finished. It is an
// expected outcome, not a failure.
var ErrStopped = errors.New("stop: stopped")

// signal is the shared one-shot broadcast state behind a Source and its
// Tokens. The done channel is closed exactly once; the callback registry
// holds parties to be woken on that transition.
//
// trigger and register share one mutex, so there is no interval in which
// a trigger neither sees a new registration nor makes the registrant
// observe the closed channel.
type signal struct {
	done chan struct{}

	mu     sync.Mutex
	nextID uint64
	wakers map[uint64]func()
}

func newSignal() *signal {
	return &signal{
		done:   make(chan struct{}),
		wakers: make(map[uint64]func()),
	}
}

func (s *signal) triggered() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// trigger closes the done channel and runs every registered waker once.
// Calling it again is a no-op.
func (s *signal) trigger() {
	s.mu.Lock()
	if s.triggered() {
		s.mu.Unlock()
		return
	}
	close(s.done)
	wakers := s.wakers
	s.wakers = nil
	s.mu.Unlock()

	// Run outside the lock; order is unspecified.
	for _, wake := range wakers {
		wake()
	}
}

// register arranges for wake to run once the signal triggers. If the
// signal has already triggered, wake runs immediately on the calling
// goroutine. The returned func removes the registration; it is safe to
// call after the wake has run.
func (s *signal) register(wake func()) (remove func()) {
	s.mu.Lock()
	if s.triggered() {
		s.mu.Unlock()
		wake()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.wakers[id] = wake
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.wakers, id)
		s.mu.Unlock()
	}
}

// A Source is the unique owner of a one-shot stop signal. It produces
// Tokens observing the signal and triggers it at most once, either
// explicitly via Stop or implicitly when the Source is garbage
// collected without having been stopped.
//
// A Source must not be copied.
type Source struct {
	sig *signal
}

// NewSource returns a new Source with a fresh, untriggered signal.
func NewSource() *Source {
	s := &Source{sig: newSignal()}
	// Releasing the owner is a trigger. The finalizer is a backstop for
	// sources dropped without an explicit Stop.
	runtime.SetFinalizer(s, (*Source).Stop)
	return s
}

// Stop triggers the signal, waking every Token derived from this Source.
// Stop is idempotent and safe to call concurrently with Token.
func (s *Source) Stop() {
	s.sig.trigger()
}

// Stopped reports whether the signal has been triggered.
func (s *Source) Stopped() bool {
	return s.sig.triggered()
}

// Token derives a new observer of this Source's signal. It may be called
// any number of times, concurrently, before or after Stop.
func (s *Source) Token() Token {
	return Token{sig: s.sig}
}

// A Token observes a Source's signal. Copying a Token is cloning: all
// copies share the signal and observe the same stop event. The zero
// Token never stops.
type Token struct {
	sig *signal
}

// Never is a Token that never stops.
var Never Token

// Done returns a channel closed once the signal triggers. For the zero
// Token it returns nil, which blocks forever in a select.
func (t Token) Done() <-chan struct{} {
	if t.sig == nil {
		return nil
	}
	return t.sig.done
}

// Stopped reports whether the signal has been triggered. Once it returns
// true it returns true forever, from every clone.
func (t Token) Stopped() bool {
	return t.sig != nil && t.sig.triggered()
}

// OnStop registers wake to run once the signal triggers, or runs it
// immediately on the calling goroutine if it already has. The returned
// func removes the registration.
func (t Token) OnStop(wake func()) (remove func()) {
	if t.sig == nil {
		return func() {}
	}
	return t.sig.register(wake)
}

// Context derives a context from parent that is additionally cancelled
// when the token stops. Cancelling the returned CancelFunc releases the
// watch.
func (t Token) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-t.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
