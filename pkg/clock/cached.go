package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// A Cached clock trades precision of Now for cost: the current time is
// kept in one atomically read int64 of nanoseconds since the Unix Epoch
// and refreshed by a background ticker. Schedule still uses the runtime
// timers, so wake-ups keep their usual precision.
//
// Useful when deadline checks are on a hot path and coarse Now readings
// are acceptable.
type Cached struct {
	// nanoseconds since the Epoch, accessed atomically
	nsec int64

	closed  chan struct{}
	running chan struct{}
	m       sync.Mutex
}

// NewCached returns a Cached clock. It must be run to keep the time
// fresh.
func NewCached() *Cached {
	return &Cached{
		nsec:    time.Now().UnixNano(),
		closed:  make(chan struct{}),
		running: make(chan struct{}),
	}
}

// Run refreshes the cached time once every interval and blocks until
// Stop is called.
func (c *Cached) Run(interval time.Duration) {
	c.m.Lock()
	select {
	case <-c.running:
		panic("Run called multiple times")
	default:
	}
	close(c.running)
	c.m.Unlock()

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-c.closed:
			return
		case now := <-tick.C:
			atomic.StoreInt64(&c.nsec, now.UnixNano())
		}
	}
}

// Stop stops the refresh loop. The cached time remains readable but no
// longer advances. Calling Stop again is a no-op.
func (c *Cached) Stop() {
	c.m.Lock()
	defer c.m.Unlock()

	select {
	case <-c.closed:
		return
	default:
	}
	close(c.closed)
}

// Now returns the cached time.
func (c *Cached) Now() time.Time {
	return time.Unix(0, atomic.LoadInt64(&c.nsec))
}

// Schedule returns a Waker firing once the real time reaches at.
func (c *Cached) Schedule(at time.Time) Waker {
	return system.Schedule(at)
}
