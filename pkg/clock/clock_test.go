package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fired(w Waker) bool {
	select {
	case <-w.Done():
		return true
	default:
		return false
	}
}

func TestSystemSchedulePast(t *testing.T) {
	w := System().Schedule(time.Now().Add(-time.Second))
	require.True(t, fired(w), "an instant in the past must fire immediately")
}

func TestSystemScheduleFires(t *testing.T) {
	start := time.Now()
	w := System().Schedule(start.Add(20 * time.Millisecond))

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("wake-up did not fire")
	}
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSystemWakerStop(t *testing.T) {
	w := System().Schedule(time.Now().Add(50 * time.Millisecond))
	w.Stop()
	w.Stop()

	time.Sleep(100 * time.Millisecond)
	require.False(t, fired(w), "a stopped wake-up must not fire")
}

func TestFakeAdvance(t *testing.T) {
	fake := NewFake()
	w := fake.Schedule(fake.Now().Add(time.Minute))

	fake.Advance(59 * time.Second)
	require.False(t, fired(w))

	fake.Advance(time.Second)
	require.True(t, fired(w))
}

func TestFakeSetBackwardsIgnored(t *testing.T) {
	fake := NewFake()
	now := fake.Now()

	fake.Set(now.Add(-time.Hour))
	require.Equal(t, now, fake.Now())
}

func TestFakeSchedulePast(t *testing.T) {
	fake := NewFake()
	w := fake.Schedule(fake.Now())
	require.True(t, fired(w))
}

func TestFakeWakerStop(t *testing.T) {
	fake := NewFake()
	w := fake.Schedule(fake.Now().Add(time.Second))
	w.Stop()

	fake.Advance(time.Minute)
	require.False(t, fired(w))
}

func TestCachedNow(t *testing.T) {
	c := NewCached()
	require.False(t, c.Now().IsZero())
}

func TestCachedRunStop(t *testing.T) {
	c := NewCached()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run(time.Millisecond)
	}()

	c.Stop()
	c.Stop()

	wg.Wait()
}

func TestCachedSchedule(t *testing.T) {
	c := NewCached()
	w := c.Schedule(time.Now().Add(10 * time.Millisecond))

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("wake-up did not fire")
	}
}
