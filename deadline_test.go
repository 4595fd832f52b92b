package stop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stopkit/stop/pkg/clock"
)

func TestTokenDeadline(t *testing.T) {
	src := NewSource()
	d := src.Token().Deadline()

	require.False(t, d.Expired())
	d.Stop() // no-op for token deadlines

	src.Stop()
	require.True(t, d.Expired())

	select {
	case <-d.Done():
	default:
		t.Fatal("done channel must be closed after stop")
	}
}

func TestAfterOnFiresAtTarget(t *testing.T) {
	fake := clock.NewFake()
	d := AfterOn(fake, 200*time.Millisecond)

	fake.Advance(199 * time.Millisecond)
	require.False(t, d.Expired(), "deadline must never fire before its target")

	fake.Advance(time.Millisecond)
	require.True(t, d.Expired())
}

func TestAtOnFiresAtTarget(t *testing.T) {
	fake := clock.NewFake()
	target := fake.Now().Add(time.Minute)
	d := AtOn(fake, target)

	fake.Set(target.Add(-time.Nanosecond))
	require.False(t, d.Expired())

	fake.Set(target)
	require.True(t, d.Expired())
}

func TestCloneReanchorsDurations(t *testing.T) {
	fake := clock.NewFake()
	d := AfterOn(fake, 100*time.Millisecond)

	fake.Advance(50 * time.Millisecond)
	c := d.Clone()

	fake.Advance(50 * time.Millisecond)
	require.True(t, d.Expired())
	require.False(t, c.Expired(), "a cloned duration deadline must re-anchor to clone time")

	fake.Advance(50 * time.Millisecond)
	require.True(t, c.Expired())
}

func TestCloneKeepsInstants(t *testing.T) {
	fake := clock.NewFake()
	target := fake.Now().Add(time.Second)
	d := AtOn(fake, target)
	c := d.Clone()

	fake.Set(target)
	require.True(t, d.Expired())
	require.True(t, c.Expired(), "a cloned instant deadline must keep its target exactly")
}

func TestCloneTokenDeadline(t *testing.T) {
	src := NewSource()
	d := src.Token().Deadline()
	c := d.Clone()

	src.Stop()
	require.True(t, d.Expired())
	require.True(t, c.Expired())
}

func TestDeadlineStopReleases(t *testing.T) {
	fake := clock.NewFake()
	d := AfterOn(fake, 100*time.Millisecond)

	d.Stop()
	fake.Advance(time.Second)
	require.False(t, d.Expired(), "a stopped deadline must not fire")

	d.Stop()
}
