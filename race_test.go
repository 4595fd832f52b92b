package stop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRaceCompleted(t *testing.T) {
	op := make(chan int, 1)
	op <- 42

	v, err := Race(Never.Deadline(), op)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestRacePreStoppedBias(t *testing.T) {
	src := NewSource()
	src.Stop()

	// Both the deadline and the result are ready. The deadline fired
	// strictly before the call, so it must win.
	op := make(chan int, 1)
	op <- 42

	v, err := Race(src.Token().Deadline(), op)
	require.Equal(t, ErrStopped, err)
	require.Zero(t, v)
}

func TestRaceStoppedWhilePending(t *testing.T) {
	src := NewSource()
	op := make(chan int)

	go func() {
		time.Sleep(10 * time.Millisecond)
		src.Stop()
	}()

	_, err := Race(src.Token().Deadline(), op)
	require.Equal(t, ErrStopped, err)
}

func TestRaceTimeout(t *testing.T) {
	// A never-completing operation against a 200ms deadline.
	d := After(200 * time.Millisecond)
	defer d.Stop()

	never := make(chan struct{})

	start := time.Now()
	_, err := Race(d, never)
	elapsed := time.Since(start)

	require.Equal(t, ErrStopped, err)
	require.GreaterOrEqual(t, elapsed, 200*time.Millisecond, "a deadline must never fire early")
	require.Less(t, elapsed, 5*time.Second)
}

func TestGo(t *testing.T) {
	v, err := Go(Never.Deadline(), func() string { return "done" })
	require.NoError(t, err)
	require.Equal(t, "done", v)
}

func TestGoStopped(t *testing.T) {
	src := NewSource()
	src.Stop()

	ran := make(chan struct{})
	_, err := Go(src.Token().Deadline(), func() int {
		close(ran)
		return 1
	})
	require.Equal(t, ErrStopped, err)

	// The wrapped work is not aborted, only no longer awaited.
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("wrapped work did not run to completion")
	}
}
