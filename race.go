package stop

// Race awaits one result from op, bounded by d. It returns the result,
// or ErrStopped if the deadline fires first.
//
// The check is biased: a deadline that fired strictly before the call is
// always observed, even if op already has a result ready. A deadline
// firing while both are pending races fairly.
//
// Race never aborts the work behind op; on ErrStopped it merely stops
// awaiting it. To avoid leaking the producing goroutine in that case, op
// should be buffered.
func Race[T any](d *Deadline, op <-chan T) (T, error) {
	var zero T

	select {
	case <-d.Done():
		return zero, ErrStopped
	default:
	}

	select {
	case v := <-op:
		return v, nil
	case <-d.Done():
		return zero, ErrStopped
	}
}

// Go runs fn on a new goroutine and races its result against d. The
// result channel is buffered, so fn always runs to completion and never
// blocks, even when the deadline wins.
func Go[T any](d *Deadline, fn func() T) (T, error) {
	op := make(chan T, 1)
	go func() { op <- fn() }()
	return Race(d, op)
}
