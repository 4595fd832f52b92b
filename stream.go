package stop

// A Stream passes items from a wrapped channel through until its
// deadline fires or the channel is closed. Receiving an item and
// delivering it are one atomic unit: an item taken from the wrapped
// channel is always delivered to the consumer, and once the deadline is
// observed no further item is requested. Cancellation therefore lands
// between items, never inside one.
type Stream[T any] struct {
	out chan T
	err error
}

// NewStream bounds in by d. The consumer receives from C until it is
// closed, then may consult Err to distinguish a stopped stream from a
// naturally ended one.
func NewStream[T any](d *Deadline, in <-chan T) *Stream[T] {
	s := &Stream[T]{out: make(chan T)}
	go s.pump(d, in)
	return s
}

// C returns the channel of delivered items. It is closed once the
// deadline fires or the wrapped channel is closed. The consumer must
// keep receiving until then, or the pump goroutine blocks.
func (s *Stream[T]) C() <-chan T {
	return s.out
}

// Err reports why the stream ended: ErrStopped if the deadline fired,
// nil if the wrapped channel was closed. Valid only once C is closed.
func (s *Stream[T]) Err() error {
	return s.err
}

func (s *Stream[T]) pump(d *Deadline, in <-chan T) {
	defer close(s.out)
	for {
		// Biased: a deadline that fired before this item request wins,
		// even if an item is also ready.
		select {
		case <-d.Done():
			s.err = ErrStopped
			return
		default:
		}

		select {
		case <-d.Done():
			s.err = ErrStopped
			return
		case v, ok := <-in:
			if !ok {
				return
			}
			s.out <- v
		}
	}
}
