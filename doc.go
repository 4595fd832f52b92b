// Package stop implements cooperative cancellation for concurrent work.
//
// Closing a channel is Go's built-in broadcast, but it is a hard signal:
// nothing relates it to the unit of work a goroutine is in the middle of.
// This package wraps that broadcast in an owner/observer pair so that an
// operation bounded by it terminates between logical units of work, never
// in the middle of one. A unit is either fully completed or cleanly not
// started.
//
// A Source is the unique owner of a one-shot signal. It hands out any
// number of Tokens, each of which can observe the signal independently.
// Stopping the Source wakes every observer exactly once, and the signal
// never resets.
//
//	src := stop.NewSource()
//	go worker(src.Token())
//	...
//	src.Stop() // every token observes the stop
//
// Tokens, durations, and instants all convert to a Deadline, which the
// Race and Stream combinators use to bound a single operation or a whole
// item stream:
//
//	work := stop.NewStream(token.Deadline(), jobs)
//	for job := range work.C() {
//		handle(job) // never interrupted mid-job
//	}
package stop
