package replay

// buffer is the storage strategy shared by the unbounded segmented buffer
// (segmentBuffer, spec.md C1) and the bounded ring buffer (ringBuffer, C2).
// onNext/onError/onComplete are called by exactly one producer goroutine by
// contract (spec.md §5); isDone/failure/newCursor are safe to call from any
// number of concurrent subscriber-side goroutines.
type buffer[T any] interface {
	onNext(v T)
	onError(err error)
	onComplete()

	// isDone reports whether a terminal producer signal has been latched.
	// Acquire semantics: once true, failure() reflects its final value.
	isDone() bool

	// failure returns the latched error, or nil if the buffer completed
	// without error (or has not yet terminated).
	failure() error

	// newCursor returns a fresh read cursor positioned at this buffer's
	// replay start point: index 0 for the unbounded buffer (full replay),
	// the current head for the bounded ring (latecomers see only the
	// retained tail).
	newCursor() cursor[T]
}

// cursor is a subscriber-local read position into a buffer. It is only ever
// touched by the single goroutine that currently holds a subscription's WIP
// serializer (drain.go), so its methods need no synchronization of their
// own; the synchronization is against the buffer's producer-written fields,
// not against other cursors.
type cursor[T any] interface {
	// hasNext reports whether at least one more value is currently
	// available to read, given the buffer's state as of this call.
	hasNext() bool

	// next returns the next value and advances the cursor. Only valid to
	// call immediately after hasNext() returned true for the same buffer
	// state; a concurrent append between the hasNext() and next() call is
	// harmless (next() will simply observe it too).
	next() T
}
