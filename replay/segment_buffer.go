package replay

import "sync/atomic"

// segment is a fixed-size, append-only block of values chained to the next
// segment once full. spec.md's Design Notes (§9) describe the original
// source linking segments through a sentinel slot at index batchSize; this
// implementation uses the explicitly-sanctioned alternative, an atomic next
// pointer on the segment record, which is both simpler and type-safe in Go.
type segment[T any] struct {
	values []T
	next   atomic.Pointer[segment[T]]
}

// segmentBuffer is the unbounded, segmented replay buffer (spec.md C1): an
// append-only store of segments of fixed capacity chained by the producer
// as each fills. Nothing is ever evicted, so every subscriber — regardless
// of when it attaches — can replay the entire stream from index 0.
//
// head is immutable once set; tail and tailIndex are written only by the
// single producer goroutine permitted by contract. size is the only field a
// reading cursor touches, and it is bumped only after the value it counts
// has been written, so observing size == k makes it safe to read the first
// k values.
type segmentBuffer[T any] struct {
	batchSize int
	head      *segment[T]

	tail      *segment[T] // producer-only
	tailIndex int         // producer-only

	size atomic.Int64
	done atomic.Bool
	err  error // written before done is latched; read only after isDone()
}

func newSegmentBuffer[T any](batchSize int) *segmentBuffer[T] {
	if batchSize < 1 {
		batchSize = 1
	}
	first := &segment[T]{values: make([]T, batchSize)}
	return &segmentBuffer[T]{batchSize: batchSize, head: first, tail: first}
}

// onNext is producer-only: see package doc and spec.md §5.
func (b *segmentBuffer[T]) onNext(v T) {
	if b.tailIndex == b.batchSize {
		next := &segment[T]{values: make([]T, b.batchSize)}
		next.values[0] = v
		b.tail.next.Store(next)
		b.tail = next
		b.tailIndex = 1
	} else {
		b.tail.values[b.tailIndex] = v
		b.tailIndex++
	}
	// Release: any reader that subsequently observes this new size via an
	// atomic load is guaranteed to see the value write above.
	b.size.Add(1)
}

func (b *segmentBuffer[T]) onError(err error) {
	if b.done.Load() {
		return
	}
	b.err = err
	b.done.Store(true)
}

func (b *segmentBuffer[T]) onComplete() {
	if b.done.Load() {
		return
	}
	b.done.Store(true)
}

func (b *segmentBuffer[T]) isDone() bool  { return b.done.Load() }
func (b *segmentBuffer[T]) failure() error { return b.err }

func (b *segmentBuffer[T]) newCursor() cursor[T] {
	return &segmentCursor[T]{buf: b, seg: b.head}
}

// segmentCursor walks the segment chain from the very first value, giving
// every subscription a full replay regardless of attach time (spec.md P3).
type segmentCursor[T any] struct {
	buf   *segmentBuffer[T]
	seg   *segment[T]
	idx   int
	index int64
}

func (c *segmentCursor[T]) hasNext() bool {
	return c.index < c.buf.size.Load()
}

func (c *segmentCursor[T]) next() T {
	if c.idx == c.buf.batchSize {
		c.seg = c.seg.next.Load()
		c.idx = 0
	}
	v := c.seg.values[c.idx]
	c.idx++
	c.index++
	return v
}
