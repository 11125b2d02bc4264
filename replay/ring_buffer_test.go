package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_RetainsExactlyLimit(t *testing.T) {
	b := newRingBuffer[int](2)

	for v := 1; v <= 5; v++ {
		b.onNext(v)
	}

	c := b.newCursor()
	var got []int
	for c.hasNext() {
		got = append(got, c.next())
	}
	assert.Equal(t, []int{4, 5}, got, "ring buffer must retain exactly `limit` most recent values")
}

func TestRingBuffer_BeforeFirstEvictionReplaysEverything(t *testing.T) {
	b := newRingBuffer[int](5)

	for v := 1; v <= 3; v++ {
		b.onNext(v)
	}

	c := b.newCursor()
	var got []int
	for c.hasNext() {
		got = append(got, c.next())
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestRingBuffer_CursorKeepsReadingPastEviction(t *testing.T) {
	b := newRingBuffer[int](2)
	b.onNext(1)
	b.onNext(2)

	c := b.newCursor()
	assert.Equal(t, 1, c.next())

	// Evict 1 by appending enough values to push it out from under the
	// cursor; the cursor must still be able to walk forward to values it
	// already holds a reference into.
	b.onNext(3)
	b.onNext(4)

	assert.True(t, c.hasNext())
	assert.Equal(t, 2, c.next())
	assert.Equal(t, 3, c.next())
	assert.Equal(t, 4, c.next())
	assert.False(t, c.hasNext())
}

func TestRingBuffer_LimitOneRetainsOnlyLatest(t *testing.T) {
	b := newRingBuffer[string](1)
	b.onNext("a")
	b.onNext("b")
	b.onNext("c")

	c := b.newCursor()
	assert.True(t, c.hasNext())
	assert.Equal(t, "c", c.next())
	assert.False(t, c.hasNext())
}
