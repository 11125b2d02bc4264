package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentBuffer_RolloverAcrossSegments(t *testing.T) {
	b := newSegmentBuffer[int](2)

	for v := 1; v <= 5; v++ {
		b.onNext(v)
	}

	c := b.newCursor()
	var got []int
	for c.hasNext() {
		got = append(got, c.next())
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestSegmentBuffer_MultipleCursorsIndependent(t *testing.T) {
	b := newSegmentBuffer[int](3)
	b.onNext(1)
	b.onNext(2)

	c1 := b.newCursor()
	require.True(t, c1.hasNext())
	assert.Equal(t, 1, c1.next())

	c2 := b.newCursor()
	assert.Equal(t, 1, c2.next())
	assert.Equal(t, 2, c2.next())
	assert.False(t, c2.hasNext())

	b.onNext(3)
	assert.True(t, c1.hasNext())
	assert.Equal(t, 2, c1.next())
	assert.Equal(t, 3, c1.next())
}

func TestSegmentBuffer_TerminalLatchIsIdempotent(t *testing.T) {
	b := newSegmentBuffer[int](4)
	b.onNext(1)
	b.onComplete()
	assert.True(t, b.isDone())
	assert.NoError(t, b.failure())

	// A second terminal signal must not overwrite the first.
	b.onError(assertErr)
	assert.NoError(t, b.failure())
}

func TestSegmentBuffer_ErrorLatchedBeforeDone(t *testing.T) {
	b := newSegmentBuffer[int](4)
	b.onError(assertErr)
	assert.True(t, b.isDone())
	assert.ErrorIs(t, b.failure(), assertErr)
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }
