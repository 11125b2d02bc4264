package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddRemoveSnapshot(t *testing.T) {
	r := newRegistry[int]()
	assert.Empty(t, r.snapshot())

	s1 := &Subscription[int]{id: 1}
	s2 := &Subscription[int]{id: 2}

	require.True(t, r.add(s1))
	require.True(t, r.add(s2))
	assert.Len(t, r.snapshot(), 2)

	r.remove(s1)
	got := r.snapshot()
	require.Len(t, got, 1)
	assert.Same(t, s2, got[0])

	// Removing an absent subscription is a no-op.
	r.remove(s1)
	assert.Len(t, r.snapshot(), 1)
}

func TestRegistry_TerminateFreezesFurtherAdds(t *testing.T) {
	r := newRegistry[int]()
	s1 := &Subscription[int]{id: 1}
	require.True(t, r.add(s1))

	snap := r.terminateAndSnapshot()
	require.Len(t, snap, 1)
	assert.Same(t, s1, snap[0])

	s2 := &Subscription[int]{id: 2}
	assert.False(t, r.add(s2), "add must fail once the registry is terminated")

	// terminateAndSnapshot is idempotent: a second call yields nil, not the
	// original snapshot again.
	assert.Nil(t, r.terminateAndSnapshot())
}

func TestRegistry_RemoveLastLeavesEmptyNotNilState(t *testing.T) {
	r := newRegistry[int]()
	s1 := &Subscription[int]{id: 1}
	require.True(t, r.add(s1))
	r.remove(s1)
	assert.Empty(t, r.snapshot())
	// Registry must still accept further subscribers after going empty.
	s2 := &Subscription[int]{id: 2}
	assert.True(t, r.add(s2))
}
