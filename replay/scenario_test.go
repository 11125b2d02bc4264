package replay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: unbounded, single subscriber, bounded demand.
func TestScenario_UnboundedSingleSubscriberBoundedDemand(t *testing.T) {
	p := New[int](3, true)

	sub := &recordingSubscriber[int]{}
	p.Subscribe(sub)
	require.True(t, sub.subscribed)

	sub.Subscription().Request(3)
	sub.Subscription().Request(100)

	for _, v := range []int{10, 20, 30, 40, 50, 60, 70} {
		p.OnNext(v)
	}
	p.OnComplete()

	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70}, sub.Values())
	assert.True(t, sub.Completed())
	assert.NoError(t, sub.Err())
}

// Scenario 2: late subscriber on unbounded buffer replays full history, then
// continues to receive new values.
func TestScenario_LateSubscriberUnbounded(t *testing.T) {
	p := New[int](3, true)

	for _, v := range []int{1, 2, 3, 4} {
		p.OnNext(v)
	}

	sub := &recordingSubscriber[int]{}
	p.Subscribe(sub)
	sub.Subscription().Request(unboundedDemand)

	assert.Equal(t, []int{1, 2, 3, 4}, sub.Values())

	p.OnNext(5)
	p.OnComplete()

	assert.Equal(t, []int{1, 2, 3, 4, 5}, sub.Values())
	assert.True(t, sub.Completed())
}

// Scenario 3: late subscriber on bounded buffer only sees the retained tail.
func TestScenario_LateSubscriberBounded(t *testing.T) {
	p := New[int](2, false)

	for _, v := range []int{1, 2, 3, 4, 5} {
		p.OnNext(v)
	}

	sub := &recordingSubscriber[int]{}
	p.Subscribe(sub)
	sub.Subscription().Request(unboundedDemand)

	assert.Equal(t, []int{4, 5}, sub.Values())

	p.OnComplete()
	assert.True(t, sub.Completed())
}

// Scenario 4: an error is latched and replayed, after any buffered values,
// to a subscriber that attaches after the fact.
func TestScenario_ErrorReplay(t *testing.T) {
	p := New[int](3, true)

	p.OnNext(1)
	p.OnNext(2)
	boom := errors.New("boom")
	p.OnError(boom)

	sub := &recordingSubscriber[int]{}
	p.Subscribe(sub)
	sub.Subscription().Request(unboundedDemand)

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.ErrorIs(t, sub.Err(), boom)
	assert.False(t, sub.Completed())
}

// Scenario 5: a cancelled subscriber receives no further callbacks; a
// second subscriber attaching afterwards still sees the retained history.
func TestScenario_CancelMidStream(t *testing.T) {
	p := New[int](10, false)

	for _, v := range []int{1, 2, 3, 4, 5} {
		p.OnNext(v)
	}

	subA := &recordingSubscriber[int]{}
	p.Subscribe(subA)
	subA.Subscription().Request(3)
	assert.Equal(t, []int{1, 2, 3}, subA.Values())

	subA.Subscription().Cancel()

	for _, v := range []int{6, 7, 8, 9, 10} {
		p.OnNext(v)
	}
	p.OnComplete()

	assert.Equal(t, []int{1, 2, 3}, subA.Values(), "cancelled subscriber must not see further values")
	assert.False(t, subA.Done(), "cancelled subscriber must not see a terminal signal either")

	subB := &recordingSubscriber[int]{}
	p.Subscribe(subB)
	subB.Subscription().Request(unboundedDemand)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, subB.Values())
	assert.True(t, subB.Completed())
}

// Scenario 6: an invalid demand cancels and errors one subscriber without
// affecting another; a request for exactly the remaining backlog still ends
// with the terminal signal once caught up.
func TestScenario_ZeroDemandTerminal(t *testing.T) {
	p := New[string](3, true)

	subA := &recordingSubscriber[string]{}
	p.Subscribe(subA)
	subA.Subscription().Request(0)
	assert.ErrorIs(t, subA.Err(), ErrInvalidDemand)
	assert.Empty(t, subA.Values())

	subB := &recordingSubscriber[string]{}
	p.Subscribe(subB)
	subB.Subscription().Request(2)

	p.OnNext("a")
	p.OnNext("b")
	p.OnNext("c")
	p.OnComplete()

	assert.Equal(t, []string{"a", "b"}, subB.Values())
	assert.False(t, subB.Done())

	subB.Subscription().Request(1)
	assert.Equal(t, []string{"a", "b", "c"}, subB.Values())
	assert.True(t, subB.Completed())
}
