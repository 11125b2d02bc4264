package replay

import (
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
)

// Subscriber is implemented by a downstream consumer. Processor.Subscribe
// calls OnSubscribe exactly once with the handle, then delivers zero or
// more OnNext calls, then at most one of OnError or OnComplete. No callback
// is ever invoked after a terminal signal or after Cancel.
//
// Implementations must not block for long and must never panic: spec.md §7
// leaves a panicking subscriber callback unhandled by design, propagating
// straight through the calling goroutine (the producer's OnNext, or a
// subscriber's own Request/Cancel caller).
type Subscriber[T any] interface {
	OnSubscribe(sub *Subscription[T])
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Subscription is the handle a subscriber uses to pull values: Request
// grants additional demand, Cancel stops delivery permanently. Both methods
// are safe to call from any goroutine, including concurrently with each
// other and with the producer delivering values.
type Subscription[T any] struct {
	id uint64

	subscriber Subscriber[T]
	buf        buffer[T]
	registry   *registry[T]
	metrics    MetricsRecorder
	logger     hclog.Logger

	cur cursor[T]

	requested int64 // atomic, saturating at unboundedDemand
	wip       int32 // atomic work-in-progress counter (spec.md §4.3)
	cancelled int32 // atomic bool
}

func newSubscription[T any](id uint64, sub Subscriber[T], buf buffer[T], reg *registry[T], metrics MetricsRecorder, logger hclog.Logger) *Subscription[T] {
	return &Subscription[T]{
		id:         id,
		subscriber: sub,
		buf:        buf,
		registry:   reg,
		metrics:    metrics,
		logger:     logger.With("subscriber_id", subscriberLabel(id)),
	}
}

// subscriberLabel renders a subscriber's numeric id as a short, stable hash
// string suitable for log fields and metric labels, rather than exposing
// the raw sequential counter (which would otherwise read as if subscriber
// identity were meaningful ordering information to an operator).
func subscriberLabel(id uint64) string {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(id >> (8 * i))
	}
	return fmt.Sprintf("%08x", xxhash.Sum64(buf[:])&0xffffffff)
}

// Request adds n to this subscription's pending demand. n must be > 0; a
// non-positive n is an error delivered synchronously to the subscriber via
// OnError, and the subscription is cancelled (spec.md §7.3).
func (s *Subscription[T]) Request(n int64) {
	if n <= 0 {
		if s.cancel() {
			s.subscriber.OnError(fmt.Errorf("%w: got %d", ErrInvalidDemand, n))
		}
		return
	}
	addDemand(&s.requested, n)
	drain(s)
}

// Cancel stops delivery to this subscription. It is idempotent; subsequent
// Request or Cancel calls are no-ops (spec.md P6).
func (s *Subscription[T]) Cancel() {
	s.cancel()
}

// cancel reports whether this call performed the cancellation; it returns
// false if the subscription was already cancelled or terminated.
func (s *Subscription[T]) cancel() bool {
	if !atomic.CompareAndSwapInt32(&s.cancelled, 0, 1) {
		return false
	}
	if s.registry != nil {
		s.registry.remove(s)
	}
	if s.metrics != nil {
		s.metrics.SubscriptionCancelled(s.id)
	}
	// Only release the cursor if we win WIP entry, i.e. no drain is
	// currently in flight for this subscription; an in-flight drain will
	// itself observe cancelled and release the cursor before returning.
	if enterWIP(&s.wip) {
		s.cur = nil
	}
	return true
}

func (s *Subscription[T]) isCancelled() bool {
	return atomic.LoadInt32(&s.cancelled) == 1
}

// enterWIP attempts to become the sole drain-body executor for a
// subscription. It returns true iff the prior counter value was zero,
// meaning the caller must run (or re-run) the drain body; any other caller
// that loses the race simply leaves its increment behind to be observed by
// the current winner (spec.md §4.3's queue-drain serializer).
func enterWIP(wip *int32) bool {
	return atomic.AddInt32(wip, 1) == 1
}

// leaveWIP subtracts missed (the number of drain passes already accounted
// for) from wip and returns the result. A nonzero result means a concurrent
// signal arrived while the body ran and the same goroutine must loop again
// without anyone else taking over.
func leaveWIP(wip *int32, missed int32) int32 {
	return atomic.AddInt32(wip, -missed)
}
