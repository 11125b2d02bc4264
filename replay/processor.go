package replay

import (
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// Upstream is the handle a Processor receives from OnSubscribe, letting it
// request demand from (or cancel) the single upstream producer. It is the
// out-of-scope external collaborator named in spec.md §1/§6: the processor
// never creates one, it only consumes it.
type Upstream interface {
	Request(n int64)
	Cancel()
}

// Processor is the multicast replay coordinator (spec.md C5, "Processor
// facade"). It is both the producer-facing handle — OnSubscribe, OnNext,
// OnError, OnComplete, which must be called serially by a single producer
// goroutine and never concurrently with themselves or each other — and the
// subscriber-facing attach point, Subscribe, safe to call from any number
// of goroutines at any time, including before the first value arrives and
// after the stream has terminated.
type Processor[T any] struct {
	buf buffer[T]
	reg *registry[T]

	nextID    uint64 // atomic
	subscribed int32 // atomic bool, guards OnSubscribe idempotence

	logger  hclog.Logger
	metrics MetricsRecorder
	sink    UnsignalledSink
}

// New constructs a Processor. bufferSize and unbounded are spec.md §6's
// only construction parameters: when unbounded is true, bufferSize is the
// unbounded buffer's segment capacity (C1); when false, it is the bounded
// ring's retention limit (C2).
func New[T any](bufferSize int, unbounded bool, opts ...Option) *Processor[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sink == nil {
		cfg.sink = NewLogSink(cfg.logger)
	}

	var buf buffer[T]
	if unbounded {
		buf = newSegmentBuffer[T](bufferSize)
	} else {
		buf = newRingBuffer[T](bufferSize)
	}

	return &Processor[T]{
		buf:     buf,
		reg:     newRegistry[T](),
		logger:  cfg.logger.Named("replay"),
		metrics: cfg.metrics,
		sink:    cfg.sink,
	}
}

// OnSubscribe is called by the upstream producer exactly once (spec.md §6).
// If the buffer is already terminal (possible only if OnError/OnComplete
// raced ahead of a slow upstream handshake) the upstream is told to cancel
// immediately; otherwise unbounded demand is requested from it, since the
// processor's own subscribers — not the upstream — are the place
// backpressure is applied.
func (p *Processor[T]) OnSubscribe(upstream Upstream) {
	if !atomic.CompareAndSwapInt32(&p.subscribed, 0, 1) {
		p.sink.OnUnsignalled(ErrAlreadySubscribed)
		return
	}
	if p.buf.isDone() {
		upstream.Cancel()
		return
	}
	upstream.Request(unboundedDemand)
}

// OnNext is called serially by the producer for every value. If the buffer
// has already terminated the value is routed to the unsignalled sink
// instead of being delivered (spec.md §7.2); otherwise it is appended to
// the buffer and every currently registered subscription is drained. Late
// subscribers added concurrently with this call pick the value up through
// their own subscribe-time drain, not through this loop's snapshot.
func (p *Processor[T]) OnNext(v T) {
	if p.buf.isDone() {
		p.sink.OnUnsignalled(fmt.Errorf("replay: onNext after terminal: %v", v))
		return
	}
	p.buf.onNext(v)
	p.metrics.ValueBuffered(1)
	for _, s := range p.reg.snapshot() {
		drain(s)
	}
}

// OnError terminates the stream with an error. It is a no-op routed to the
// unsignalled sink if the buffer is already terminal; otherwise the error
// is latched into the buffer, the registry is frozen, and every
// subscription registered at that moment is drained so it observes the
// terminal signal.
func (p *Processor[T]) OnError(err error) {
	if p.buf.isDone() {
		p.sink.OnUnsignalled(err)
		return
	}
	p.buf.onError(err)
	p.metrics.Terminated(err)
	for _, s := range p.reg.terminateAndSnapshot() {
		drain(s)
	}
}

// OnComplete terminates the stream successfully. A call after the buffer is
// already terminal is silently dropped, per spec.md §7.2 (completion
// carries no payload to route to the sink).
func (p *Processor[T]) OnComplete() {
	if p.buf.isDone() {
		return
	}
	p.buf.onComplete()
	p.metrics.Terminated(nil)
	for _, s := range p.reg.terminateAndSnapshot() {
		drain(s)
	}
}

// Subscribe attaches a new subscriber. The subscriber receives its
// Subscription handle via OnSubscribe before Subscribe returns, and may
// call Request/Cancel on it immediately, even reentrantly from within
// OnSubscribe itself.
func (p *Processor[T]) Subscribe(sub Subscriber[T]) {
	id := atomic.AddUint64(&p.nextID, 1)
	rp := newSubscription[T](id, sub, p.buf, p.reg, p.metrics, p.logger)

	sub.OnSubscribe(rp)

	if p.reg.add(rp) {
		if rp.isCancelled() {
			// Raced with a Cancel call made from inside OnSubscribe.
			p.reg.remove(rp)
		}
		p.metrics.SubscriptionOpened(id)
		return
	}

	// Registry is already terminated: rp was never added, so drain must be
	// invoked explicitly for it to observe the latched terminal signal.
	drain(rp)
}

// Len reports the number of values currently retained in the buffer. It is
// a point-in-time snapshot with no behavioral effect, provided for
// introspection (e.g. internal/sysreport).
func (p *Processor[T]) Len() int {
	switch b := p.buf.(type) {
	case *segmentBuffer[T]:
		return int(b.size.Load())
	case *ringBuffer[T]:
		return int(b.size.Load())
	default:
		return 0
	}
}

// IsDone reports whether the upstream producer has already sent a terminal
// signal (OnError or OnComplete).
func (p *Processor[T]) IsDone() bool {
	return p.buf.isDone()
}
