// Package natsfeed adapts a NATS subject into a replay.Upstream: messages
// published to the subject become OnNext calls into a *replay.Processor,
// and subject-level failures are aggregated for end-of-session reporting.
package natsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/nats-io/nats.go"

	"github.com/hashicorp/go-multicast-replay/replay"
)

// Sink receives the decoded payload of every message on the subject. It is
// the glue between this package and a *replay.Processor[T]: typically
// Sink is proc.OnNext, but tests can substitute a recording function.
type Sink[T any] func(v T)

// Feed subscribes to a NATS subject and feeds decoded JSON payloads into a
// Sink, implementing the replay.Upstream contract the processor it is
// attached to expects via OnSubscribe.
type Feed[T any] struct {
	conn    *nats.Conn
	subject string
	sink    Sink[T]
	onDone  func(err error)
	logger  hclog.Logger

	doneOnce sync.Once

	mu   sync.Mutex
	sub  *nats.Subscription
	errs *multierror.Error
}

// Option configures a Feed at construction time.
type Option func(*feedConfig)

type feedConfig struct {
	logger hclog.Logger
}

// WithLogger sets the hclog.Logger used for subscribe/unsubscribe and
// decode-failure logging.
func WithLogger(l hclog.Logger) Option {
	return func(c *feedConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New connects a NATS subject to sink. onDone is called at most once, when
// the feed stops for any reason (upstream Cancel, connection closure, or a
// fatal subscribe error); a nil error means a clean stop.
func New[T any](conn *nats.Conn, subject string, sink Sink[T], onDone func(err error), opts ...Option) *Feed[T] {
	cfg := &feedConfig{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Feed[T]{
		conn:    conn,
		subject: subject,
		sink:    sink,
		onDone:  onDone,
		logger:  cfg.logger.Named("natsfeed").With("subject", subject),
	}
}

// Request implements replay.Upstream. It is called once by the processor
// with unboundedDemand (spec.md §6's upstream contract never backpressures
// the NATS side; the processor's own subscribers are where demand is
// applied), so Request's only job is to establish the subscription.
func (f *Feed[T]) Request(n int64) {
	f.mu.Lock()
	already := f.sub != nil
	f.mu.Unlock()
	if already || n <= 0 {
		return
	}

	sub, err := f.conn.Subscribe(f.subject, f.handleMessage)
	if err != nil {
		f.finish(fmt.Errorf("natsfeed: subscribe %q: %w", f.subject, err))
		return
	}

	f.mu.Lock()
	f.sub = sub
	f.mu.Unlock()
	f.logger.Debug("subscribed")

	f.conn.SetClosedHandler(func(*nats.Conn) {
		f.finish(nil)
	})
}

// Cancel implements replay.Upstream: it unsubscribes and reports the
// accumulated decode-error history, if any.
func (f *Feed[T]) Cancel() {
	f.mu.Lock()
	sub := f.sub
	f.sub = nil
	f.mu.Unlock()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			f.addErr(fmt.Errorf("natsfeed: unsubscribe: %w", err))
		}
	}
	f.finish(f.Errors())
}

func (f *Feed[T]) handleMessage(msg *nats.Msg) {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		f.addErr(fmt.Errorf("natsfeed: decode %q: %w", f.subject, err))
		f.logger.Warn("dropping undecodable message", "error", err)
		return
	}
	f.sink(v)
}

func (f *Feed[T]) addErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = multierror.Append(f.errs, err)
}

// Errors returns every decode/unsubscribe error seen by this feed session
// as a single error, or nil if the session was clean.
func (f *Feed[T]) Errors() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs.ErrorOrNil()
}

func (f *Feed[T]) finish(err error) {
	f.doneOnce.Do(func() {
		if f.onDone != nil {
			f.onDone(err)
		}
	})
}

// Drive is a convenience wrapper for cmd/replaydemo: it calls
// proc.OnSubscribe(feed), blocks until ctx is cancelled, then calls
// feed.Cancel() and proc.OnComplete()/OnError() depending on whether the
// session ended cleanly.
func Drive[T any](ctx context.Context, proc *replay.Processor[T], f *Feed[T]) {
	done := make(chan error, 1)
	f.onDone = func(err error) { done <- err }

	proc.OnSubscribe(f)

	select {
	case <-ctx.Done():
		f.Cancel()
		if err := <-done; err != nil {
			proc.OnError(err)
			return
		}
		proc.OnComplete()
	case err := <-done:
		if err != nil {
			proc.OnError(err)
			return
		}
		proc.OnComplete()
	}
}
