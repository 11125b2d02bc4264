package replay

import "sync/atomic"

// drain is the per-subscription serializer (spec.md C6 / §4.6): an
// at-most-one-active-executor loop guarded by the subscription's WIP
// counter. It is invoked both by the producer (after every onNext/onError/
// onComplete) and by the subscriber (after every Request), and is always
// safe to call redundantly: a call that loses the WIP race just leaves its
// increment behind for the current winner to observe.
func drain[T any](s *Subscription[T]) {
	if !enterWIP(&s.wip) {
		return
	}

	missed := int32(1)
	for {
		if s.cur == nil {
			s.cur = s.buf.newCursor()
		}

		requested := atomic.LoadInt64(&s.requested)
		var emitted int64

		for emitted != requested {
			if s.isCancelled() {
				s.cur = nil
				return
			}

			done := s.buf.isDone()
			empty := !s.cur.hasNext()
			if done && empty {
				s.cur = nil
				s.emitTerminal()
				return
			}
			if empty {
				break
			}

			v := s.cur.next()
			s.subscriber.OnNext(v)
			emitted++
			if s.metrics != nil {
				s.metrics.ValueDelivered(s.id)
			}
		}

		if emitted == requested {
			// Terminal-with-empty beats no-demand: even a subscriber that
			// has requested (or consumed) exactly zero more values must
			// still see the terminal signal once the buffer is done and
			// it has caught up (spec.md §4.6/§4.7).
			if s.isCancelled() {
				s.cur = nil
				return
			}
			if s.buf.isDone() && !s.cur.hasNext() {
				s.cur = nil
				s.emitTerminal()
				return
			}
		}

		if emitted != 0 && requested != unboundedDemand {
			subDemand(&s.requested, emitted)
		}

		missed = leaveWIP(&s.wip, missed)
		if missed == 0 {
			return
		}
	}
}

// emitTerminal delivers the single terminal signal appropriate to the
// buffer's latched state: OnError if the buffer terminated with an error,
// OnComplete otherwise. It must only be called once the drain loop has
// confirmed (done && empty) and is about to return. The subscription is
// marked cancelled first, so a later Request(n <= 0) delivers no OnError.
func (s *Subscription[T]) emitTerminal() {
	atomic.StoreInt32(&s.cancelled, 1)
	if err := s.buf.failure(); err != nil {
		s.subscriber.OnError(err)
	} else {
		s.subscriber.OnComplete()
	}
}
