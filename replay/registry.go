package replay

import "sync/atomic"

// registryState is the copy-on-write snapshot swapped atomically on every
// membership change. spec.md describes two distinguished sentinel arrays,
// EMPTY and TERMINATED, identified by reference identity; this
// implementation uses an explicit terminated tag instead (spec.md §9's
// "Sentinel arrays for registry state" note sanctions either approach).
type registryState[T any] struct {
	subs       []*Subscription[T]
	terminated bool
}

// registry is the lock-free subscriber registry (spec.md C4): an immutable
// array of active subscriptions, replaced by compare-and-swap on every
// add/remove, with a one-way swap to a frozen terminated state on the first
// terminal producer signal.
type registry[T any] struct {
	state atomic.Pointer[registryState[T]]
}

func newRegistry[T any]() *registry[T] {
	r := &registry[T]{}
	r.state.Store(&registryState[T]{})
	return r
}

// add appends rp to the registry. It returns false without mutating
// anything if the registry has already been terminated, in which case the
// caller (Processor.Subscribe) must fall through to drain so rp observes
// the latched terminal signal directly from the buffer.
func (r *registry[T]) add(rp *Subscription[T]) bool {
	for {
		cur := r.state.Load()
		if cur.terminated {
			return false
		}
		next := make([]*Subscription[T], len(cur.subs)+1)
		copy(next, cur.subs)
		next[len(cur.subs)] = rp
		if r.state.CompareAndSwap(cur, &registryState[T]{subs: next}) {
			return true
		}
	}
}

// remove deletes rp by identity. It is a no-op if rp is not present (it may
// already have been dropped by a concurrent remove, or the registry may
// already be terminated).
func (r *registry[T]) remove(rp *Subscription[T]) {
	for {
		cur := r.state.Load()
		if cur.terminated {
			return
		}
		idx := -1
		for i, s := range cur.subs {
			if s == rp {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		var next []*Subscription[T]
		if len(cur.subs) > 1 {
			next = make([]*Subscription[T], 0, len(cur.subs)-1)
			next = append(next, cur.subs[:idx]...)
			next = append(next, cur.subs[idx+1:]...)
		}
		if r.state.CompareAndSwap(cur, &registryState[T]{subs: next}) {
			return
		}
	}
}

// snapshot returns the currently registered subscriptions. The returned
// slice is never mutated in place (copy-on-write), so callers may range
// over it without synchronization.
func (r *registry[T]) snapshot() []*Subscription[T] {
	return r.state.Load().subs
}

// terminateAndSnapshot freezes the registry (no further add can succeed)
// and returns the subscriptions that were registered at the moment of the
// swap. It is idempotent: a second call returns nil, since Processor calls
// it at most once per the single-terminal-signal contract.
func (r *registry[T]) terminateAndSnapshot() []*Subscription[T] {
	for {
		cur := r.state.Load()
		if cur.terminated {
			return nil
		}
		if r.state.CompareAndSwap(cur, &registryState[T]{terminated: true}) {
			return cur.subs
		}
	}
}
