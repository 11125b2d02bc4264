// Package replay implements a multicast replay buffer: a publish/subscribe
// coordinator that accepts a monotonic stream of values from a single
// upstream producer and re-emits the recorded history to every downstream
// subscriber, each at its own pace, honoring per-subscriber demand.
//
// The package has two buffer retention strategies (New with unbounded=true
// for a growth-without-bound segmented chain that replays the entire
// history to every subscriber, or unbounded=false for a fixed-size ring
// that only retains the most recent bufferSize values) and a lock-free,
// per-subscriber drain loop that reconciles asynchronous request(n) demand
// signals with asynchronous item arrivals without ever taking a lock.
//
// A Processor is both the producer-facing handle (OnNext/OnError/OnComplete)
// and the subscriber-facing attach point (Subscribe). Exactly one goroutine
// may drive the producer-facing methods at a time; Subscribe, and the
// Request/Cancel methods on the Subscription handed to each subscriber, may
// be called from any number of goroutines concurrently.
package replay
