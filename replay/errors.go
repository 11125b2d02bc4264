package replay

import "errors"

// ErrInvalidDemand is surfaced to a subscriber, via its OnError callback,
// when it calls Request with n <= 0. The subscription is cancelled before
// the error is delivered.
var ErrInvalidDemand = errors.New("replay: request(n) requires n > 0")

// ErrSubscriptionCancelled names the state of a subscription that was
// already cancelled or has already received its terminal signal. Subscription
// methods return no errors, so nothing in this package returns it; Request
// and Cancel on such a subscription are silent no-ops.
var ErrSubscriptionCancelled = errors.New("replay: subscription already cancelled")

// ErrAlreadySubscribed is logged (never returned to a caller) when
// Processor.OnSubscribe is invoked more than once. The contract in spec.md
// §6 requires it be called at most once; a second call is a producer bug,
// not a subscriber-visible error, so it is routed to the unsignalled sink.
var ErrAlreadySubscribed = errors.New("replay: onSubscribe called more than once")
