package replay

import "github.com/hashicorp/go-hclog"

// Option configures a Processor at construction time. This mirrors the
// teacher's functional-options style used across its newer packages, layered
// on top of the two positional construction parameters spec.md §6 names as
// the only required configuration: bufferSize and unbounded.
type Option func(*config)

type config struct {
	logger  hclog.Logger
	metrics MetricsRecorder
	sink    UnsignalledSink
}

func defaultConfig() *config {
	return &config{
		logger:  hclog.NewNullLogger(),
		metrics: noopMetrics{},
	}
}

// WithLogger sets the hclog.Logger used for the processor and every
// subscription it creates. Unset, logging is silent (hclog.NewNullLogger).
func WithLogger(l hclog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the MetricsRecorder notified of drain-protocol events.
// Unset, metrics calls are no-ops.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithUnsignalledSink overrides the default LogSink used to report values
// and errors that arrive from the producer after the buffer has already
// gone terminal (spec.md §7.2).
func WithUnsignalledSink(sink UnsignalledSink) Option {
	return func(c *config) {
		if sink != nil {
			c.sink = sink
		}
	}
}
