package replay

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// UnsignalledSink receives values and errors that the processor could not
// deliver to any subscriber through the normal contract: a value or error
// arriving from the producer after the buffer has already latched terminal
// (spec.md §7.2). It is an external collaborator (spec.md §6) injected at
// construction via WithUnsignalledSink rather than a process-global, per
// spec.md §9's note on the original's process-global reporter.
type UnsignalledSink interface {
	OnUnsignalled(err error)
}

// LogSink is the default UnsignalledSink: it logs every dropped signal at
// Warn and also accumulates it into a *multierror.Error, so a caller that
// wants an end-of-run summary (e.g. a health check, or a test assertion)
// can retrieve one via Errors() instead of scraping logs. Constructed
// automatically by New when no WithUnsignalledSink option is supplied, so
// the processor is usable without requiring callers to wire up error
// collection up front.
type LogSink struct {
	logger hclog.Logger

	mu   sync.Mutex
	errs *multierror.Error
}

// NewLogSink returns an UnsignalledSink that logs every dropped signal.
func NewLogSink(logger hclog.Logger) *LogSink {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LogSink{logger: logger.Named("unsignalled")}
}

func (s *LogSink) OnUnsignalled(err error) {
	s.logger.Warn("dropping post-terminal signal", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = multierror.Append(s.errs, err)
}

// Errors returns every signal accumulated so far as a single error, or nil
// if none have been dropped.
func (s *LogSink) Errors() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs.ErrorOrNil()
}
