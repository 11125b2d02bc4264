// Package sysreport periodically logs host resource usage alongside
// replay buffer depth and subscriber count, to help diagnose whether a
// slow subscriber is CPU-bound or buffer-bound.
package sysreport

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// BufferStats is the subset of replay.Processor introspection sysreport
// needs. Defined locally (rather than importing *replay.Processor[T]
// directly) so this package stays usable against any buffer-like thing
// that can report a length and done state, including in tests.
type BufferStats interface {
	Len() int
	IsDone() bool
}

// Reporter samples host resources on an interval and logs them next to the
// buffer's current depth.
type Reporter struct {
	buf      BufferStats
	interval time.Duration
	logger   hclog.Logger
	subCount func() int
}

// New constructs a Reporter. subCount, if non-nil, is called on each tick
// to report the current subscriber count alongside buffer depth.
func New(buf BufferStats, interval time.Duration, logger hclog.Logger, subCount func() int) *Reporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Reporter{
		buf:      buf,
		interval: interval,
		logger:   logger.Named("sysreport"),
		subCount: subCount,
	}
}

// Run samples and logs on every tick until ctx is cancelled. Intended to be
// started in its own goroutine by cmd/replaydemo; it never spawns threads
// of its own, matching the core package's no-internal-threads contract
// extended to this ambient reporter (its one goroutine is the caller's).
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sample()
		}
	}
}

func (r *Reporter) sample() {
	fields := []interface{}{
		"buffer_len", r.buf.Len(),
		"buffer_done", r.buf.IsDone(),
	}
	if r.subCount != nil {
		fields = append(fields, "subscribers", r.subCount())
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields,
			"host_mem_used", humanize.Bytes(vm.Used),
			"host_mem_total", humanize.Bytes(vm.Total),
		)
	} else {
		r.logger.Debug("failed to sample host memory", "error", err)
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		fields = append(fields, "host_cpu_pct", pct[0])
	} else if err != nil {
		r.logger.Debug("failed to sample host cpu", "error", err)
	}

	r.logger.Info("replay buffer status", fields...)
}
