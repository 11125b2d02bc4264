package sysreport

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuf struct {
	length int
	done   bool
}

func (f fakeBuf) Len() int    { return f.length }
func (f fakeBuf) IsDone() bool { return f.done }

func TestReporter_SamplesOnEveryTick(t *testing.T) {
	calls := 0
	r := New(fakeBuf{length: 3}, 5*time.Millisecond, hclog.NewNullLogger(), func() int {
		calls++
		return 2
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	r.Run(ctx)
	assert.GreaterOrEqual(t, calls, 2, "expected at least two ticks to fire within the timeout")
}

func TestReporter_DefaultsInvalidInterval(t *testing.T) {
	r := New(fakeBuf{}, 0, nil, nil)
	require.Equal(t, 10*time.Second, r.interval)
}
