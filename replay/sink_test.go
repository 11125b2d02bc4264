package replay

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink_AccumulatesErrors(t *testing.T) {
	sink := NewLogSink(hclog.NewNullLogger())
	require.Nil(t, sink.Errors())

	sink.OnUnsignalled(errors.New("first"))
	sink.OnUnsignalled(errors.New("second"))

	err := sink.Errors()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}
