package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddDemand_SaturatesAtUnbounded(t *testing.T) {
	var n int64
	addDemand(&n, 5)
	assert.Equal(t, int64(5), n)

	addDemand(&n, unboundedDemand)
	assert.Equal(t, unboundedDemand, n)

	// Once saturated, further additions are no-ops.
	addDemand(&n, 10)
	assert.Equal(t, unboundedDemand, n)
}

func TestAddDemand_OverflowSaturates(t *testing.T) {
	n := unboundedDemand - 3
	addDemand(&n, 10)
	assert.Equal(t, unboundedDemand, n)
}

func TestSubDemand_NeverGoesNegative(t *testing.T) {
	n := int64(2)
	subDemand(&n, 5)
	assert.Equal(t, int64(0), n)
}

func TestSubDemand_UnboundedNeverDecremented(t *testing.T) {
	n := unboundedDemand
	subDemand(&n, 1000)
	assert.Equal(t, unboundedDemand, n)
}
