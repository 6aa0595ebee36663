package scanning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyRegistry_For(t *testing.T) {
	r := NewStrategyRegistry()

	in, err := r.For(ShipmentTypeIn)
	require.NoError(t, err)
	inReturn, err := r.For(ShipmentTypeInReturn)
	require.NoError(t, err)
	out, err := r.For(ShipmentTypeOut)
	require.NoError(t, err)
	outReturn, err := r.For(ShipmentTypeOutReturn)
	require.NoError(t, err)

	assert.Equal(t, DirectionIncoming, in.Direction())
	assert.Equal(t, in, inReturn)
	assert.Equal(t, DirectionOutgoing, out.Direction())
	assert.Equal(t, out, outReturn)

	_, err = r.For(ShipmentType("internal"))
	assert.Error(t, err)
}
