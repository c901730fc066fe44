package geotile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlock(t *testing.T) {
	for _, dt := range []string{"Byte", "UInt16", "Int16", "UInt32", "Int32", "Float32", "Float64"} {
		b, err := NewBlock(dt, 3, 4, 5)
		require.NoError(t, err, dt)
		assert.Equal(t, 60, b.Len(), dt)
	}
	_, err := NewBlock("CFloat64", 1, 1, 1)
	assert.ErrorIs(t, err, ErrUnsupportedDtype)
}

func TestBlockBand(t *testing.T) {
	b, err := NewBlock("Int16", 2, 2, 2)
	require.NoError(t, err)
	copy(b.Data.([]int16), []int16{1, 2, 3, 4, -5, -6, -7, -8})

	band, err := b.Band(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{-5, -6, -7, -8}, band)

	_, err = b.Band(2)
	assert.Error(t, err)

	short := &Block{Width: 2, Height: 2, Bands: 2, Data: []uint8{1}}
	_, err = short.Band(0)
	assert.Error(t, err)
}
