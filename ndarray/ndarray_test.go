package ndarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShapeMismatch(t *testing.T) {
	_, err := New([]float32{1, 2, 3}, 2, 2)
	require.Error(t, err)

	_, err = New([]string{"a"})
	require.Error(t, err)
}

func TestIntrospection(t *testing.T) {
	a := Must([]uint16{0, 1, 2, 3, 4, 5}, 3, 2)
	assert.Equal(t, Uint16, a.DType())
	assert.Equal(t, 2, a.DType().Size())
	assert.Equal(t, []int{3, 2}, a.Shape())
	assert.Equal(t, []int{2}, a.TrailingShape())
	assert.Equal(t, 3, a.Rows())
	assert.Equal(t, 2, a.RowSize())
	assert.Equal(t, []float64{4, 5}, a.Row(2))

	flat := Must([]uint32{7, 8, 9})
	assert.Equal(t, []int{3}, flat.Shape())
	assert.Empty(t, flat.TrailingShape())
	assert.Equal(t, 1, flat.RowSize())
}

func TestMinMaxAxis0(t *testing.T) {
	a := FromVec3([][3]float32{{1, -2, 3}, {-1, 5, 0}, {0, 0, 9}})
	min, max := a.MinMax()
	assert.Equal(t, []float64{-1, -2, 0}, min)
	assert.Equal(t, []float64{1, 5, 9}, max)

	empty := FromVec3(nil)
	min, max = empty.MinMax()
	assert.Nil(t, min)
	assert.Nil(t, max)
}

func TestConversions(t *testing.T) {
	a := Must([]uint8{1, 2, 3})
	assert.Equal(t, []float32{1, 2, 3}, a.Float32s())
	assert.Equal(t, []uint32{1, 2, 3}, a.Uint32s())

	f := Must([]float32{1.5})
	out := f.Float32s()
	out[0] = 0
	assert.Equal(t, float64(1.5), f.At(0), "Float32s must copy")
}
