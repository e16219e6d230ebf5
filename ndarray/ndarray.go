// Package ndarray holds the small row-major numeric arrays that carry
// geometry between the scene graph and the container codec. An array knows
// its element type and its shape, so the codec can infer accessor types
// from the trailing (per-row) shape without guessing.
package ndarray

import (
	"fmt"

	"github.com/pkg/errors"
)

type DType int

const (
	Invalid DType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Float32
	Float64
)

var dtypeNames = [...]string{
	Invalid: "invalid",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
}

func (d DType) String() string {
	if d < 0 || int(d) >= len(dtypeNames) {
		return fmt.Sprintf("dtype(%d)", int(d))
	}
	return dtypeNames[d]
}

// Size returns the byte size of one element.
func (d DType) Size() int {
	switch d {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Float64:
		return 8
	}
	return 0
}

// Array is a row-major n-d array. The first dimension counts rows
// (vertices, indices), the rest is the trailing shape of one row.
type Array struct {
	dtype DType
	shape []int
	data  interface{}
}

func dtypeOf(data interface{}) (DType, int) {
	switch v := data.(type) {
	case []int8:
		return Int8, len(v)
	case []uint8:
		return Uint8, len(v)
	case []int16:
		return Int16, len(v)
	case []uint16:
		return Uint16, len(v)
	case []int32:
		return Int32, len(v)
	case []uint32:
		return Uint32, len(v)
	case []int64:
		return Int64, len(v)
	case []float32:
		return Float32, len(v)
	case []float64:
		return Float64, len(v)
	}
	return Invalid, 0
}

// New wraps a flat typed slice. The product of shape must match the slice
// length; an empty shape means a 1-d array of len(data) rows.
func New(data interface{}, shape ...int) (*Array, error) {
	dtype, n := dtypeOf(data)
	if dtype == Invalid {
		return nil, errors.Errorf("unsupported array storage %T", data)
	}
	if len(shape) == 0 {
		shape = []int{n}
	}
	total := 1
	for _, s := range shape {
		if s < 0 {
			return nil, errors.Errorf("negative dimension in shape %v", shape)
		}
		total *= s
	}
	if total != n {
		return nil, errors.Errorf("shape %v needs %d elements, got %d", shape, total, n)
	}
	return &Array{dtype: dtype, shape: append([]int(nil), shape...), data: data}, nil
}

// Must is New for literal data known to be well formed.
func Must(data interface{}, shape ...int) *Array {
	a, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return a
}

// FromVec3 builds a (n, 3) float32 array.
func FromVec3(v [][3]float32) *Array {
	flat := make([]float32, 0, len(v)*3)
	for _, e := range v {
		flat = append(flat, e[0], e[1], e[2])
	}
	return Must(flat, len(v), 3)
}

// FromVec2 builds a (n, 2) float32 array.
func FromVec2(v [][2]float32) *Array {
	flat := make([]float32, 0, len(v)*2)
	for _, e := range v {
		flat = append(flat, e[0], e[1])
	}
	return Must(flat, len(v), 2)
}

func (a *Array) DType() DType { return a.dtype }

func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// TrailingShape is the shape of a single row.
func (a *Array) TrailingShape() []int { return append([]int(nil), a.shape[1:]...) }

// Rows is the size of axis 0.
func (a *Array) Rows() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// RowSize is the number of elements in one row.
func (a *Array) RowSize() int {
	n := 1
	for _, s := range a.shape[1:] {
		n *= s
	}
	return n
}

func (a *Array) Len() int {
	_, n := dtypeOf(a.data)
	return n
}

// Data returns the backing slice, not a copy.
func (a *Array) Data() interface{} { return a.data }

// At returns the flat element i converted to float64.
func (a *Array) At(i int) float64 {
	switch v := a.data.(type) {
	case []int8:
		return float64(v[i])
	case []uint8:
		return float64(v[i])
	case []int16:
		return float64(v[i])
	case []uint16:
		return float64(v[i])
	case []int32:
		return float64(v[i])
	case []uint32:
		return float64(v[i])
	case []int64:
		return float64(v[i])
	case []float32:
		return float64(v[i])
	case []float64:
		return v[i]
	}
	panic("ndarray: invalid storage")
}

// Float32s copies the array into a flat float32 slice.
func (a *Array) Float32s() []float32 {
	if v, ok := a.data.([]float32); ok {
		return append([]float32(nil), v...)
	}
	out := make([]float32, a.Len())
	for i := range out {
		out[i] = float32(a.At(i))
	}
	return out
}

// Uint32s copies the array into a flat uint32 slice.
func (a *Array) Uint32s() []uint32 {
	if v, ok := a.data.([]uint32); ok {
		return append([]uint32(nil), v...)
	}
	out := make([]uint32, a.Len())
	for i := range out {
		out[i] = uint32(a.At(i))
	}
	return out
}

// MinMax reduces along axis 0, giving one value per row element.
func (a *Array) MinMax() (min, max []float64) {
	rowSize := a.RowSize()
	rows := a.Rows()
	if rows == 0 || rowSize == 0 {
		return nil, nil
	}
	min = make([]float64, rowSize)
	max = make([]float64, rowSize)
	for c := 0; c < rowSize; c++ {
		min[c] = a.At(c)
		max[c] = min[c]
	}
	for r := 1; r < rows; r++ {
		for c := 0; c < rowSize; c++ {
			v := a.At(r*rowSize + c)
			if v < min[c] {
				min[c] = v
			}
			if v > max[c] {
				max[c] = v
			}
		}
	}
	return min, max
}

// Row returns row r as float64 values.
func (a *Array) Row(r int) []float64 {
	rowSize := a.RowSize()
	out := make([]float64, rowSize)
	for c := range out {
		out[c] = a.At(r*rowSize + c)
	}
	return out
}

func (a *Array) String() string {
	return fmt.Sprintf("ndarray(%v %v)", a.dtype, a.shape)
}
