package codec

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"

	"github.com/mogaika/gltfscene/ndarray"
)

var componentTypes = map[ndarray.DType]gltf.ComponentType{
	ndarray.Int8:    gltf.ComponentByte,
	ndarray.Uint8:   gltf.ComponentUbyte,
	ndarray.Int16:   gltf.ComponentShort,
	ndarray.Uint16:  gltf.ComponentUshort,
	ndarray.Uint32:  gltf.ComponentUint,
	ndarray.Float32: gltf.ComponentFloat,
}

// MaxZeroAccessorBytes limits accessors without a buffer view, which
// decode as zeros and are not bounded by any buffer.
const MaxZeroAccessorBytes = 64 << 20

type accessorShape struct {
	typ        gltf.AccessorType
	trailing   []int
	components int
}

var accessorShapes = []accessorShape{
	{gltf.AccessorScalar, nil, 1},
	{gltf.AccessorVec2, []int{2}, 2},
	{gltf.AccessorVec3, []int{3}, 3},
	{gltf.AccessorVec4, []int{4}, 4},
	{gltf.AccessorMat2, []int{2, 2}, 4},
	{gltf.AccessorMat3, []int{3, 3}, 9},
	{gltf.AccessorMat4, []int{4, 4}, 16},
}

func isMatrix(t gltf.AccessorType) bool {
	return t == gltf.AccessorMat2 || t == gltf.AccessorMat3 || t == gltf.AccessorMat4
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func shapeForType(t gltf.AccessorType) (accessorShape, bool) {
	for _, s := range accessorShapes {
		if s.typ == t {
			return s, true
		}
	}
	return accessorShape{}, false
}

func dtypeForComponent(ct gltf.ComponentType) (ndarray.DType, bool) {
	for dt, c := range componentTypes {
		if c == ct {
			return dt, true
		}
	}
	return ndarray.Invalid, false
}

// accessorType maps the array's dtype and trailing shape to accessor tags.
func accessorType(a *ndarray.Array) (gltf.ComponentType, accessorShape, string) {
	ct, ok := componentTypes[a.DType()]
	if !ok {
		return 0, accessorShape{}, "no accessor component type for dtype"
	}
	trailing := a.TrailingShape()
	if sameShape(trailing, []int{1}) {
		trailing = nil
	}
	for _, s := range accessorShapes {
		if !sameShape(s.trailing, trailing) {
			continue
		}
		size := a.DType().Size()
		if s.typ != gltf.AccessorScalar && size < 4 && (isMatrix(s.typ) || (size*s.components)%4 != 0) {
			return 0, accessorShape{}, "column padding for sub-4-byte components is not implemented"
		}
		return ct, s, ""
	}
	return 0, accessorShape{}, "no accessor type for trailing shape"
}

func packArray(a *ndarray.Array) ([]byte, error) {
	b := make([]byte, a.Len()*a.DType().Size())
	if err := binary.Write(b, 0, a.Data()); err != nil {
		return nil, errors.Wrapf(err, "pack %v", a)
	}
	return b, nil
}

func makeSlice(dt ndarray.DType, n int) interface{} {
	switch dt {
	case ndarray.Int8:
		return make([]int8, n)
	case ndarray.Uint8:
		return make([]uint8, n)
	case ndarray.Int16:
		return make([]int16, n)
	case ndarray.Uint16:
		return make([]uint16, n)
	case ndarray.Uint32:
		return make([]uint32, n)
	case ndarray.Float32:
		return make([]float32, n)
	}
	return nil
}

// readAccessor unpacks accessor index into an array of shape
// (count, trailing...). Interleaved views are compacted first.
func readAccessor(doc *gltf.Document, index uint32) (*ndarray.Array, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", index)
	}
	acr := doc.Accessors[index]
	if acr.Sparse != nil {
		return nil, errors.Errorf("accessor %d: sparse accessors are not supported", index)
	}
	dt, ok := dtypeForComponent(acr.ComponentType)
	if !ok {
		return nil, errors.Errorf("accessor %d: unknown component type %v", index, acr.ComponentType)
	}
	shape, ok := shapeForType(acr.Type)
	if !ok {
		return nil, errors.Errorf("accessor %d: unknown type %v", index, acr.Type)
	}
	if acr.BufferView == nil || acr.Count == 0 {
		if int64(acr.Count)*int64(dt.Size()*shape.components) > MaxZeroAccessorBytes {
			return nil, errors.Errorf("accessor %d: %d zero-filled elements exceed %d bytes", index, acr.Count, MaxZeroAccessorBytes)
		}
		count := int(acr.Count)
		return ndarray.New(makeSlice(dt, count*shape.components), append([]int{count}, shape.trailing...)...)
	}
	if int(*acr.BufferView) >= len(doc.BufferViews) {
		return nil, errors.Errorf("accessor %d: buffer view %d out of range", index, *acr.BufferView)
	}
	view := doc.BufferViews[*acr.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, errors.Errorf("buffer view %d: buffer %d out of range", *acr.BufferView, view.Buffer)
	}
	buf := doc.Buffers[view.Buffer].Data

	// Bounds are checked in int64 before anything is allocated from the
	// untrusted count.
	elemSize := int64(dt.Size() * shape.components)
	stride := int64(view.ByteStride)
	if stride == 0 {
		stride = elemSize
	}
	viewEnd := int64(view.ByteOffset) + int64(view.ByteLength)
	if viewEnd > int64(len(buf)) {
		return nil, errors.Errorf("buffer view %d: %d bytes at %d overflow buffer of %d bytes",
			*acr.BufferView, view.ByteLength, view.ByteOffset, len(buf))
	}
	start := int64(view.ByteOffset) + int64(acr.ByteOffset)
	if start+(int64(acr.Count)-1)*stride+elemSize > viewEnd {
		return nil, errors.Errorf("accessor %d: %d elements overflow buffer view of %d bytes", index, acr.Count, view.ByteLength)
	}

	count := int(acr.Count)
	data := makeSlice(dt, count*shape.components)
	dims := append([]int{count}, shape.trailing...)

	var src []byte
	if stride == elemSize {
		src = buf[start : start+int64(count)*elemSize]
	} else {
		src = make([]byte, int64(count)*elemSize)
		for i := int64(0); i < int64(count); i++ {
			off := start + i*stride
			copy(src[i*elemSize:], buf[off:off+elemSize])
		}
	}
	if err := binary.Read(src, 0, data); err != nil {
		return nil, errors.Wrapf(err, "accessor %d", index)
	}
	a, err := ndarray.New(data, dims...)
	if err != nil {
		return nil, err
	}
	if acr.Normalized {
		return normalize(a), nil
	}
	return a, nil
}

// normalize maps normalized integer components to floats in [0, 1] or
// [-1, 1]. Float arrays are returned as is.
func normalize(a *ndarray.Array) *ndarray.Array {
	var scale float64
	signed := false
	switch a.DType() {
	case ndarray.Uint8:
		scale = 255
	case ndarray.Uint16:
		scale = 65535
	case ndarray.Int8:
		scale, signed = 127, true
	case ndarray.Int16:
		scale, signed = 32767, true
	default:
		return a
	}
	out := make([]float32, a.Len())
	for i := range out {
		v := a.At(i) / scale
		if signed && v < -1 {
			v = -1
		}
		out[i] = float32(v)
	}
	return ndarray.Must(out, a.Shape()...)
}
