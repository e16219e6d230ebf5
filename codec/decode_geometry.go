package codec

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltfscene/ndarray"
	"github.com/mogaika/gltfscene/scene"
)

// meshBuilder merges the primitives of one mesh into a single PolyData.
// Primitives sharing a POSITION accessor share their points.
type meshBuilder struct {
	doc     *gltf.Document
	base    map[uint32]uint32
	points  []float32
	normals []float32
	tcoords []float32

	hasNormals bool
	hasTCoords bool

	lines [][]uint32
	faces [][]uint32
}

func (p *decodePass) decodeMesh(m *gltf.Mesh) (*scene.PolyData, *scene.Material, error) {
	b := &meshBuilder{doc: p.doc, base: make(map[uint32]uint32), hasNormals: true, hasTCoords: true}
	var material *scene.Material
	for i, prim := range m.Primitives {
		if err := b.addPrimitive(prim); err != nil {
			return nil, nil, errors.Wrapf(err, "primitive %d", i)
		}
		if material == nil && prim.Material != nil {
			if int(*prim.Material) >= len(p.materials) {
				return nil, nil, errors.Errorf("primitive %d: material %d out of range", i, *prim.Material)
			}
			material = p.materials[*prim.Material]
		}
	}
	return b.build(), material, nil
}

func (b *meshBuilder) addPrimitive(prim *gltf.Primitive) error {
	pos, ok := prim.Attributes["POSITION"]
	if !ok {
		return errors.New("no POSITION attribute")
	}
	base, seen := b.base[pos]
	if !seen {
		points, err := readAccessor(b.doc, pos)
		if err != nil {
			return errors.Wrapf(err, "POSITION")
		}
		if !sameShape(points.TrailingShape(), []int{3}) {
			return errors.Errorf("POSITION has shape %v", points.Shape())
		}
		base = uint32(len(b.points) / 3)
		b.base[pos] = base
		b.points = append(b.points, points.Float32s()...)

		if b.hasNormals {
			b.normals, b.hasNormals = b.appendAttribute(prim, "NORMAL", 3, points.Rows(), b.normals)
		}
		if b.hasTCoords {
			b.tcoords, b.hasTCoords = b.appendAttribute(prim, "TEXCOORD_0", 2, points.Rows(), b.tcoords)
		}
	}
	count := uint32(0)
	if acr := b.doc.Accessors[pos]; acr != nil {
		count = acr.Count
	}

	var indices []uint32
	if prim.Indices != nil {
		a, err := readAccessor(b.doc, *prim.Indices)
		if err != nil {
			return errors.Wrapf(err, "indices")
		}
		indices = a.Uint32s()
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i, idx := range indices {
		if idx >= count {
			return errors.Errorf("index %d out of range of %d points", idx, count)
		}
		indices[i] = idx + base
	}

	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			b.faces = append(b.faces, []uint32{indices[i], indices[i+1], indices[i+2]})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 2; i < len(indices); i++ {
			if i%2 == 0 {
				b.faces = append(b.faces, []uint32{indices[i-2], indices[i-1], indices[i]})
			} else {
				b.faces = append(b.faces, []uint32{indices[i-1], indices[i-2], indices[i]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 2; i < len(indices); i++ {
			b.faces = append(b.faces, []uint32{indices[0], indices[i-1], indices[i]})
		}
	case gltf.PrimitiveLines:
		for i := 0; i+1 < len(indices); i += 2 {
			b.lines = append(b.lines, []uint32{indices[i], indices[i+1]})
		}
	case gltf.PrimitiveLineStrip:
		if len(indices) > 1 {
			b.lines = append(b.lines, indices)
		}
	case gltf.PrimitiveLineLoop:
		if len(indices) > 1 {
			b.lines = append(b.lines, append(indices, indices[0]))
		}
	case gltf.PrimitivePoints:
	default:
		return errors.Errorf("unknown primitive mode %v", prim.Mode)
	}
	return nil
}

// appendAttribute appends a per-vertex attribute; a primitive missing it
// disables the attribute for the whole mesh.
func (b *meshBuilder) appendAttribute(prim *gltf.Primitive, name string, width, rows int, dst []float32) ([]float32, bool) {
	index, ok := prim.Attributes[name]
	if !ok {
		return nil, false
	}
	a, err := readAccessor(b.doc, index)
	if err != nil || a.Rows() != rows || !sameShape(a.TrailingShape(), []int{width}) {
		return nil, false
	}
	return append(dst, a.Float32s()...), true
}

func (b *meshBuilder) build() *scene.PolyData {
	g := scene.NewPolyData(ndarray.Must(b.points, len(b.points)/3, 3), b.faces)
	g.SetLines(b.lines)
	if b.hasNormals && len(b.normals) == len(b.points) {
		g.SetNormals(ndarray.Must(b.normals, len(b.normals)/3, 3))
	}
	if b.hasTCoords && len(b.tcoords) != 0 {
		g.SetTCoords(ndarray.Must(b.tcoords, len(b.tcoords)/2, 2))
	}
	return g
}
