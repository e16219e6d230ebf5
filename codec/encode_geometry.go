package codec

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltfscene/cache"
	"github.com/mogaika/gltfscene/ndarray"
	"github.com/mogaika/gltfscene/scene"
)

func (p *encodePass) emitMesh(n *scene.Node) (uint32, error) {
	g := n.Geometry
	if g.NumVerts() == 0 && g.NumLines() == 0 && g.NumFaces() == 0 {
		return 0, &EmptyGeometryError{Node: n.Name()}
	}
	points := g.Points()
	if points == nil || points.Rows() == 0 {
		return 0, errors.Errorf("node %q: geometry has %d lines and %d faces but no points", n.Name(), g.NumLines(), g.NumFaces())
	}

	attributes := make(map[string]uint32)
	var err error
	if attributes["POSITION"], err = p.emitAccessor(n, "POSITION", points, gltf.TargetArrayBuffer); err != nil {
		return 0, err
	}
	if normals := g.ActiveNormals(); normals != nil {
		if attributes["NORMAL"], err = p.emitAccessor(n, "NORMAL", normals, gltf.TargetArrayBuffer); err != nil {
			return 0, err
		}
	}
	if tcoords := g.ActiveTCoords(); tcoords != nil {
		if attributes["TEXCOORD_0"], err = p.emitAccessor(n, "TEXCOORD_0", tcoords, gltf.TargetArrayBuffer); err != nil {
			return 0, err
		}
	}

	var material *uint32
	if n.Material != nil {
		index, err := p.emitMaterial(n.Material)
		if err != nil {
			return 0, errors.Wrapf(err, "node %q material", n.Name())
		}
		material = gltf.Index(index)
	}

	var primitives []*gltf.Primitive
	addPrimitive := func(mode gltf.PrimitiveMode, indices []uint32) error {
		prim := &gltf.Primitive{Attributes: attributes, Material: material, Mode: mode}
		if indices != nil {
			index, err := p.emitAccessor(n, "indices", ndarray.Must(indices), gltf.TargetElementArrayBuffer)
			if err != nil {
				return err
			}
			prim.Indices = gltf.Index(index)
		}
		primitives = append(primitives, prim)
		return nil
	}

	verts := uint32(points.Rows())
	if tris := scene.Triangulate(g); len(tris) != 0 {
		indices := make([]uint32, 0, len(tris)*3)
		for _, t := range tris {
			indices = append(indices, t[0], t[1], t[2])
		}
		if err := checkIndices(n, indices, verts); err != nil {
			return 0, err
		}
		if err := addPrimitive(gltf.PrimitiveTriangles, indices); err != nil {
			return 0, err
		}
	}
	if segs := scene.Segments(g); len(segs) != 0 {
		indices := make([]uint32, 0, len(segs)*2)
		for _, s := range segs {
			indices = append(indices, s[0], s[1])
		}
		if err := checkIndices(n, indices, verts); err != nil {
			return 0, err
		}
		if err := addPrimitive(gltf.PrimitiveLines, indices); err != nil {
			return 0, err
		}
	}
	if len(primitives) == 0 {
		if err := addPrimitive(gltf.PrimitivePoints, nil); err != nil {
			return 0, err
		}
	}

	fields := make([]interface{}, 0, len(primitives))
	for _, prim := range primitives {
		fields = append(fields, primitiveKey(prim))
	}
	index, _, err := p.cache.StoreIfAbsent(cache.Record{Of: cache.KindMesh, Fields: fields}, func() (int, error) {
		p.doc.Meshes = append(p.doc.Meshes, &gltf.Mesh{Name: n.Name(), Primitives: primitives})
		return len(p.doc.Meshes) - 1, nil
	})
	return uint32(index), err
}

func checkIndices(n *scene.Node, indices []uint32, verts uint32) error {
	for _, i := range indices {
		if i >= verts {
			return errors.Errorf("node %q: index %d out of range of %d points", n.Name(), i, verts)
		}
	}
	return nil
}

// primitiveKey is the field tuple identifying a primitive once its
// accessors are interned.
func primitiveKey(prim *gltf.Primitive) []interface{} {
	names := make([]string, 0, len(prim.Attributes))
	for name := range prim.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make([]interface{}, 0, len(names)*2)
	for _, name := range names {
		attrs = append(attrs, name, prim.Attributes[name])
	}
	return []interface{}{attrs, prim.Indices, prim.Material, prim.Mode}
}

func (p *encodePass) emitAccessor(n *scene.Node, attribute string, a *ndarray.Array, target gltf.Target) (uint32, error) {
	ct, shape, reason := accessorType(a)
	if reason == "" && ct == gltf.ComponentUint && target != gltf.TargetElementArrayBuffer {
		reason = "unsigned int components are only allowed for indices"
	}
	if reason != "" {
		return 0, &UnsupportedEncodingError{
			Node:      n.Name(),
			Attribute: attribute,
			DType:     a.DType(),
			Shape:     a.Shape(),
			Reason:    reason,
		}
	}
	blob, err := packArray(a)
	if err != nil {
		return 0, errors.Wrapf(err, "node %q %s", n.Name(), attribute)
	}
	view, err := p.buffer.StoreIfAbsent(blob, target)
	if err != nil {
		return 0, errors.Wrapf(err, "node %q %s", n.Name(), attribute)
	}

	min64, max64 := a.MinMax()
	min := make([]float32, len(min64))
	max := make([]float32, len(max64))
	for i := range min64 {
		min[i] = float32(min64[i])
		max[i] = float32(max64[i])
	}

	count := uint32(a.Rows())
	index, _, err := p.cache.StoreIfAbsent(cache.Record{Of: cache.KindAccessor, Fields: []interface{}{
		view, ct, shape.typ, count,
	}}, func() (int, error) {
		p.doc.Accessors = append(p.doc.Accessors, &gltf.Accessor{
			BufferView:    gltf.Index(uint32(view)),
			ComponentType: ct,
			Type:          shape.typ,
			Count:         count,
			Min:           min,
			Max:           max,
		})
		return len(p.doc.Accessors) - 1, nil
	})
	return uint32(index), err
}

func (p *encodePass) emitMaterial(m *scene.Material) (uint32, error) {
	index, _, err := p.cache.StoreIfAbsent(cache.Record{Of: cache.KindMaterial, Fields: []interface{}{
		m.Name, m.BaseColor, m.Metallic, m.Roughness, m.DoubleSided,
	}}, func() (int, error) {
		color := [4]float32(m.BaseColor)
		p.doc.Materials = append(p.doc.Materials, &gltf.Material{
			Name:        m.Name,
			DoubleSided: m.DoubleSided,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &color,
				MetallicFactor:  float32Ptr(m.Metallic),
				RoughnessFactor: float32Ptr(m.Roughness),
			},
		})
		return len(p.doc.Materials) - 1, nil
	})
	return uint32(index), err
}
