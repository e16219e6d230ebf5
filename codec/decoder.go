package codec

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/scene"
)

type decodedMesh struct {
	geometry *scene.PolyData
	material *scene.Material
}

type decodePass struct {
	opts Options
	reg  *extension.Registry
	doc  *gltf.Document
	tree *scene.Tree

	meshes    []decodedMesh
	materials []*scene.Material
	cameras   []*scene.Camera
	lights    []*scene.Light

	objects map[string][]json.RawMessage
	visited map[uint32]bool
	skipped map[string]bool
}

// Decode rebuilds a tree from a parsed container. The stages run in a
// fixed order and each one needs the previous one to have succeeded.
func Decode(doc *gltf.Document, opts Options) (*scene.Tree, error) {
	p := &decodePass{
		opts:    opts,
		reg:     opts.registry(),
		doc:     doc,
		objects: make(map[string][]json.RawMessage),
		visited: make(map[uint32]bool),
		skipped: make(map[string]bool),
	}
	if err := p.validateExtensions(); err != nil {
		return nil, err
	}
	if err := p.buildGeometryTables(); err != nil {
		return nil, err
	}
	if err := p.buildTree(); err != nil {
		return nil, err
	}
	if err := p.resolveReferences(); err != nil {
		return nil, err
	}
	return p.tree, nil
}

func (p *decodePass) validateExtensions() error {
	var missing []string
	for _, name := range p.doc.ExtensionsRequired {
		if !p.reg.Supports(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) != 0 {
		sort.Strings(missing)
		return &RequiredExtensionUnsupportedError{Extensions: missing}
	}
	for _, name := range p.doc.ExtensionsUsed {
		if !p.reg.Supports(name) {
			p.skip(name)
		}
	}
	return nil
}

func (p *decodePass) skip(name string) {
	if !p.skipped[name] {
		p.skipped[name] = true
		log.Printf("[codec] skipping unsupported extension %q", name)
	}
}

func (p *decodePass) buildGeometryTables() error {
	for _, m := range p.doc.Materials {
		p.materials = append(p.materials, decodeMaterial(m))
	}
	for i, c := range p.doc.Cameras {
		cam, err := decodeCamera(c)
		if err != nil {
			return errors.Wrapf(err, "camera %d", i)
		}
		p.cameras = append(p.cameras, cam)
	}
	for i, m := range p.doc.Meshes {
		g, material, err := p.decodeMesh(m)
		if err != nil {
			return errors.Wrapf(err, "mesh %d %q", i, m.Name)
		}
		p.meshes = append(p.meshes, decodedMesh{geometry: g, material: material})
	}
	return p.decodeLights()
}

func decodeMaterial(m *gltf.Material) *scene.Material {
	out := scene.DefaultMaterial()
	out.Name = m.Name
	out.DoubleSided = m.DoubleSided
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			out.BaseColor = mgl32.Vec4(*pbr.BaseColorFactor)
		}
		if pbr.MetallicFactor != nil {
			out.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			out.Roughness = *pbr.RoughnessFactor
		}
	}
	return out
}

func decodeCamera(c *gltf.Camera) (*scene.Camera, error) {
	switch {
	case c.Perspective != nil:
		cam := scene.NewPerspectiveCamera(c.Perspective.Yfov, 0, c.Perspective.Znear, 0)
		if c.Perspective.AspectRatio != nil {
			cam.AspectRatio = *c.Perspective.AspectRatio
		}
		if c.Perspective.Zfar != nil {
			cam.Zfar = *c.Perspective.Zfar
		}
		cam.Name = c.Name
		return cam, nil
	case c.Orthographic != nil:
		o := c.Orthographic
		cam := scene.NewOrthographicCamera(o.Xmag, o.Ymag, o.Znear, o.Zfar)
		cam.Name = c.Name
		return cam, nil
	}
	return nil, errors.New("camera has neither perspective nor orthographic projection")
}

func (p *decodePass) decodeLights() error {
	v, ok := p.doc.Extensions[extension.LightsPunctual]
	if !ok {
		return nil
	}
	raw, err := rawJSON(v)
	if err != nil {
		return errors.Wrapf(err, "%s", extension.LightsPunctual)
	}
	var list struct {
		Lights []lightJSON `json:"lights"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return errors.Wrapf(err, "%s", extension.LightsPunctual)
	}
	for _, l := range list.Lights {
		light := scene.NewLight(scene.LightType(l.Type))
		light.Name = l.Name
		switch light.Type {
		case scene.DirectionalLight, scene.PointLight, scene.SpotLight:
		default:
			return errors.Errorf("%s: unknown light type %q", extension.LightsPunctual, l.Type)
		}
		if l.Color != nil {
			light.Color = mgl32.Vec3(*l.Color)
		}
		if l.Intensity != nil {
			light.Intensity = *l.Intensity
		}
		if l.Range != nil {
			light.Range = *l.Range
		}
		if l.Spot != nil {
			light.InnerConeAngle = l.Spot.InnerConeAngle
			light.OuterConeAngle = l.Spot.OuterConeAngle
		}
		p.lights = append(p.lights, light)
	}
	return nil
}

// rawJSON returns the JSON of an extension value, whichever form the
// container decoder left it in.
func rawJSON(v interface{}) (json.RawMessage, error) {
	switch t := v.(type) {
	case json.RawMessage:
		return t, nil
	case []byte:
		return json.RawMessage(t), nil
	}
	return json.Marshal(v)
}

func (p *decodePass) rootIndices() []uint32 {
	if len(p.doc.Scenes) != 0 {
		s := 0
		if p.doc.Scene != nil && int(*p.doc.Scene) < len(p.doc.Scenes) {
			s = int(*p.doc.Scene)
		}
		return p.doc.Scenes[s].Nodes
	}
	isChild := make(map[uint32]bool)
	for _, n := range p.doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []uint32
	for i := range p.doc.Nodes {
		if !isChild[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (p *decodePass) nodeName(index uint32) string {
	name := p.doc.Nodes[index].Name
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	if _, taken := p.tree.FindByName(name); !taken {
		return name
	}
	unique := fmt.Sprintf("%s_%d", name, index)
	for i := 1; ; i++ {
		if _, taken := p.tree.FindByName(unique); !taken {
			break
		}
		unique = fmt.Sprintf("%s_%d_%d", name, index, i)
	}
	log.Printf("[codec] duplicate node name %q renamed to %q", name, unique)
	return unique
}

func (p *decodePass) buildTree() error {
	roots := p.rootIndices()
	for _, r := range roots {
		if int(r) >= len(p.doc.Nodes) {
			return errors.Errorf("scene root %d out of range", r)
		}
	}

	if len(roots) == 1 {
		name := p.doc.Nodes[roots[0]].Name
		if name == "" {
			name = fmt.Sprintf("node_%d", roots[0])
		}
		tree, err := scene.NewTree(name)
		if err != nil {
			return err
		}
		p.tree = tree
		if err := p.fillNode(roots[0], tree.Root()); err != nil {
			return err
		}
	} else {
		tree, err := scene.NewTree(p.opts.rootName())
		if err != nil {
			return err
		}
		p.tree = tree
		for _, r := range roots {
			if err := p.buildNode(r, tree.Root().ID()); err != nil {
				return err
			}
		}
	}
	return p.decodeGlobals()
}

func (p *decodePass) buildNode(index uint32, parent scene.NodeID) error {
	if int(index) >= len(p.doc.Nodes) {
		return errors.Errorf("node %d out of range", index)
	}
	n, err := p.tree.Add(parent, p.nodeName(index))
	if err != nil {
		return errors.Wrapf(err, "node %d", index)
	}
	return p.fillNode(index, n)
}

// fillNode copies record index into n and builds its children.
func (p *decodePass) fillNode(index uint32, n *scene.Node) error {
	if p.visited[index] {
		return errors.Errorf("node %d is referenced more than once", index)
	}
	p.visited[index] = true
	rec := p.doc.Nodes[index]

	decodeTransform(rec, &n.Transform)

	if rec.Camera != nil {
		if int(*rec.Camera) >= len(p.cameras) {
			return errors.Errorf("node %q: camera %d out of range", n.Name(), *rec.Camera)
		}
		cam := *p.cameras[*rec.Camera]
		n.Camera = &cam
	}
	if rec.Mesh != nil {
		if int(*rec.Mesh) >= len(p.meshes) {
			return errors.Errorf("node %q: mesh %d out of range", n.Name(), *rec.Mesh)
		}
		m := p.meshes[*rec.Mesh]
		n.Geometry = m.geometry
		if m.material != nil {
			mat := *m.material
			n.Material = &mat
		}
	}
	if err := p.decodeNodeExtensions(rec, n); err != nil {
		return err
	}
	extras, err := decodeExtras(rec.Extras)
	if err != nil {
		return errors.Wrapf(err, "node %q extras", n.Name())
	}
	n.Extras = extras

	for _, c := range rec.Children {
		if err := p.buildNode(c, n.ID()); err != nil {
			return err
		}
	}
	return nil
}

func decodeExtras(v interface{}) (map[string]interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		if len(t) == 0 {
			return nil, nil
		}
		return t, nil
	}
	raw, err := rawJSON(v)
	if err != nil {
		return nil, err
	}
	var extras map[string]interface{}
	if err := json.Unmarshal(raw, &extras); err != nil {
		return nil, nil
	}
	if len(extras) == 0 {
		return nil, nil
	}
	return extras, nil
}

func decodeTransform(rec *gltf.Node, t *scene.Transform) {
	if rec.Matrix != identityMatrix && rec.Matrix != ([16]float32{}) {
		t.SetMatrix(mgl32.Mat4(rec.Matrix))
		return
	}
	rotation := rec.Rotation
	if rotation == ([4]float32{}) {
		rotation = identityRotation
	}
	scale := rec.Scale
	if scale == ([3]float32{}) {
		scale = unitScale
	}
	t.SetTRS(
		mgl32.Vec3(rec.Translation),
		mgl32.Quat{W: rotation[3], V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]}},
		mgl32.Vec3(scale))
}

func (p *decodePass) resolveReferences() error {
	resolve := func(owner string, c scene.Component) error {
		r, ok := c.(scene.Referrer)
		if !ok {
			return nil
		}
		for _, ref := range r.NodeRefs() {
			if !ref.IsSet() || ref.Resolved() {
				continue
			}
			target, ok := p.tree.FindByName(ref.Name)
			if !ok {
				return &DanglingReferenceError{Node: owner, Component: c.ExtensionName(), Target: ref.Name}
			}
			ref.Resolve(target.ID())
		}
		return nil
	}
	for _, c := range p.tree.Globals() {
		if err := resolve(p.tree.Root().Name(), c); err != nil {
			return err
		}
	}
	return p.tree.Walk(func(n *scene.Node) error {
		for _, c := range n.Components() {
			if err := resolve(n.Name(), c); err != nil {
				return err
			}
		}
		return nil
	})
}
