package codec

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltfscene/cache"
	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/scene"
)

// encodePass holds the state of one Encode call. Its cache is never
// reused across calls.
type encodePass struct {
	opts   Options
	reg    *extension.Registry
	tree   *scene.Tree
	doc    *gltf.Document
	cache  *cache.Cache
	buffer *cache.BinaryBuffer

	objects map[string][]json.RawMessage
	lights  []json.RawMessage
	used    map[string]bool
}

// Encode converts tree into a container document. Any error aborts the
// whole encode; no partial document is returned.
func Encode(tree *scene.Tree, opts Options) (*gltf.Document, error) {
	c := cache.New()
	p := &encodePass{
		opts:    opts,
		reg:     opts.registry(),
		tree:    tree,
		doc:     &gltf.Document{Asset: gltf.Asset{Generator: opts.generator(), Version: "2.0"}},
		cache:   c,
		buffer:  cache.NewBinaryBuffer(c),
		objects: make(map[string][]json.RawMessage),
		used:    make(map[string]bool),
	}
	for name, scope := range p.reg.Schema() {
		if scope != extension.ScopeDocument {
			p.objects[name] = nil
		}
	}

	if err := p.nameReferences(); err != nil {
		return nil, err
	}
	root, err := p.emitNode(tree.Root())
	if err != nil {
		return nil, err
	}
	if err := p.emitGlobals(); err != nil {
		return nil, err
	}
	p.finalize(root)
	return p.doc, nil
}

// nameReferences stores the target name in every cross-reference of the
// tree, since the container has no pointers.
func (p *encodePass) nameReferences() error {
	for _, c := range p.tree.Globals() {
		if err := p.nameRefs(p.tree.Root().Name(), c); err != nil {
			return err
		}
	}
	return p.tree.Walk(func(n *scene.Node) error {
		for _, c := range n.Components() {
			if err := p.nameRefs(n.Name(), c); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *encodePass) nameRefs(owner string, c scene.Component) error {
	r, ok := c.(scene.Referrer)
	if !ok {
		return nil
	}
	for _, ref := range r.NodeRefs() {
		if !ref.IsSet() {
			continue
		}
		var target *scene.Node
		if ref.Resolved() {
			target = p.tree.Node(ref.ID)
		} else if n, ok := p.tree.FindByName(ref.Name); ok {
			target = n
		}
		if target == nil || !p.attached(target.ID()) {
			desc := ref.Name
			if desc == "" {
				desc = fmt.Sprintf("#%d", ref.ID)
			}
			return &DanglingReferenceError{Node: owner, Component: c.ExtensionName(), Target: desc}
		}
		ref.Resolve(target.ID())
		ref.Name = target.Name()
	}
	return nil
}

// attached reports whether id is reachable from the root.
func (p *encodePass) attached(id scene.NodeID) bool {
	return p.tree.IsAncestor(p.tree.Root().ID(), id)
}

func (p *encodePass) emitNode(n *scene.Node) (uint32, error) {
	index := uint32(len(p.doc.Nodes))
	rec := &gltf.Node{Name: n.Name()}
	p.doc.Nodes = append(p.doc.Nodes, rec)

	emitTransform(&n.Transform, rec)

	if n.Camera != nil {
		camera, err := p.emitCamera(n.Camera)
		if err != nil {
			return 0, errors.Wrapf(err, "node %q camera", n.Name())
		}
		rec.Camera = gltf.Index(camera)
	}
	if n.Light != nil {
		light, err := p.emitLight(n.Light)
		if err != nil {
			return 0, errors.Wrapf(err, "node %q light", n.Name())
		}
		setExtension(rec, extension.LightsPunctual, lightPointer{Light: light})
	}
	if n.Geometry != nil {
		mesh, err := p.emitMesh(n)
		if err != nil {
			return 0, err
		}
		rec.Mesh = gltf.Index(mesh)
	}
	if err := p.emitComponents(n, rec); err != nil {
		return 0, err
	}
	if len(n.Extras) != 0 {
		rec.Extras = n.Extras
	}

	for _, id := range n.Children() {
		child, err := p.emitNode(p.tree.Node(id))
		if err != nil {
			return 0, err
		}
		rec.Children = append(rec.Children, child)
	}
	return index, nil
}

func emitTransform(t *scene.Transform, rec *gltf.Node) {
	rec.Matrix = identityMatrix
	rec.Rotation = identityRotation
	rec.Scale = unitScale
	if t.IsMatrix() {
		rec.Matrix = [16]float32(t.Matrix())
		return
	}
	q := t.Rotation()
	rec.Translation = [3]float32(t.Translation())
	rec.Rotation = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	rec.Scale = [3]float32(t.Scale())
}

func setExtension(rec *gltf.Node, name string, v interface{}) {
	if rec.Extensions == nil {
		rec.Extensions = make(gltf.Extensions)
	}
	rec.Extensions[name] = v
}

func (p *encodePass) emitCamera(c *scene.Camera) (uint32, error) {
	index, _, err := p.cache.StoreIfAbsent(cache.Record{Of: cache.KindCamera, Fields: []interface{}{
		c.Name, c.Projection, c.Yfov, c.AspectRatio, c.Xmag, c.Ymag, c.Znear, c.Zfar,
	}}, func() (int, error) {
		cam := &gltf.Camera{Name: c.Name}
		switch c.Projection {
		case scene.Perspective:
			cam.Perspective = &gltf.Perspective{Yfov: c.Yfov, Znear: c.Znear}
			if c.AspectRatio != 0 {
				cam.Perspective.AspectRatio = float32Ptr(c.AspectRatio)
			}
			if c.Zfar != 0 {
				cam.Perspective.Zfar = float32Ptr(c.Zfar)
			}
		case scene.Orthographic:
			cam.Orthographic = &gltf.Orthographic{Xmag: c.Xmag, Ymag: c.Ymag, Znear: c.Znear, Zfar: c.Zfar}
		default:
			return 0, errors.Errorf("unknown projection %v", c.Projection)
		}
		p.doc.Cameras = append(p.doc.Cameras, cam)
		return len(p.doc.Cameras) - 1, nil
	})
	return uint32(index), err
}

func (p *encodePass) emitLight(l *scene.Light) (int, error) {
	rec := lightJSON{
		Name:      l.Name,
		Type:      string(l.Type),
		Color:     &[3]float32{l.Color[0], l.Color[1], l.Color[2]},
		Intensity: float32Ptr(l.Intensity),
	}
	switch l.Type {
	case scene.DirectionalLight, scene.PointLight:
	case scene.SpotLight:
		rec.Spot = &spotJSON{InnerConeAngle: l.InnerConeAngle, OuterConeAngle: l.OuterConeAngle}
	default:
		return 0, errors.Errorf("unknown light type %q", l.Type)
	}
	if l.Range > 0 {
		rec.Range = float32Ptr(l.Range)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	index, _, err := p.cache.StoreIfAbsent(cache.Object{Extension: extension.LightsPunctual, Data: raw}, func() (int, error) {
		p.lights = append(p.lights, raw)
		return len(p.lights) - 1, nil
	})
	p.used[extension.LightsPunctual] = true
	return index, err
}

func (p *encodePass) emitComponents(n *scene.Node, rec *gltf.Node) error {
	for _, c := range n.Components() {
		desc, err := p.reg.LookupComponent(c)
		if err != nil {
			return errors.Wrapf(err, "node %q", n.Name())
		}
		if desc.Scope != extension.ScopeNode || desc.Builtin {
			return errors.Wrapf(&extension.SchemaError{
				Name:   desc.Name,
				Reason: fmt.Sprintf("%v scoped extension attached as node component", desc.Scope),
			}, "node %q", n.Name())
		}
		index, err := p.intern(desc, c, n.Name())
		if err != nil {
			return errors.Wrapf(err, "node %q component %s", n.Name(), desc.Name)
		}
		name := n.Name()
		if named, ok := c.(scene.Named); ok && named.ComponentName() != "" {
			name = named.ComponentName()
		}
		setExtension(rec, desc.Name, objectPointer{ObjectID: index, Name: name})
	}
	return nil
}

// intern serializes c and stores it once in its extension's object list.
func (p *encodePass) intern(desc *extension.Descriptor, c scene.Component, owner string) (int, error) {
	if err := p.nameRefs(owner, c); err != nil {
		return 0, err
	}
	payload, err := desc.Encode(p, c)
	if err != nil {
		return 0, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrapf(err, "marshal %s", desc.Name)
	}
	index, _, err := p.cache.StoreIfAbsent(cache.Object{Extension: desc.Name, Data: raw}, func() (int, error) {
		p.objects[desc.Name] = append(p.objects[desc.Name], raw)
		return len(p.objects[desc.Name]) - 1, nil
	})
	if err != nil {
		return 0, err
	}
	p.used[desc.Name] = true
	return index, nil
}

// Intern implements extension.EncodeContext for component-scoped objects.
func (p *encodePass) Intern(c scene.Component) (int, error) {
	desc, err := p.reg.LookupComponent(c)
	if err != nil {
		return 0, err
	}
	if desc.Scope != extension.ScopeComponent {
		return 0, &extension.SchemaError{Name: desc.Name, Reason: fmt.Sprintf("%v scoped extension interned as component object", desc.Scope)}
	}
	return p.intern(desc, c, p.tree.Root().Name())
}

func (p *encodePass) emitGlobals() error {
	for _, c := range p.tree.Globals() {
		desc, err := p.reg.LookupComponent(c)
		if err != nil {
			return err
		}
		if desc.Scope != extension.ScopeDocument {
			return &extension.SchemaError{Name: desc.Name, Reason: fmt.Sprintf("%v scoped extension stored as document singleton", desc.Scope)}
		}
		payload, err := desc.Encode(p, c)
		if err != nil {
			return errors.Wrapf(err, "document extension %s", desc.Name)
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "marshal %s", desc.Name)
		}
		p.docExtension(desc.Name, json.RawMessage(raw))
		p.used[desc.Name] = true
	}
	return nil
}

func (p *encodePass) docExtension(name string, v interface{}) {
	if p.doc.Extensions == nil {
		p.doc.Extensions = make(gltf.Extensions)
	}
	p.doc.Extensions[name] = v
}

func (p *encodePass) finalize(root uint32) {
	p.doc.Scene = gltf.Index(0)
	p.doc.Scenes = []*gltf.Scene{{Name: p.tree.Root().Name(), Nodes: []uint32{root}}}

	for name, objects := range p.objects {
		if len(objects) == 0 {
			continue
		}
		desc, _ := p.reg.Lookup(name)
		p.docExtension(name, map[string][]json.RawMessage{desc.Key(): objects})
	}
	if len(p.lights) != 0 {
		p.docExtension(extension.LightsPunctual, map[string][]json.RawMessage{"lights": p.lights})
	}

	for name := range p.used {
		p.doc.ExtensionsUsed = append(p.doc.ExtensionsUsed, name)
		if desc, ok := p.reg.Lookup(name); ok && (desc.Required || p.opts.RequireExtensions) {
			p.doc.ExtensionsRequired = append(p.doc.ExtensionsRequired, name)
		}
	}
	sort.Strings(p.doc.ExtensionsUsed)
	sort.Strings(p.doc.ExtensionsRequired)

	if p.buffer.Len() == 0 {
		return
	}
	for _, v := range p.buffer.Views() {
		p.doc.BufferViews = append(p.doc.BufferViews, &gltf.BufferView{
			Buffer:     0,
			ByteOffset: v.ByteOffset,
			ByteLength: v.ByteLength,
			Target:     v.Target,
		})
	}
	p.doc.Buffers = []*gltf.Buffer{{
		ByteLength: uint32(p.buffer.Len()),
		Data:       p.buffer.Bytes(),
	}}
}
