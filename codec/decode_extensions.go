package codec

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/scene"
)

// objectList returns the document-level object list of a node or
// component scoped extension.
func (p *decodePass) objectList(desc *extension.Descriptor) ([]json.RawMessage, error) {
	if list, ok := p.objects[desc.Name]; ok {
		return list, nil
	}
	v, ok := p.doc.Extensions[desc.Name]
	if !ok {
		return nil, errors.Errorf("document has no %s object list", desc.Name)
	}
	raw, err := rawJSON(v)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", desc.Name)
	}
	var lists map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &lists); err != nil {
		return nil, errors.Wrapf(err, "%s object list", desc.Name)
	}
	list := lists[desc.Key()]
	p.objects[desc.Name] = list
	return list, nil
}

// Object implements extension.DecodeContext. Every call decodes a fresh
// copy of the stored object.
func (p *decodePass) Object(name string, index int) (scene.Component, error) {
	desc, ok := p.reg.Lookup(name)
	if !ok || desc.Builtin {
		return nil, &extension.SchemaError{Name: name, Reason: "not registered"}
	}
	if desc.Scope == extension.ScopeDocument {
		return nil, &extension.SchemaError{Name: name, Reason: "document scoped extension has no object list"}
	}
	list, err := p.objectList(desc)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, errors.Errorf("%s object %d out of range of %d", name, index, len(list))
	}
	c, err := desc.Decode(p, list[index])
	if err != nil {
		return nil, errors.Wrapf(err, "%s object %d", name, index)
	}
	if c.ExtensionName() != name {
		return nil, errors.Errorf("%s decoded into %s component", name, c.ExtensionName())
	}
	return c, nil
}

func sortedExtensionNames(ext gltf.Extensions) []string {
	names := make([]string, 0, len(ext))
	for name := range ext {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *decodePass) decodeNodeExtensions(rec *gltf.Node, n *scene.Node) error {
	for _, name := range sortedExtensionNames(rec.Extensions) {
		raw, err := rawJSON(rec.Extensions[name])
		if err != nil {
			return errors.Wrapf(err, "node %q extension %s", n.Name(), name)
		}

		if name == extension.LightsPunctual {
			var ptr lightPointer
			if err := json.Unmarshal(raw, &ptr); err != nil {
				return errors.Wrapf(err, "node %q light", n.Name())
			}
			if ptr.Light < 0 || ptr.Light >= len(p.lights) {
				return errors.Errorf("node %q: light %d out of range", n.Name(), ptr.Light)
			}
			light := *p.lights[ptr.Light]
			n.Light = &light
			continue
		}

		desc, ok := p.reg.Lookup(name)
		if !ok {
			p.skip(name)
			continue
		}
		if desc.Scope != extension.ScopeNode {
			return errors.Wrapf(&extension.SchemaError{Name: name, Reason: desc.Scope.String() + " scoped extension found on node"}, "node %q", n.Name())
		}
		var ptr objectPointer
		if err := json.Unmarshal(raw, &ptr); err != nil {
			return errors.Wrapf(err, "node %q extension %s", n.Name(), name)
		}
		c, err := p.Object(name, ptr.ObjectID)
		if err != nil {
			return errors.Wrapf(err, "node %q", n.Name())
		}
		if err := n.AddComponent(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *decodePass) decodeGlobals() error {
	for _, name := range sortedExtensionNames(p.doc.Extensions) {
		desc, ok := p.reg.Lookup(name)
		if !ok {
			p.skip(name)
			continue
		}
		if desc.Scope != extension.ScopeDocument {
			continue
		}
		raw, err := rawJSON(p.doc.Extensions[name])
		if err != nil {
			return errors.Wrapf(err, "document extension %s", name)
		}
		c, err := desc.Decode(p, raw)
		if err != nil {
			return errors.Wrapf(err, "document extension %s", name)
		}
		p.tree.SetGlobal(c)
	}
	return nil
}
