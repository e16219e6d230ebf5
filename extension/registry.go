// Package extension keeps the table of extensions the container codec
// knows how to write and read. Each extension identifier maps to a
// Descriptor holding its scope and its serialize/deserialize functions.
//
// The table is filled once at process start by explicit Register calls
// and is read-only afterwards. Reads are safe from many goroutines once
// registration is done; concurrent registration is not arbitrated.
package extension

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mogaika/gltfscene/scene"
)

type Scope int

const (
	// ScopeDocument extensions are a single object stored at the top level.
	ScopeDocument Scope = iota
	// ScopeNode extensions are a list of objects at the top level, pointed
	// to from node records.
	ScopeNode
	// ScopeComponent extensions are a list of objects at the top level,
	// pointed to from other extension objects.
	ScopeComponent
)

func (s Scope) String() string {
	switch s {
	case ScopeDocument:
		return "document"
	case ScopeNode:
		return "node"
	case ScopeComponent:
		return "component"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// LightsPunctual is the only extension the codec handles natively.
const LightsPunctual = "KHR_lights_punctual"

// DefaultListKey names the object list of node and component scoped
// extensions at the document level.
const DefaultListKey = "objects"

// EncodeContext is handed to serializers.
type EncodeContext interface {
	// Intern stores a component-scoped object and returns its index in
	// that extension's document-level list.
	Intern(c scene.Component) (int, error)
}

// DecodeContext is handed to deserializers.
type DecodeContext interface {
	// Object decodes entry index of a component-scoped extension list.
	Object(extension string, index int) (scene.Component, error)
}

type EncodeFunc func(ctx EncodeContext, c scene.Component) (interface{}, error)
type DecodeFunc func(ctx DecodeContext, raw json.RawMessage) (scene.Component, error)

type Descriptor struct {
	Name  string
	Scope Scope

	// ListKey overrides DefaultListKey.
	ListKey string

	// Required extensions are listed in extensionsRequired when used.
	Required bool

	// Builtin descriptors have no functions; the codec serializes them.
	Builtin bool

	Encode EncodeFunc
	Decode DecodeFunc
}

func (d *Descriptor) Key() string {
	if d.ListKey != "" {
		return d.ListKey
	}
	return DefaultListKey
}

type Registry struct {
	descriptors map[string]*Descriptor
	order       []string
}

// Default is the process-wide registry used by the tools.
var Default = NewRegistry()

// NewRegistry returns a registry holding only the built-in extensions.
func NewRegistry() *Registry {
	r := &Registry{descriptors: make(map[string]*Descriptor)}
	r.MustRegister(Descriptor{Name: LightsPunctual, Scope: ScopeNode, ListKey: "lights", Builtin: true})
	return r
}

// Register adds d. Registering an identifier twice is a SchemaError.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return &SchemaError{Name: d.Name, Reason: "empty identifier"}
	}
	if _, ok := r.descriptors[d.Name]; ok {
		return &SchemaError{Name: d.Name, Reason: "already registered"}
	}
	if d.Scope < ScopeDocument || d.Scope > ScopeComponent {
		return &SchemaError{Name: d.Name, Reason: fmt.Sprintf("invalid %v", d.Scope)}
	}
	if !d.Builtin && (d.Encode == nil || d.Decode == nil) {
		return &SchemaError{Name: d.Name, Reason: "missing encode or decode function"}
	}
	r.descriptors[d.Name] = &d
	r.order = append(r.order, d.Name)
	return nil
}

// MustRegister panics on registration errors; they are programmer errors.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// LookupComponent finds the descriptor serializing c.
func (r *Registry) LookupComponent(c scene.Component) (*Descriptor, error) {
	d, ok := r.descriptors[c.ExtensionName()]
	if !ok {
		return nil, &SchemaError{Name: c.ExtensionName(), Reason: fmt.Sprintf("no descriptor for component %T", c)}
	}
	return d, nil
}

func (r *Registry) Supports(name string) bool {
	_, ok := r.descriptors[name]
	return ok
}

// Names lists identifiers in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Schema describes the document-level extension slots every encode gets:
// one per registered identifier.
func (r *Registry) Schema() map[string]Scope {
	out := make(map[string]Scope, len(r.descriptors))
	for name, d := range r.descriptors {
		out[name] = d.Scope
	}
	return out
}

// SortedNames lists identifiers alphabetically.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
