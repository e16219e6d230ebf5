// Package codec converts scene trees to glTF 2.0 containers and back.
//
// Encoding walks the tree in pre-order, turns node cross-references into
// names, emits node, camera, light, mesh and extension records and packs
// geometry into 4-byte aligned accessors, deduplicating every payload by
// content. Decoding validates required extensions, rebuilds geometry,
// rebuilds the tree from index-linked node records and resolves names
// back to node references.
//
// Both directions are synchronous and keep no state between calls.
package codec

import (
	"github.com/mogaika/gltfscene/extension"
)

const DefaultGenerator = "gltfscene"

type Options struct {
	// Registry defaults to extension.Default.
	Registry *extension.Registry

	// Generator is written to asset.generator.
	Generator string

	// RequireExtensions lists every used extension as required.
	RequireExtensions bool

	// RootName names the synthetic root created when a container has
	// several root nodes.
	RootName string
}

func (o Options) registry() *extension.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return extension.Default
}

func (o Options) generator() string {
	if o.Generator != "" {
		return o.Generator
	}
	return DefaultGenerator
}

func (o Options) rootName() string {
	if o.RootName != "" {
		return o.RootName
	}
	return "Scene"
}

var (
	identityMatrix   = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	identityRotation = [4]float32{0, 0, 0, 1}
	unitScale        = [3]float32{1, 1, 1}
)

// objectPointer is the node-level record of node-scoped extensions.
type objectPointer struct {
	ObjectID int    `json:"object_id"`
	Name     string `json:"name,omitempty"`
}

type lightPointer struct {
	Light int `json:"light"`
}

type spotJSON struct {
	InnerConeAngle float32 `json:"innerConeAngle"`
	OuterConeAngle float32 `json:"outerConeAngle"`
}

type lightJSON struct {
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type"`
	Color     *[3]float32 `json:"color,omitempty"`
	Intensity *float32    `json:"intensity,omitempty"`
	Range     *float32    `json:"range,omitempty"`
	Spot      *spotJSON   `json:"spot,omitempty"`
}

func float32Ptr(v float32) *float32 {
	return &v
}
