package components

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/scene"
)

type RigidBody struct {
	Mass         float32    `json:"mass"`
	CenterOfMass [3]float32 `json:"center_of_mass"`
	Drag         float32    `json:"drag"`
	AngularDrag  float32    `json:"angular_drag"`
	Constraints  []string   `json:"constraints,omitempty"`
	UseGravity   bool       `json:"use_gravity"`
	Kinematic    bool       `json:"kinematic"`
}

func NewRigidBody(mass float32) *RigidBody {
	return &RigidBody{Mass: mass, AngularDrag: 0.05, UseGravity: true}
}

func (*RigidBody) ExtensionName() string { return RigidBodyExtension }

// PhysicMaterial is shared between colliders and stored in its own list.
type PhysicMaterial struct {
	Name            string  `json:"name,omitempty"`
	DynamicFriction float32 `json:"dynamic_friction"`
	StaticFriction  float32 `json:"static_friction"`
	Bounciness      float32 `json:"bounciness"`
}

func (*PhysicMaterial) ExtensionName() string { return PhysicMaterialExtension }

type ColliderType string

const (
	BoxCollider     ColliderType = "box"
	SphereCollider  ColliderType = "sphere"
	CapsuleCollider ColliderType = "capsule"
	MeshCollider    ColliderType = "mesh"
)

type Collider struct {
	Type           ColliderType
	Bound          [3]float32
	Offset         [3]float32
	Convex         bool
	Intangible     bool
	PhysicMaterial *PhysicMaterial
}

func (*Collider) ExtensionName() string { return ColliderExtension }

type colliderJSON struct {
	Type           ColliderType `json:"type"`
	Bound          [3]float32   `json:"bound"`
	Offset         [3]float32   `json:"offset"`
	Convex         bool         `json:"convex,omitempty"`
	Intangible     bool         `json:"intangible,omitempty"`
	PhysicMaterial *int         `json:"physic_material,omitempty"`
}

// colliderDescriptor stores the physic material as an index into the
// component-scoped material list.
func colliderDescriptor() extension.Descriptor {
	return extension.Descriptor{
		Name:  ColliderExtension,
		Scope: extension.ScopeNode,
		Encode: func(ctx extension.EncodeContext, c scene.Component) (interface{}, error) {
			col := c.(*Collider)
			out := colliderJSON{
				Type:       col.Type,
				Bound:      col.Bound,
				Offset:     col.Offset,
				Convex:     col.Convex,
				Intangible: col.Intangible,
			}
			if col.PhysicMaterial != nil {
				index, err := ctx.Intern(col.PhysicMaterial)
				if err != nil {
					return nil, errors.Wrapf(err, "physic material")
				}
				out.PhysicMaterial = &index
			}
			return out, nil
		},
		Decode: func(ctx extension.DecodeContext, raw json.RawMessage) (scene.Component, error) {
			var in colliderJSON
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, errors.Wrapf(err, "decode %s", ColliderExtension)
			}
			col := &Collider{
				Type:       in.Type,
				Bound:      in.Bound,
				Offset:     in.Offset,
				Convex:     in.Convex,
				Intangible: in.Intangible,
			}
			if in.PhysicMaterial != nil {
				m, err := ctx.Object(PhysicMaterialExtension, *in.PhysicMaterial)
				if err != nil {
					return nil, err
				}
				col.PhysicMaterial = m.(*PhysicMaterial)
			}
			return col, nil
		},
	}
}
