package components

import (
	"github.com/mogaika/gltfscene/scene"
)

// StateSensor observes properties of a target node, optionally relative
// to a reference node.
type StateSensor struct {
	Name            string    `json:"name,omitempty"`
	TargetEntity    scene.Ref `json:"target_entity"`
	ReferenceEntity scene.Ref `json:"reference_entity"`
	Properties      []string  `json:"properties,omitempty"`
}

func (*StateSensor) ExtensionName() string { return StateSensorExtension }

func (s *StateSensor) ComponentName() string { return s.Name }

func (s *StateSensor) NodeRefs() []*scene.Ref {
	return []*scene.Ref{&s.TargetEntity, &s.ReferenceEntity}
}

type RewardType string

const (
	DenseReward   RewardType = "dense"
	SparseReward  RewardType = "sparse"
	TimeoutReward RewardType = "timeout"
)

// RewardFunction scores the relation between two nodes.
type RewardFunction struct {
	Name           string     `json:"name,omitempty"`
	Type           RewardType `json:"type"`
	EntityA        scene.Ref  `json:"entity_a"`
	EntityB        scene.Ref  `json:"entity_b"`
	DistanceMetric string     `json:"distance_metric,omitempty"`
	Scalar         float32    `json:"scalar"`
	Threshold      float32    `json:"threshold"`
	IsTerminal     bool       `json:"is_terminal,omitempty"`
	IsCollectable  bool       `json:"is_collectable,omitempty"`
}

func (*RewardFunction) ExtensionName() string { return RewardFunctionExtension }

func (r *RewardFunction) ComponentName() string { return r.Name }

func (r *RewardFunction) NodeRefs() []*scene.Ref {
	return []*scene.Ref{&r.EntityA, &r.EntityB}
}
