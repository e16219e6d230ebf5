// Package components holds the simulation component kinds stored as
// container extensions. Register must be called once at process start
// for every registry that should know them.
package components

import (
	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/scene"
)

const (
	ConfigExtension         = "SIM_config"
	RigidBodyExtension      = "SIM_rigid_bodies"
	ColliderExtension       = "SIM_colliders"
	PhysicMaterialExtension = "SIM_physic_materials"
	StateSensorExtension    = "SIM_state_sensors"
	RewardFunctionExtension = "SIM_reward_functions"
)

// Register adds every component kind of this package to reg.
func Register(reg *extension.Registry) error {
	for _, d := range []extension.Descriptor{
		extension.JSON(ConfigExtension, extension.ScopeDocument, func() scene.Component { return new(Config) }),
		extension.JSON(RigidBodyExtension, extension.ScopeNode, func() scene.Component { return new(RigidBody) }),
		extension.JSON(PhysicMaterialExtension, extension.ScopeComponent, func() scene.Component { return new(PhysicMaterial) }),
		colliderDescriptor(),
		extension.JSON(StateSensorExtension, extension.ScopeNode, func() scene.Component { return new(StateSensor) }),
		extension.JSON(RewardFunctionExtension, extension.ScopeNode, func() scene.Component { return new(RewardFunction) }),
	} {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister panics when Register fails.
func MustRegister(reg *extension.Registry) {
	if err := Register(reg); err != nil {
		panic(err)
	}
}
