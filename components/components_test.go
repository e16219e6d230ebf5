package components

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/gltfscene/codec"
	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/scene"
)

func registry(t *testing.T) *extension.Registry {
	reg := extension.NewRegistry()
	require.NoError(t, Register(reg))
	return reg
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := registry(t)
	err := Register(reg)
	var schema *extension.SchemaError
	require.ErrorAs(t, err, &schema)
	assert.Equal(t, ConfigExtension, schema.Name)

	scopes := reg.Schema()
	assert.Equal(t, extension.ScopeDocument, scopes[ConfigExtension])
	assert.Equal(t, extension.ScopeComponent, scopes[PhysicMaterialExtension])
	assert.Equal(t, extension.ScopeNode, scopes[ColliderExtension])
}

func TestSimulationRoundTrip(t *testing.T) {
	opts := codec.Options{Registry: registry(t)}

	tree, err := scene.NewTree("world")
	require.NoError(t, err)
	agent, err := tree.Add(tree.Root().ID(), "agent")
	require.NoError(t, err)
	goal, err := tree.Add(tree.Root().ID(), "goal")
	require.NoError(t, err)
	wall, err := tree.Add(tree.Root().ID(), "wall")
	require.NoError(t, err)

	ice := &PhysicMaterial{Name: "ice", DynamicFriction: 0.05, StaticFriction: 0.1}
	require.NoError(t, agent.AddComponent(NewRigidBody(2)))
	require.NoError(t, agent.AddComponent(&Collider{Type: SphereCollider, Bound: [3]float32{0.5, 0.5, 0.5}, PhysicMaterial: ice}))
	require.NoError(t, wall.AddComponent(&Collider{Type: BoxCollider, Bound: [3]float32{4, 2, 0.2}, PhysicMaterial: ice}))
	require.NoError(t, agent.AddComponent(&StateSensor{
		Name:         "sensor",
		TargetEntity: scene.RefTo(goal),
		Properties:   []string{"position"},
	}))
	require.NoError(t, goal.AddComponent(&RewardFunction{
		Name:           "reach",
		Type:           DenseReward,
		EntityA:        scene.RefTo(agent),
		EntityB:        scene.RefTo(goal),
		DistanceMetric: "euclidean",
		Scalar:         1,
		Threshold:      0.3,
		IsTerminal:     true,
	}))
	tree.SetGlobal(NewConfig())

	doc, err := codec.Encode(tree, opts)
	require.NoError(t, err)

	raw, err := json.Marshal(doc.Extensions[PhysicMaterialExtension])
	require.NoError(t, err)
	assert.JSONEq(t, `{"objects":[{"name":"ice","dynamic_friction":0.05,"static_friction":0.1,"bounciness":0}]}`, string(raw))

	raw, err = json.Marshal(doc.Extensions[StateSensorExtension])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"target_entity":"goal"`)
	assert.Contains(t, string(raw), `"reference_entity":null`)

	raw, err = json.Marshal(doc.Extensions[ConfigExtension])
	require.NoError(t, err)
	assert.JSONEq(t, `{"time_step":0.02,"frame_rate":30,"gravity":[0,-9.81,0],"return_nodes":true,"return_frames":false}`, string(raw))

	glb, err := codec.EncodeBinary(tree, opts)
	require.NoError(t, err)
	var js bytes.Buffer
	require.NoError(t, codec.WriteJSON(&js, doc))

	for name, data := range map[string][]byte{"glb": glb, "json": js.Bytes()} {
		t.Run(name, func(t *testing.T) {
			out, err := codec.DecodeBytes(data, opts)
			require.NoError(t, err)
			checkSimulation(t, out)
		})
	}
}

func checkSimulation(t *testing.T, out *scene.Tree) {
	a, ok := out.FindByName("agent")
	require.True(t, ok)
	g, ok := out.FindByName("goal")
	require.True(t, ok)

	c, ok := a.Component(ColliderExtension)
	require.True(t, ok)
	col := c.(*Collider)
	assert.Equal(t, SphereCollider, col.Type)
	require.NotNil(t, col.PhysicMaterial)
	assert.Equal(t, "ice", col.PhysicMaterial.Name)

	c, ok = a.Component(RigidBodyExtension)
	require.True(t, ok)
	assert.Equal(t, float32(2), c.(*RigidBody).Mass)

	c, ok = a.Component(StateSensorExtension)
	require.True(t, ok)
	sensor := c.(*StateSensor)
	assert.Equal(t, g.ID(), sensor.TargetEntity.ID)
	assert.False(t, sensor.ReferenceEntity.IsSet())

	c, ok = g.Component(RewardFunctionExtension)
	require.True(t, ok)
	reward := c.(*RewardFunction)
	assert.Equal(t, a.ID(), reward.EntityA.ID)
	assert.Equal(t, g.ID(), reward.EntityB.ID)
	assert.True(t, reward.IsTerminal)

	cfg, ok := out.Global(ConfigExtension)
	require.True(t, ok)
	assert.Equal(t, NewConfig(), cfg)
}
