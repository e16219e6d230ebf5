package scene

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformMatrixMode(t *testing.T) {
	tr := IdentityTransform()
	assert.False(t, tr.IsMatrix())
	assert.True(t, tr.Matrix().ApproxEqual(mgl32.Ident4()))

	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(math.Pi / 2)).Mul4(mgl32.Scale3D(2, 2, 2))
	tr.SetMatrix(m)
	assert.True(t, tr.IsMatrix())
	assert.True(t, tr.Matrix().ApproxEqualThreshold(m, 1e-5))
	assert.True(t, tr.Translation().ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, 1e-5))
	assert.True(t, tr.Scale().ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, 1e-5))

	tr.SetScale(mgl32.Vec3{1, 1, 1})
	assert.False(t, tr.IsMatrix(), "TRS setter switches back to decomposed form")
}

func TestDecomposeComposeRoundTrip(t *testing.T) {
	tr := IdentityTransform()
	tr.SetTRS(mgl32.Vec3{-4, 0.5, 7}, mgl32.QuatRotate(0.7, mgl32.Vec3{1, 1, 0}.Normalize()), mgl32.Vec3{1, 3, 0.5})

	pos, rot, scale := Decompose(tr.Matrix())
	assert.True(t, pos.ApproxEqualThreshold(tr.Translation(), 1e-5))
	assert.True(t, scale.ApproxEqualThreshold(tr.Scale(), 1e-5))
	assert.True(t, rot.OrientationEqualThreshold(tr.Rotation(), 1e-5))
}

func TestWorldMatrix(t *testing.T) {
	tree, a, b, _ := buildChain(t)
	a.Transform.SetTranslation(mgl32.Vec3{1, 0, 0})
	b.Transform.SetTranslation(mgl32.Vec3{0, 2, 0})

	world := tree.WorldMatrix(b.ID())
	assert.True(t, world.Col(3).Vec3().ApproxEqual(mgl32.Vec3{1, 2, 0}))
}

func TestRefJSON(t *testing.T) {
	tree, a, _, _ := buildChain(t)
	_ = tree

	data, err := json.Marshal(&testComponent{Target: RefTo(a)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"target":"A"}`, string(data))

	data, err = json.Marshal(&testComponent{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"target":null}`, string(data))

	var c testComponent
	require.NoError(t, json.Unmarshal([]byte(`{"target":"B"}`), &c))
	assert.True(t, c.Target.IsSet())
	assert.False(t, c.Target.Resolved())
	assert.Equal(t, "B", c.Target.Name)
}
