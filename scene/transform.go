package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltfscene/utils"
)

// Transform is a node's local transform. It is either decomposed
// translation/rotation/scale, or an explicit matrix that was set directly.
// Once any TRS component is set, the matrix is ignored.
type Transform struct {
	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3

	matrix    mgl32.Mat4
	hasMatrix bool
	hasTRS    bool
}

func IdentityTransform() Transform {
	return Transform{
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		matrix:   mgl32.Ident4(),
	}
}

func (t *Transform) Translation() mgl32.Vec3 { return t.translation }
func (t *Transform) Rotation() mgl32.Quat    { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3       { return t.scale }

func (t *Transform) SetTranslation(v mgl32.Vec3) {
	t.translation = v
	t.hasTRS = true
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.hasTRS = true
}

// SetEulerRotation sets the rotation from XYZ euler angles in radians.
func (t *Transform) SetEulerRotation(e mgl32.Vec3) {
	t.SetRotation(utils.EulerToQuat(e))
}

// EulerRotation returns the rotation as XYZ angles in radians.
func (t *Transform) EulerRotation() mgl32.Vec3 {
	return utils.QuatToEuler(t.rotation)
}

func (t *Transform) SetScale(v mgl32.Vec3) {
	t.scale = v
	t.hasTRS = true
}

func (t *Transform) SetTRS(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	t.SetTranslation(translation)
	t.SetRotation(rotation)
	t.SetScale(scale)
}

// SetMatrix sets an explicit local matrix. The decomposed view is updated
// too, but IsMatrix stays true until a TRS setter is used.
func (t *Transform) SetMatrix(m mgl32.Mat4) {
	t.matrix = m
	t.hasMatrix = true
	t.hasTRS = false
	t.translation, t.rotation, t.scale = Decompose(m)
}

// IsMatrix reports whether the transform should be stored as a matrix.
func (t *Transform) IsMatrix() bool {
	return t.hasMatrix && !t.hasTRS
}

// Matrix returns the local matrix, composing TRS when needed.
func (t *Transform) Matrix() mgl32.Mat4 {
	if t.IsMatrix() {
		return t.matrix
	}
	s := mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2])
	tr := mgl32.Translate3D(t.translation[0], t.translation[1], t.translation[2])
	return tr.Mul4(t.rotation.Mat4()).Mul4(s)
}

// Decompose splits an affine matrix without shear into TRS.
func Decompose(m mgl32.Mat4) (translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	translation = m.Col(3).Vec3()
	scale = mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}

	var r mgl32.Mat4
	for c := 0; c < 3; c++ {
		col := m.Col(c).Vec3()
		if scale[c] != 0 {
			col = col.Mul(1 / scale[c])
		}
		r.SetCol(c, col.Vec4(0))
	}
	r.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	rotation = mgl32.Mat4ToQuat(r).Normalize()
	return translation, rotation, scale
}
