package scene

import "github.com/go-gl/mathgl/mgl32"

type LightType string

const (
	DirectionalLight LightType = "directional"
	PointLight       LightType = "point"
	SpotLight        LightType = "spot"
)

// Light is a punctual light shining down its node's local -Z axis.
type Light struct {
	Name      string
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32
	Range     float32 // 0 is infinite

	InnerConeAngle float32
	OuterConeAngle float32
}

func NewLight(typ LightType) *Light {
	l := &Light{Type: typ, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}
	if typ == SpotLight {
		l.OuterConeAngle = mgl32.DegToRad(45)
	}
	return l
}
