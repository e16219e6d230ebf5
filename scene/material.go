package scene

import "github.com/go-gl/mathgl/mgl32"

// Material is compared by value: two materials with equal fields are
// stored once in the container.
type Material struct {
	Name        string
	BaseColor   mgl32.Vec4
	Metallic    float32
	Roughness   float32
	DoubleSided bool
}

func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		BaseColor: mgl32.Vec4{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
}
