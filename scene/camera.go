package scene

import "github.com/go-gl/mathgl/mgl32"

type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// Camera looks down its node's local -Z axis.
type Camera struct {
	Name       string
	Projection Projection

	// perspective
	Yfov        float32 // radians
	AspectRatio float32 // 0 lets the viewport decide

	// orthographic
	Xmag float32
	Ymag float32

	Znear float32
	Zfar  float32 // 0 means infinite for perspective cameras
}

func NewPerspectiveCamera(yfov, aspect, znear, zfar float32) *Camera {
	return &Camera{Projection: Perspective, Yfov: yfov, AspectRatio: aspect, Znear: znear, Zfar: zfar}
}

func NewOrthographicCamera(xmag, ymag, znear, zfar float32) *Camera {
	return &Camera{Projection: Orthographic, Xmag: xmag, Ymag: ymag, Znear: znear, Zfar: zfar}
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.Projection == Orthographic {
		return mgl32.Ortho(-c.Xmag, c.Xmag, -c.Ymag, c.Ymag, c.Znear, c.Zfar)
	}
	aspect := c.AspectRatio
	if aspect == 0 {
		aspect = 1
	}
	far := c.Zfar
	if far == 0 {
		far = 1e6
	}
	return mgl32.Perspective(c.Yfov, aspect, c.Znear, far)
}
