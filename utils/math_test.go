package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var eulerTests = []mgl32.Vec3{
	{0, 0, 0},
	{math.Pi / 2, 0, 0},
	{0, math.Pi / 4, 0},
	{0.1, -0.3, 1.2},
}

func TestEulerQuatRoundTrip(t *testing.T) {
	for _, e := range eulerTests {
		got := QuatToEuler(EulerToQuat(e))
		if !got.ApproxEqualThreshold(e, 1e-4) {
			t.Errorf("QuatToEuler(EulerToQuat(%v)) = %v", e, got)
		}
	}
}

func TestEulerToQuatAxis(t *testing.T) {
	q := EulerToQuat(mgl32.Vec3{0, 0, math.Pi / 2})
	expected := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
	if !q.ApproxEqualThreshold(expected, 1e-5) {
		t.Errorf("EulerToQuat z90 = %v; expected %v", q, expected)
	}
}
