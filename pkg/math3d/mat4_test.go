package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestPerspectiveZODepthRange(t *testing.T) {
	near, far := 0.5, 50.0
	proj := PerspectiveZO(math.Pi/2, 1, near, far)

	tests := []struct {
		name      string
		viewZ     float64
		wantDepth float64
	}{
		{"near plane", -near, 0},
		{"far plane", -far, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clip := proj.MulVec4(V4(0, 0, tc.viewZ, 1))
			if !approx(clip.W, -tc.viewZ) {
				t.Errorf("W = %v, want view depth %v", clip.W, -tc.viewZ)
			}
			ndc := clip.PerspectiveDivide(1e-9)
			if !approx(ndc.Z, tc.wantDepth) {
				t.Errorf("depth = %v, want %v", ndc.Z, tc.wantDepth)
			}
		})
	}

	t.Run("depth is monotonic", func(t *testing.T) {
		prev := -1.0
		for z := near; z <= far; z += 1.5 {
			d := proj.MulVec4(V4(0, 0, -z, 1)).PerspectiveDivide(1e-9).Z
			if d <= prev {
				t.Fatalf("depth at %v = %v, not greater than %v", z, d, prev)
			}
			prev = d
		}
	})

	t.Run("behind camera is beyond far", func(t *testing.T) {
		d := proj.MulVec4(V4(0, 0, 2, 1)).PerspectiveDivide(1e-9).Z
		if d <= 1 {
			t.Errorf("depth behind camera = %v, want > 1", d)
		}
	})
}

func TestPerspectiveZOFieldOfView(t *testing.T) {
	// With a 90 degree fov a point at 45 degrees lands on the NDC edge.
	proj := PerspectiveZO(math.Pi/2, 1, 0.1, 100)
	ndc := proj.MulVec4(V4(3, 3, -3, 1)).PerspectiveDivide(1e-9)
	if !approx(ndc.X, 1) || !approx(ndc.Y, 1) {
		t.Errorf("ndc = %v, want (1, 1, _)", ndc)
	}
}

func TestPerspectiveDivideGuard(t *testing.T) {
	v := V4(1, 2, 3, 0).PerspectiveDivide(1e-6)
	if !math.IsInf(v.X, 1) || !math.IsInf(v.Y, 1) || !math.IsInf(v.Z, 1) {
		t.Errorf("divide by ~0 = %v, want +Inf components", v)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := Translate(V3(1, -2, 3)).Mul(RotateY(0.7)).Mul(Scale(V3(2, 3, 4)))
	p := V3(0.25, -1.5, 8)

	got := m.Inverse().MulVec3(m.MulVec3(p))
	if !approx(got.X, p.X) || !approx(got.Y, p.Y) || !approx(got.Z, p.Z) {
		t.Errorf("inverse round trip = %v, want %v", got, p)
	}
}

func TestMulVec3DirIgnoresTranslation(t *testing.T) {
	m := Translate(V3(10, 20, 30)).Mul(RotateZ(math.Pi / 2))
	got := m.MulVec3Dir(V3(1, 0, 0))
	if !approx(got.X, 0) || !approx(got.Y, 1) || !approx(got.Z, 0) {
		t.Errorf("MulVec3Dir = %v, want (0, 1, 0)", got)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := V3(3, 4, 5)
	view := LookAt(eye, Zero3(), Up())
	got := view.MulVec3(eye)
	if got.Len() > eps {
		t.Errorf("eye in view space = %v, want origin", got)
	}
	target := view.MulVec3(Zero3())
	if target.Z >= 0 {
		t.Errorf("target in view space = %v, want negative Z", target)
	}
}
