package render

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera()
	if cam.Origin() != math3d.V3(0, 0, 5) {
		t.Errorf("Origin = %v, want (0, 0, 5)", cam.Origin())
	}
	if f := cam.Forward(); f.Sub(math3d.V3(0, 0, -1)).Len() > 1e-12 {
		t.Errorf("Forward = %v, want -Z", f)
	}
}

func TestCameraProjectsDepthZeroToOne(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.Zero3())
	cam.SetClipPlanes(1, 10)
	vp := cam.ViewProjectionMatrix()

	tests := []struct {
		name string
		z    float64
		want float64
	}{
		{"near plane", -1, 0},
		{"far plane", -10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ndc := vp.MulVec4(math3d.V4(0, 0, tt.z, 1)).PerspectiveDivide(wEpsilon)
			if math.Abs(ndc.Z-tt.want) > 1e-12 {
				t.Errorf("depth = %v, want %v", ndc.Z, tt.want)
			}
		})
	}
}

func TestCameraViewProjectionTracksChanges(t *testing.T) {
	cam := NewCamera()
	p := math3d.V4(0, 0, 0, 1)

	before := cam.ViewProjectionMatrix().MulVec4(p).W
	cam.SetPosition(math3d.V3(0, 0, 8))
	after := cam.ViewProjectionMatrix().MulVec4(p).W
	if math.Abs(before-5) > 1e-12 || math.Abs(after-8) > 1e-12 {
		t.Errorf("view depth before/after move = %v/%v, want 5/8", before, after)
	}

	// Reading the parts first must not leave the product stale.
	cam.SetAspectRatio(2)
	cam.ProjectionMatrix()
	cam.ViewMatrix()
	want := cam.ProjectionMatrix().Mul(cam.ViewMatrix())
	if got := cam.ViewProjectionMatrix(); got != want {
		t.Error("ViewProjectionMatrix is stale after reading its factors")
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(5, 0, 0))
	cam.LookAt(math3d.Zero3())
	if f := cam.Forward(); f.Sub(math3d.V3(-1, 0, 0)).Len() > 1e-9 {
		t.Errorf("Forward = %v, want -X", f)
	}
}

func TestCameraControllerEasesInAndOut(t *testing.T) {
	const fps = 60
	cam := NewCamera()
	ctrl := NewCameraController(cam, fps)
	dt := 1.0 / fps

	ctrl.Update(dt, Input{Forward: 1})
	firstStep := 5 - cam.Position.Z
	for range fps - 1 {
		ctrl.Update(dt, Input{Forward: 1})
	}
	if cam.Position.Z >= 5 {
		t.Fatalf("camera did not move forward: z = %v", cam.Position.Z)
	}
	if travelled := 5 - cam.Position.Z; travelled > ctrl.MoveSpeed {
		t.Errorf("travelled %v in one second, faster than MoveSpeed %v", travelled, ctrl.MoveSpeed)
	}
	if firstStep >= ctrl.MoveSpeed*dt {
		t.Errorf("first step %v should ease in below full speed", firstStep)
	}
	if !ctrl.Moving() {
		t.Error("controller should be moving while input is held")
	}

	for range 10 * fps {
		ctrl.Update(dt, Input{})
	}
	if ctrl.Moving() {
		t.Error("controller still moving ten seconds after release")
	}

	z := cam.Position.Z
	ctrl.Update(dt, Input{})
	if math.Abs(cam.Position.Z-z) > 1e-4 {
		t.Errorf("camera drifted %v after coming to rest", cam.Position.Z-z)
	}
}

func TestCameraControllerTurns(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam, 30)
	for range 30 {
		ctrl.Update(1.0/30, Input{Yaw: 1})
	}
	if cam.Yaw <= 0 {
		t.Errorf("yaw = %v, want positive after turning left", cam.Yaw)
	}
	if f := cam.Forward(); f.X >= 0 {
		t.Errorf("Forward = %v, want pointing left", f)
	}
}

func TestCameraControllerNonPositiveFPS(t *testing.T) {
	for _, fps := range []int{0, -30} {
		cam := NewCamera()
		ctrl := NewCameraController(cam, fps)
		for range 60 {
			ctrl.Update(1.0/60, Input{Forward: 1})
		}
		z := cam.Position.Z
		if math.IsNaN(z) || math.IsInf(z, 0) || z >= 5 {
			t.Errorf("fps %d: z = %v, want finite forward motion", fps, z)
		}
	}
}
