package render

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func TestInterpolateLinear(t *testing.T) {
	attrs := [3]math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)}
	got := Interpolate(attrs, [3]float64{0.2, 0.3, 0.5})
	if got.Sub(math3d.V3(0.2, 0.3, 0.5)).Len() > 1e-12 {
		t.Errorf("Interpolate = %v, want (0.2, 0.3, 0.5)", got)
	}
}

func TestInterpolateReciprocal(t *testing.T) {
	tests := []struct {
		name    string
		weights [3]float64
		values  [3]float64
		want    float64
	}{
		{"corner", [3]float64{1, 0, 0}, [3]float64{2, 4, 8}, 2},
		{"equal values", [3]float64{0.2, 0.3, 0.5}, [3]float64{3, 3, 3}, 3},
		{"midpoint", [3]float64{0.5, 0.5, 0}, [3]float64{1, 10, 1}, 1 / 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InterpolateReciprocal(tt.weights, tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("InterpolateReciprocal = %v, want %v", got, tt.want)
			}
		})
	}
}

// perspectiveUV interpolates u from 0 at depth 1 to 1 at depth far, at the
// screen-space midpoint.
func perspectiveUV(far float64) float64 {
	weights := [3]float64{0.5, 0.5, 0}
	ws := [3]float64{1, far, 1}
	invW := [3]float64{1, 1 / far, 1}
	uvs := [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 0)}
	return PerspectiveInterpolate(uvs, weights, invW, InterpolateReciprocal(weights, ws)).X
}

func TestPerspectiveInterpolateSkewsTowardNearVertex(t *testing.T) {
	got := perspectiveUV(10)
	if math.Abs(got-0.5) < 1e-3 {
		t.Fatalf("perspective u = %v, should differ from linear 0.5", got)
	}
	if got >= 0.5 {
		t.Errorf("perspective u = %v, should be skewed toward the nearer u = 0", got)
	}
}

func TestPerspectiveInterpolateConvergesToLinear(t *testing.T) {
	prevErr := math.Inf(1)
	for _, far := range []float64{10, 2, 1.1, 1.01, 1.001} {
		err := math.Abs(perspectiveUV(far) - 0.5)
		if err >= prevErr {
			t.Errorf("depth ratio %v: error %v did not shrink from %v", far, err, prevErr)
		}
		prevErr = err
	}
	if prevErr > 1e-3 {
		t.Errorf("error at nearly equal depths = %v, want < 1e-3", prevErr)
	}

	if got := perspectiveUV(1); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("equal depths: u = %v, want exactly linear 0.5", got)
	}
}

func TestPerspectiveInterpolateColor(t *testing.T) {
	colors := [3]math3d.RGB{{R: 1}, {G: 1}, {B: 1}}
	weights := [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	ws := [3]float64{2, 2, 2}
	invW := [3]float64{0.5, 0.5, 0.5}

	got := PerspectiveInterpolate(colors, weights, invW, InterpolateReciprocal(weights, ws))
	want := 1.0 / 3
	if math.Abs(got.R-want) > 1e-12 || math.Abs(got.G-want) > 1e-12 || math.Abs(got.B-want) > 1e-12 {
		t.Errorf("color = %v, want %v per channel", got, want)
	}
}
