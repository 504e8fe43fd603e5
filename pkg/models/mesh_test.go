package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

// windingZ returns the z of (v2-v0) x (v1-v0), positive for triangles that
// are clockwise when seen from +Z.
func windingZ(m *Mesh, f [3]int) float64 {
	v0 := m.Vertices[f[0]].Position
	v1 := m.Vertices[f[1]].Position
	v2 := m.Vertices[f[2]].Position
	return v2.Sub(v0).Cross(v1.Sub(v0)).Z
}

func isDegenerate(f [3]int) bool {
	return f[0] == f[1] || f[1] == f[2] || f[0] == f[2]
}

func TestTriangleList(t *testing.T) {
	m := NewQuad(2)

	if got := m.TriangleCount(); got != 2 {
		t.Fatalf("TriangleCount = %d, want 2", got)
	}
	want := [][3]int{{0, 1, 2}, {2, 1, 3}}
	for i, w := range want {
		if got := m.Triangle(i); got != w {
			t.Errorf("Triangle(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestTriangleStripAlternatesWinding(t *testing.T) {
	m := NewMesh("strip")
	m.Topology = TriangleStrip
	m.Indices = []int{0, 1, 2, 3, 4}

	want := [][3]int{
		{0, 1, 2},
		{1, 3, 2}, // odd: last two swapped
		{2, 3, 4},
	}
	if got := m.TriangleCount(); got != len(want) {
		t.Fatalf("TriangleCount = %d, want %d", got, len(want))
	}
	for i, w := range want {
		if got := m.Triangle(i); got != w {
			t.Errorf("Triangle(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestStripTriangleCountShort(t *testing.T) {
	m := NewMesh("short")
	m.Topology = TriangleStrip
	m.Indices = []int{0, 1}
	if got := m.TriangleCount(); got != 0 {
		t.Errorf("TriangleCount = %d, want 0", got)
	}
}

func TestGridStripConsistentWinding(t *testing.T) {
	m := NewGridStrip(2)

	degenerate := 0
	for i := range m.TriangleCount() {
		f := m.Triangle(i)
		if isDegenerate(f) {
			degenerate++
			continue
		}
		if w := windingZ(m, f); w <= 0 {
			t.Errorf("triangle %d %v winding = %v, want clockwise (> 0)", i, f, w)
		}
	}
	if degenerate != 4 {
		t.Errorf("degenerate triangles = %d, want 4", degenerate)
	}
}

func TestQuadFacesViewer(t *testing.T) {
	m := NewQuad(2)
	for i := range m.TriangleCount() {
		if w := windingZ(m, m.Triangle(i)); w <= 0 {
			t.Errorf("triangle %d winding = %v, want clockwise (> 0)", i, w)
		}
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := NewQuad(2)
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}
	m.CalculateSmoothNormals()

	for i, v := range m.Vertices {
		if math.Abs(v.Normal.Z-1) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want (0, 0, 1)", i, v.Normal)
		}
	}
}

func TestCalculateTangentsFollowsU(t *testing.T) {
	m := NewQuad(2)
	for i, v := range m.Vertices {
		if math.Abs(v.Tangent.X-1) > 1e-9 || math.Abs(v.Tangent.Y) > 1e-9 {
			t.Errorf("vertex %d tangent = %v, want (1, 0, 0)", i, v.Tangent)
		}
		if d := v.Tangent.Dot(v.Normal); math.Abs(d) > 1e-9 {
			t.Errorf("vertex %d tangent not orthogonal to normal: dot = %v", i, d)
		}
	}
}

func TestValidate(t *testing.T) {
	m := NewQuad(1)
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	m.Indices[4] = 10
	if err := m.Validate(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Validate() = %v, want ErrIndexOutOfRange", err)
	}

	empty := NewMesh("empty")
	if err := empty.Validate(); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Validate() on empty mesh = %v, want ErrNoGeometry", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := NewQuad(2)
	m.Materials = []Material{{Name: "mat1"}}
	clone := m.Clone()

	clone.Vertices[0].Position = math3d.V3(9, 9, 9)
	clone.Indices[0] = 3
	clone.Materials[0].Name = "modified"

	if m.Vertices[0].Position == clone.Vertices[0].Position {
		t.Error("Clone shares vertex storage")
	}
	if m.Indices[0] == 3 {
		t.Error("Clone shares index storage")
	}
	if m.Materials[0].Name == "modified" {
		t.Error("Clone shares material storage")
	}
	if clone.Topology != m.Topology || clone.World != m.World {
		t.Error("Clone dropped topology or world transform")
	}
}

func TestGetMaterial(t *testing.T) {
	m := NewMesh("test")
	m.Materials = []Material{{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}}}

	if mat := m.GetMaterial(0); mat == nil || mat.Name != "red" {
		t.Errorf("GetMaterial(0) = %v, want red", mat)
	}
	if mat := m.GetMaterial(-1); mat != nil {
		t.Errorf("GetMaterial(-1) = %v, want nil", mat)
	}
	if mat := m.GetMaterial(99); mat != nil {
		t.Errorf("GetMaterial(99) = %v, want nil", mat)
	}
}

func TestBounds(t *testing.T) {
	m := NewQuad(4)
	if m.BoundsMin != math3d.V3(-2, -2, 0) || m.BoundsMax != math3d.V3(2, 2, 0) {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
	if c := m.Center(); c != math3d.Zero3() {
		t.Errorf("Center = %v, want origin", c)
	}
}
