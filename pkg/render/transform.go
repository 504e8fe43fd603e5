package render

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// wEpsilon guards the perspective divide. Vertices with |w| below it land at
// +Inf and fail the in-frustum test.
const wEpsilon = 1e-9

// ScreenVertex is a vertex after transformation. Position holds the screen
// pixel coordinates in X and Y (origin top-left, Y down), normalized depth in
// Z and the pre-divide view depth in W. Normal, Tangent and ViewDir are in
// world space.
type ScreenVertex struct {
	Position math3d.Vec4
	Color    math3d.RGB
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	ViewDir  math3d.Vec3
}

// InFrustum reports whether the vertex projected inside the view volume:
// NDC x and y in [-1,1] (the whole screen) and depth in [0,1].
func (v ScreenVertex) InFrustum(width, height int) bool {
	p := v.Position
	return p.X >= 0 && p.X <= float64(width) &&
		p.Y >= 0 && p.Y <= float64(height) &&
		p.Z >= 0 && p.Z <= 1
}

// ToScreen maps NDC x and y to pixel coordinates for a width x height target.
func ToScreen(ndcX, ndcY float64, width, height int) (x, y float64) {
	x = (ndcX + 1) * 0.5 * float64(width)
	y = (1 - ndcY) * 0.5 * float64(height) // Y is flipped
	return x, y
}

// TransformVertices transforms every vertex of mesh into screen space for
// cam and a width x height target. The result has the same order as
// mesh.Vertices and reuses dst's storage when it is large enough.
func TransformVertices(dst []ScreenVertex, mesh *models.Mesh, cam *Camera, width, height int) []ScreenVertex {
	n := len(mesh.Vertices)
	if cap(dst) < n {
		dst = make([]ScreenVertex, n)
	}
	dst = dst[:n]

	world := mesh.World
	mvp := cam.ViewProjectionMatrix().Mul(world)
	origin := cam.Origin()

	for i, v := range mesh.Vertices {
		worldPos := world.MulVec3(v.Position)
		clip := mvp.MulVec4(math3d.V4FromV3(v.Position, 1))
		ndc := clip.PerspectiveDivide(wEpsilon)
		sx, sy := ToScreen(ndc.X, ndc.Y, width, height)

		dst[i] = ScreenVertex{
			Position: math3d.V4(sx, sy, ndc.Z, clip.W),
			Color:    v.Color,
			UV:       v.UV,
			Normal:   world.MulVec3Dir(v.Normal).Normalize(),
			Tangent:  world.MulVec3Dir(v.Tangent).Normalize(),
			ViewDir:  worldPos.Sub(origin),
		}
	}
	return dst
}
