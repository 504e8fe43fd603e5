package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

const (
	// areaEpsilon is the smallest doubled screen area (in pixels) a triangle
	// may have before it is treated as degenerate.
	areaEpsilon = 1e-9
	// minDepth keeps the reciprocal depth finite for vertices on the near
	// plane.
	minDepth = 1e-12
)

// Fragment is one covered pixel with its interpolated surface attributes.
type Fragment struct {
	X, Y    int
	Depth   float64    // normalized depth, 0 near and 1 far
	W       float64    // view depth
	Weights [3]float64 // screen-space barycentric weights

	Color   math3d.RGB
	UV      math3d.Vec2
	Normal  math3d.Vec3
	Tangent math3d.Vec3
	ViewDir math3d.Vec3
}

// FragmentShader computes the color of a fragment. Channels outside [0,1]
// are clamped by the rasterizer.
type FragmentShader func(f *Fragment) math3d.RGB

// TriangleResult tells what the rasterizer did with a triangle.
type TriangleResult int

const (
	TriangleDrawn          TriangleResult = iota // At least the setup ran; pixels may still be occluded
	TriangleDegenerate                           // Repeated index or zero area
	TriangleOutsideFrustum                       // A vertex left the view volume
	TriangleBackFacing                           // Counter-clockwise on screen
)

// Rasterizer fills screen-space triangles into a framebuffer, guarded by a
// depth buffer of the same size.
type Rasterizer struct {
	fb    *Framebuffer
	depth *DepthBuffer
	Stats FrameStats
}

// NewRasterizer creates a rasterizer drawing into fb and depth.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{fb: fb, depth: depth}
}

// SetTarget changes the color buffer triangles are drawn into.
func (r *Rasterizer) SetTarget(fb *Framebuffer) {
	r.fb = fb
}

// DrawMesh rasterizes every triangle of mesh from its transformed vertices,
// in index order.
func (r *Rasterizer) DrawMesh(verts []ScreenVertex, mesh *models.Mesh, shade FragmentShader) {
	for i := range mesh.TriangleCount() {
		r.DrawTriangle(verts, mesh.Triangle(i), shade)
	}
}

// DrawTriangle rasterizes the triangle formed by verts[tri[0]], verts[tri[1]]
// and verts[tri[2]]. Front faces are clockwise on screen. Each covered pixel
// whose depth is strictly nearer than the stored depth has its depth written
// immediately and its color taken from shade.
func (r *Rasterizer) DrawTriangle(verts []ScreenVertex, tri [3]int, shade FragmentShader) TriangleResult {
	r.Stats.Triangles++

	if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
		r.Stats.Degenerate++
		return TriangleDegenerate
	}

	v0, v1, v2 := &verts[tri[0]], &verts[tri[1]], &verts[tri[2]]
	width, height := r.fb.Width, r.fb.Height

	// No clipping: a triangle touching the outside of the view volume is
	// dropped whole.
	if !v0.InFrustum(width, height) || !v1.InFrustum(width, height) || !v2.InFrustum(width, height) {
		r.Stats.OutsideFrustum++
		return TriangleOutsideFrustum
	}

	p0 := math3d.V2(v0.Position.X, v0.Position.Y)
	p1 := math3d.V2(v1.Position.X, v1.Position.Y)
	p2 := math3d.V2(v2.Position.X, v2.Position.Y)

	e01 := p1.Sub(p0)
	e12 := p2.Sub(p1)
	e20 := p0.Sub(p2)

	// Negative for clockwise (front-facing) triangles in Y-down screen space.
	area := p2.Sub(p0).Cross(e01)
	if math.Abs(area) < areaEpsilon {
		r.Stats.Degenerate++
		return TriangleDegenerate
	}
	if area > 0 {
		// Every interior pixel would fail the edge test.
		r.Stats.BackFacing++
		return TriangleBackFacing
	}
	invArea := 1 / area

	minX := max(int(math.Floor(min(p0.X, p1.X, p2.X))), 0)
	maxX := min(int(math.Ceil(max(p0.X, p1.X, p2.X))), width)
	minY := max(int(math.Floor(min(p0.Y, p1.Y, p2.Y))), 0)
	maxY := min(int(math.Ceil(max(p0.Y, p1.Y, p2.Y))), height)

	depths := [3]float64{
		max(v0.Position.Z, minDepth),
		max(v1.Position.Z, minDepth),
		max(v2.Position.Z, minDepth),
	}
	ws := [3]float64{v0.Position.W, v1.Position.W, v2.Position.W}
	invW := [3]float64{1 / ws[0], 1 / ws[1], 1 / ws[2]}

	colors := [3]math3d.RGB{v0.Color, v1.Color, v2.Color}
	uvs := [3]math3d.Vec2{v0.UV, v1.UV, v2.UV}
	normals := [3]math3d.Vec3{v0.Normal, v1.Normal, v2.Normal}
	tangents := [3]math3d.Vec3{v0.Tangent, v1.Tangent, v2.Tangent}
	viewDirs := [3]math3d.Vec3{v0.ViewDir, v1.ViewDir, v2.ViewDir}

	var frag Fragment
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			p := math3d.V2(float64(x)+0.5, float64(y)+0.5)

			// Each edge against the vector from the pixel to its origin
			c12 := e12.Cross(p1.Sub(p))
			if c12 > 0 {
				continue
			}
			c20 := e20.Cross(p2.Sub(p))
			if c20 > 0 {
				continue
			}
			c01 := e01.Cross(p0.Sub(p))
			if c01 > 0 {
				continue
			}

			// The edge opposite a vertex gives its weight.
			weights := [3]float64{c12 * invArea, c20 * invArea, c01 * invArea}

			// Screen positions are not affine in world space, so depth is
			// recovered from the interpolated reciprocal.
			z := InterpolateReciprocal(weights, depths)
			// Vertex depths passed the frustum test and the weights are
			// non-negative, so only rounding can carry z past the far plane.
			// The range check then never fires; it stays as a guard.
			z = min(z, 1)
			if !(z >= 0 && z <= 1) {
				r.Stats.FragmentsRejected++
				continue
			}
			idx := x + y*width
			if !r.depth.TestAndSet(idx, z) {
				r.Stats.FragmentsOccluded++
				continue
			}

			w := InterpolateReciprocal(weights, ws)
			frag = Fragment{
				X:       x,
				Y:       y,
				Depth:   z,
				W:       w,
				Weights: weights,
				Color:   PerspectiveInterpolate(colors, weights, invW, w),
				UV:      PerspectiveInterpolate(uvs, weights, invW, w),
				Normal:  PerspectiveInterpolate(normals, weights, invW, w),
				Tangent: PerspectiveInterpolate(tangents, weights, invW, w),
				ViewDir: PerspectiveInterpolate(viewDirs, weights, invW, w),
			}

			r.fb.Pixels[idx] = shade(&frag).RGBA()
			r.Stats.FragmentsShaded++
		}
	}

	r.Stats.Drawn++
	return TriangleDrawn
}
