package render

import (
	"image/color"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// Options configures a Renderer.
type Options struct {
	Width      int
	Height     int
	Background color.RGBA

	// ShowDepth replaces shading with the fragment depth remapped from
	// [DepthRemapMin, 1] to black..white.
	ShowDepth     bool
	DepthRemapMin float64
}

// DefaultOptions returns options for a width x height target.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:         width,
		Height:        height,
		Background:    RGB(30, 30, 40),
		DepthRemapMin: 0.95,
	}
}

// Object is a mesh drawn with a material. A nil Material draws with
// DefaultMaterial.
type Object struct {
	Mesh     *models.Mesh
	Material *Material
}

// FrameStats counts what happened to triangles and fragments in one frame.
type FrameStats struct {
	Triangles      int // Triangles submitted, culled meshes included
	Drawn          int
	Degenerate     int
	OutsideFrustum int
	BackFacing     int
	MeshesCulled   int // Meshes whose bounds missed the frustum entirely

	FragmentsShaded   int
	FragmentsOccluded int // Failed the depth test
	FragmentsRejected int // Interpolated depth outside [0,1]
}

// Renderer draws frames of objects into a double-buffered color target.
// It is not safe for concurrent use.
type Renderer struct {
	opts   Options
	chain  *SwapChain
	depth  *DepthBuffer
	raster *Rasterizer
	verts  []ScreenVertex
}

// NewRenderer allocates color and depth buffers for opts.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{opts: opts}
	r.Resize(opts.Width, opts.Height)
	return r
}

// Options returns the current options.
func (r *Renderer) Options() Options {
	return r.opts
}

// SetShowDepth toggles the depth view.
func (r *Renderer) SetShowDepth(on bool) {
	r.opts.ShowDepth = on
}

// Resize reallocates the buffers. The previous frame is lost.
func (r *Renderer) Resize(width, height int) {
	r.opts.Width, r.opts.Height = width, height
	r.chain = NewSwapChain(width, height)
	r.depth = NewDepthBuffer(width, height)
	r.raster = NewRasterizer(r.chain.Back(), r.depth)
	Logger().Info("render target resized", "width", width, "height", height)
}

// Depth returns the depth buffer of the last rendered frame.
func (r *Renderer) Depth() *DepthBuffer {
	return r.depth
}

// Back returns the buffer the next Render call draws into.
func (r *Renderer) Back() *Framebuffer {
	return r.chain.Back()
}

// Front returns the last presented frame.
func (r *Renderer) Front() *Framebuffer {
	return r.chain.Front()
}

// Present swaps the buffers so the frame just rendered becomes Front, and
// returns it.
func (r *Renderer) Present() *Framebuffer {
	r.chain.Swap()
	r.raster.SetTarget(r.chain.Back())
	return r.chain.Front()
}

// Render clears the back buffer and depth buffer and draws objects in order
// as seen from cam. Triangles are submitted in object order, then index
// order, so equal depths resolve to the earliest submission.
func (r *Renderer) Render(cam *Camera, shading ShadingConfig, objects ...Object) FrameStats {
	back := r.chain.Back()
	back.Clear(r.opts.Background)
	r.depth.Clear()
	r.raster.Stats = FrameStats{}

	frustum := cam.Frustum()

	for _, obj := range objects {
		mesh := obj.Mesh
		if mesh == nil {
			continue
		}

		// Every triangle of a mesh outside the frustum would fail the
		// per-vertex test anyway. Meshes without computed bounds are not
		// culled.
		hasBounds := mesh.BoundsMin != mesh.BoundsMax
		bounds := NewAABB(mesh.BoundsMin, mesh.BoundsMax).Transform(mesh.World)
		if hasBounds && !frustum.IntersectAABB(bounds) {
			r.raster.Stats.MeshesCulled++
			r.raster.Stats.Triangles += mesh.TriangleCount()
			r.raster.Stats.OutsideFrustum += mesh.TriangleCount()
			continue
		}

		r.verts = TransformVertices(r.verts, mesh, cam, back.Width, back.Height)
		r.raster.DrawMesh(r.verts, mesh, r.fragmentShader(&shading, obj.Material))
	}

	stats := r.raster.Stats
	Logger().Debug("frame rendered",
		"triangles", stats.Triangles,
		"drawn", stats.Drawn,
		"degenerate", stats.Degenerate,
		"outside_frustum", stats.OutsideFrustum,
		"back_facing", stats.BackFacing,
		"fragments", stats.FragmentsShaded,
		"occluded", stats.FragmentsOccluded,
	)
	return stats
}

func (r *Renderer) fragmentShader(cfg *ShadingConfig, mat *Material) FragmentShader {
	if r.opts.ShowDepth {
		lo := r.opts.DepthRemapMin
		return func(f *Fragment) math3d.RGB {
			if lo >= 1 {
				return math3d.Gray(f.Depth)
			}
			return math3d.Gray((f.Depth - lo) / (1 - lo))
		}
	}
	if mat == nil {
		mat = DefaultMaterial()
	}
	return func(f *Fragment) math3d.RGB {
		return Shade(cfg, mat, f)
	}
}
