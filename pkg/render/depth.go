package render

import "math"

// FarDepth is the cleared depth value. It is larger than any normalized
// depth, so the first fragment at a pixel always passes.
const FarDepth = math.MaxFloat64

// DepthBuffer stores one normalized depth (0 near, 1 far) per pixel, laid
// out like the framebuffer it guards.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Clear resets every entry to FarDepth.
func (d *DepthBuffer) Clear() {
	// Use copy-doubling for faster clearing
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = FarDepth
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the stored depth at (x, y), or FarDepth when out of bounds.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return FarDepth
	}
	return d.Values[y*d.Width+x]
}

// TestAndSet stores z at index i when it is strictly nearer than the stored
// value and reports whether it did. Equal depths keep the earlier fragment.
func (d *DepthBuffer) TestAndSet(i int, z float64) bool {
	if z >= d.Values[i] {
		return false
	}
	d.Values[i] = z
	return true
}
