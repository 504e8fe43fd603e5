package models

import "github.com/taigrr/prism/pkg/math3d"

// NewQuad creates a square in the XY plane facing +Z, centered on the origin,
// as a two-triangle list. UV (0,0) is the top-left corner.
func NewQuad(size float64) *Mesh {
	h := size / 2
	m := NewMesh("quad")
	m.Vertices = []Vertex{
		planeVertex(-h, h, 0, 0),
		planeVertex(h, h, 1, 0),
		planeVertex(-h, -h, 0, 1),
		planeVertex(h, -h, 1, 1),
	}
	m.Indices = []int{0, 1, 2, 2, 1, 3}
	m.CalculateTangents()
	m.CalculateBounds()
	return m
}

// NewGridStrip creates a 3x3 vertex grid in the XY plane facing +Z as a
// single triangle strip. The two rows are stitched together with repeated
// indices, so the strip contains degenerate triangles that the rasterizer
// must skip.
func NewGridStrip(size float64) *Mesh {
	h := size / 2
	m := NewMesh("grid")
	m.Topology = TriangleStrip

	for row := range 3 {
		for col := range 3 {
			u := float64(col) / 2
			v := float64(row) / 2
			m.Vertices = append(m.Vertices, planeVertex(-h+u*size, h-v*size, u, v))
		}
	}

	// Each row pair zigzags bottom, top so even triangles come out clockwise
	// on screen. Indices 2,6 are repeated to restart on the next row.
	m.Indices = []int{
		3, 0, 4, 1, 5, 2,
		2, 6,
		6, 3, 7, 4, 8, 5,
	}
	m.CalculateTangents()
	m.CalculateBounds()
	return m
}

func planeVertex(x, y, u, v float64) Vertex {
	return Vertex{
		Position: math3d.V3(x, y, 0),
		Color:    math3d.Gray(1),
		UV:       math3d.V2(u, v),
		Normal:   math3d.V3(0, 0, 1),
	}
}
