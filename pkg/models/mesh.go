// Package models provides the mesh data model and loaders for prism.
package models

import (
	"errors"
	"fmt"
	"image"

	"github.com/taigrr/prism/pkg/math3d"
)

var (
	// ErrNoGeometry is returned when a model file contains no triangles.
	ErrNoGeometry = errors.New("no triangle geometry")
	// ErrIndexOutOfRange is returned when an index references a missing vertex.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Topology describes how a mesh's index list forms triangles.
type Topology int

const (
	// TriangleList consumes three indices per triangle.
	TriangleList Topology = iota
	// TriangleStrip shares two indices with the previous triangle. Every odd
	// triangle has its last two indices swapped to keep the winding.
	TriangleStrip
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "list"
	case TriangleStrip:
		return "strip"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// Vertex holds the mesh-space attributes of one vertex.
type Vertex struct {
	Position math3d.Vec3
	Color    math3d.RGB
	UV       math3d.Vec2 // (0,0) is the top-left texel
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
}

// Mesh is an indexed triangle mesh with a world transform.
// Vertex and index data are treated as immutable once loaded; only World is
// expected to change per frame.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Indices   []int
	Topology  Topology
	World     math3d.Mat4
	Materials []Material

	// Bounding box in mesh space (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Material is the surface description a loader found for a mesh.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64    // 0 = dielectric, 1 = metal
	Roughness float64    // 0 = smooth, 1 = rough
	BaseMap   image.Image
	NormalMap image.Image
}

// HasTexture reports whether the material carries a base color texture.
func (m *Material) HasTexture() bool {
	return m.BaseMap != nil
}

// NewMesh creates an empty triangle-list mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]Vertex, 0),
		Indices:  make([]int, 0),
		Topology: TriangleList,
		World:    math3d.Identity(),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles the index list describes,
// including degenerate strip triangles.
func (m *Mesh) TriangleCount() int {
	switch m.Topology {
	case TriangleStrip:
		return max(len(m.Indices)-2, 0)
	default:
		return len(m.Indices) / 3
	}
}

// Triangle returns the vertex indices of triangle i in submission winding.
func (m *Mesh) Triangle(i int) [3]int {
	if m.Topology == TriangleStrip {
		if i%2 == 1 {
			return [3]int{m.Indices[i], m.Indices[i+2], m.Indices[i+1]}
		}
		return [3]int{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
	}
	base := i * 3
	return [3]int{m.Indices[base], m.Indices[base+1], m.Indices[base+2]}
}

// Validate checks that every index references an existing vertex.
func (m *Mesh) Validate() error {
	if m.TriangleCount() == 0 {
		return ErrNoGeometry
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("index %d = %d with %d vertices: %w", i, idx, len(m.Vertices), ErrIndexOutOfRange)
		}
	}
	return nil
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i, n := range m.smoothNormals() {
		m.Vertices[i].Normal = n
	}
}

// FillMissingNormals gives smooth normals to vertices whose normal is zero,
// keeping the ones the model file supplied.
func (m *Mesh) FillMissingNormals() {
	missing := false
	for _, v := range m.Vertices {
		if v.Normal.LenSq() < 1e-12 {
			missing = true
			break
		}
	}
	if !missing {
		return
	}
	for i, n := range m.smoothNormals() {
		if m.Vertices[i].Normal.LenSq() < 1e-12 {
			m.Vertices[i].Normal = n
		}
	}
}

func (m *Mesh) smoothNormals() []math3d.Vec3 {
	normals := make([]math3d.Vec3, len(m.Vertices))

	for t := range m.TriangleCount() {
		f := m.Triangle(t)
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		v0 := m.Vertices[f[0]].Position
		v1 := m.Vertices[f[1]].Position
		v2 := m.Vertices[f[2]].Position

		// Screen space is Y-down, so clockwise triangles face the viewer and
		// the outward normal is edge2 x edge1.
		normal := v2.Sub(v0).Cross(v1.Sub(v0))

		for _, idx := range f {
			normals[idx] = normals[idx].Add(normal)
		}
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// CalculateTangents derives per-vertex tangents from positions and UVs for
// tangent-space normal mapping. Triangles with a degenerate UV area are
// skipped; the result is orthogonalized against the vertex normal.
func (m *Mesh) CalculateTangents() {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Zero3()
	}

	for t := range m.TriangleCount() {
		f := m.Triangle(t)
		v0, v1, v2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		denom := d1.Cross(d2)
		if denom == 0 {
			continue
		}
		tangent := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(1 / denom)

		for _, idx := range f {
			m.Vertices[idx].Tangent = m.Vertices[idx].Tangent.Add(tangent)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		tangent := m.Vertices[i].Tangent
		tangent = tangent.Sub(n.Scale(n.Dot(tangent)))
		if tangent.LenSq() < 1e-12 {
			// Any direction perpendicular to the normal will do.
			if n.X < 0.9 && n.X > -0.9 {
				tangent = math3d.Right().Sub(n.Scale(n.X))
			} else {
				tangent = math3d.Up().Sub(n.Scale(n.Y))
			}
		}
		m.Vertices[i].Tangent = tangent.Normalize()
	}
}

// Transform bakes a transformation matrix into all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulVec3(v.Position)
		v.Normal = mat.MulVec3Dir(v.Normal).Normalize()
		v.Tangent = mat.MulVec3Dir(v.Tangent).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]Vertex, len(m.Vertices)),
		Indices:   make([]int, len(m.Indices)),
		Topology:  m.Topology,
		World:     m.World,
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}
