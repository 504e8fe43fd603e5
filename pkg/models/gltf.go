package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/prism/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals  bool
	CalculateTangents bool
	LoadImages        bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals:  true,
		CalculateTangents: true,
		LoadImages:        true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// primitive is one glTF triangle primitive, rebased onto the mesh vertices.
type primitive struct {
	indices []int
	strip   bool
}

// Load loads a GLTF or GLB file and returns a Mesh.
//
// glTF front faces are counter-clockwise; the rasterizer draws clockwise
// screen-space triangles, so the winding of every primitive is reversed.
// A file with a single strip primitive keeps the strip topology; anything
// else is flattened into a triangle list.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))

	var prims []primitive
	for _, m := range doc.Meshes {
		p, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		prims = append(prims, p...)
	}

	switch {
	case len(prims) == 1 && prims[0].strip && len(prims[0].indices) > 0:
		// Repeating the first index shifts every triangle's parity, which
		// reverses the winding of the whole strip.
		mesh.Topology = TriangleStrip
		mesh.Indices = append([]int{prims[0].indices[0]}, prims[0].indices...)
	default:
		for _, p := range prims {
			if p.strip {
				mesh.Indices = append(mesh.Indices, stripToList(p.indices)...)
				continue
			}
			for i := 0; i+2 < len(p.indices); i += 3 {
				mesh.Indices = append(mesh.Indices, p.indices[i], p.indices[i+2], p.indices[i+1])
			}
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	hasTangents := false
	for _, v := range mesh.Vertices {
		hasTangents = hasTangents || v.Tangent.Len() > 0.001
	}
	if l.CalculateNormals {
		// Primitives without NORMAL get smooth normals; the rest keep theirs.
		mesh.FillMissingNormals()
	}
	if l.CalculateTangents && !hasTangents {
		mesh.CalculateTangents()
	}

	if l.LoadImages {
		mesh.Materials = loadMaterials(doc, filepath.Dir(path))
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// stripToList expands a counter-clockwise strip into a clockwise list,
// dropping degenerate triangles.
func stripToList(strip []int) []int {
	out := make([]int, 0, max(len(strip)-2, 0)*3)
	for i := 0; i+2 < len(strip); i++ {
		a, b, c := strip[i], strip[i+1], strip[i+2]
		if i%2 == 1 {
			b, c = c, b
		}
		if a == b || b == c || a == c {
			continue
		}
		out = append(out, a, c, b)
	}
	return out
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) ([]primitive, error) {
	var prims []primitive

	for _, prim := range m.Primitives {
		strip := prim.Mode == gltf.PrimitiveTriangleStrip
		if prim.Mode != gltf.PrimitiveTriangles && !strip {
			// Skip lines, points and fans
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readPositions(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readNormals(doc, idx); err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
		}

		var tangents [][4]float32
		if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
			if tangents, err = readTangents(doc, idx); err != nil {
				return nil, fmt.Errorf("read tangents: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readTextureCoords(doc, idx); err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
		}

		var colors []math3d.RGB
		if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
			if colors, err = readColors(doc, idx); err != nil {
				return nil, fmt.Errorf("read colors: %w", err)
			}
		}

		baseVertex := len(mesh.Vertices)

		for i := range positions {
			v := Vertex{
				Position: positions[i],
				Color:    math3d.Gray(1),
			}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(tangents) {
				t := tangents[i]
				v.Tangent = math3d.V3(float64(t[0]), float64(t[1]), float64(t[2]))
			}
			if i < len(uvs) {
				// glTF already puts (0,0) at the top-left texel
				v.UV = uvs[i]
			}
			if i < len(colors) {
				v.Color = colors[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, vertices are consumed in order
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}
		for i := range indices {
			indices[i] += baseVertex
		}

		prims = append(prims, primitive{indices: indices, strip: strip})
	}

	return prims, nil
}

// accessor returns accessor i, or an error when the index is out of range.
func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d of %d: %w", i, len(doc.Accessors), ErrIndexOutOfRange)
	}
	return doc.Accessors[i], nil
}

// The readers below go through modeler, which honors byte strides and
// converts normalized integer components to floats.

func readPositions(doc *gltf.Document, i int) ([]math3d.Vec3, error) {
	acr, err := accessor(doc, i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	return toVec3(data), nil
}

func readNormals(doc *gltf.Document, i int) ([]math3d.Vec3, error) {
	acr, err := accessor(doc, i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadNormal(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	return toVec3(data), nil
}

func toVec3(data [][3]float32) []math3d.Vec3 {
	out := make([]math3d.Vec3, len(data))
	for i, v := range data {
		out[i] = math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return out
}

// readTangents returns XYZW tangents; W holds the bitangent sign.
func readTangents(doc *gltf.Document, i int) ([][4]float32, error) {
	acr, err := accessor(doc, i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadTangent(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	return data, nil
}

// readTextureCoords accepts float, normalized ubyte and normalized ushort UVs.
func readTextureCoords(doc *gltf.Document, i int) ([]math3d.Vec2, error) {
	acr, err := accessor(doc, i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadTextureCoord(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	out := make([]math3d.Vec2, len(data))
	for j, v := range data {
		out[j] = math3d.V2(float64(v[0]), float64(v[1]))
	}
	return out, nil
}

// readColors reads COLOR_0 in any of its RGB or RGBA encodings. Alpha is
// dropped.
func readColors(doc *gltf.Document, i int) ([]math3d.RGB, error) {
	acr, err := accessor(doc, i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadColor64(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	out := make([]math3d.RGB, len(data))
	for j, c := range data {
		out[j] = math3d.RGB{
			R: float64(c[0]) / 65535,
			G: float64(c[1]) / 65535,
			B: float64(c[2]) / 65535,
		}
	}
	return out, nil
}

// readIndices reads ubyte, ushort or uint indices.
func readIndices(doc *gltf.Document, i int) ([]int, error) {
	acr, err := accessor(doc, i)
	if err != nil {
		return nil, err
	}
	if acr.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", acr.Type)
	}
	data, err := modeler.ReadIndices(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	out := make([]int, len(data))
	for j, idx := range data {
		out[j] = int(idx)
	}
	return out, nil
}

// loadMaterials converts glTF PBR materials, decoding base color and normal
// textures when they are embedded or sit next to the model file. Images that
// fail to decode are left nil.
func loadMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, 0, len(doc.Materials))
	for _, m := range doc.Materials {
		mat := Material{
			Name:      m.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Metallic:  1,
			Roughness: 1,
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				mat.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = *pbr.RoughnessFactor
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseMap = textureImage(doc, pbr.BaseColorTexture.Index, dir)
			}
		}
		if m.NormalTexture != nil && m.NormalTexture.Index != nil {
			mat.NormalMap = textureImage(doc, *m.NormalTexture.Index, dir)
		}
		materials = append(materials, mat)
	}
	return materials
}

// textureImage decodes the image behind texture index i.
func textureImage(doc *gltf.Document, i int, dir string) image.Image {
	if i < 0 || i >= len(doc.Textures) || doc.Textures[i].Source == nil {
		return nil
	}
	src := *doc.Textures[i].Source
	if src < 0 || src >= len(doc.Images) {
		return nil
	}
	img := doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		b, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
		data = b
	default:
		return nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}
