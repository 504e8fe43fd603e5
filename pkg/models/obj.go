package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/prism/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f, filepath.Base(path))
}

// objKey identifies a unique position/uv/normal combination in a face.
type objKey struct {
	v, vt, vn int
}

// ParseOBJ reads OBJ geometry (v, vt, vn and f records) into a triangle
// list. Polygons are fan-triangulated, texture V is flipped so (0,0) is the
// top-left texel, and the counter-clockwise OBJ winding is reversed to the
// clockwise screen winding the rasterizer expects. Vertices without a normal
// get a smooth one; tangents are always computed.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
	)

	mesh := NewMesh(name)
	seen := make(map[objKey]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(p[0], p[1], p[2]))
		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, math3d.V2(p[0], 1-p[1]))
		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(p[0], p[1], p[2]))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				key, err := parseFaceRef(ref, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, ok := seen[key]
				if !ok {
					v := Vertex{Position: positions[key.v], Color: math3d.Gray(1)}
					if key.vt >= 0 {
						v.UV = uvs[key.vt]
					}
					if key.vn >= 0 {
						v.Normal = normals[key.vn]
					}
					idx = len(mesh.Vertices)
					mesh.Vertices = append(mesh.Vertices, v)
					seen[key] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i+1], corners[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if len(mesh.Indices) == 0 {
		return nil, ErrNoGeometry
	}

	// Faces without vn get smooth normals; the rest keep the file's.
	mesh.FillMissingNormals()
	mesh.CalculateTangents()
	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", fields[i], err)
		}
		out[i] = f
	}
	return out, nil
}

// parseFaceRef parses "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// indices, -1 marking an absent component. Negative OBJ indices are relative
// to the end of the list read so far.
func parseFaceRef(ref string, nv, nvt, nvn int) (objKey, error) {
	key := objKey{-1, -1, -1}
	parts := strings.Split(ref, "/")

	resolve := func(s string, count int) (int, error) {
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("face index %q: %w", s, err)
		}
		if i < 0 {
			i += count
		} else {
			i--
		}
		if i < 0 || i >= count {
			return 0, fmt.Errorf("face index %q with %d entries: %w", s, count, ErrIndexOutOfRange)
		}
		return i, nil
	}

	var err error
	if key.v, err = resolve(parts[0], nv); err != nil {
		return key, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolve(parts[1], nvt); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolve(parts[2], nvn); err != nil {
			return key, err
		}
	}
	return key, nil
}
