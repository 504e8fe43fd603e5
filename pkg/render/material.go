package render

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// FlatNormal is the tangent-space normal map color of an unperturbed surface.
var FlatNormal = SolidColor{R: 0.5, G: 0.5, B: 1}

// Material holds the samplers and reflectance coefficients the pixel shader
// reads. Gloss is read from the red channel and scaled by the shininess of
// the shading configuration to give the Phong exponent.
type Material struct {
	Diffuse  Sampler
	Normal   Sampler
	Gloss    Sampler
	Specular Sampler
	Kd       float64
	Ks       float64

	// UseVertexColor multiplies the diffuse sample by the interpolated
	// vertex color.
	UseVertexColor bool
}

// DefaultMaterial returns a white material with a flat normal map.
func DefaultMaterial() *Material {
	return &Material{
		Diffuse:  SolidColor(math3d.Gray(1)),
		Normal:   FlatNormal,
		Gloss:    SolidColor(math3d.Gray(1)),
		Specular: SolidColor(math3d.Gray(1)),
		Kd:       1,
		Ks:       1,
	}
}

// MaterialFromModel converts a loaded model material. Base color and normal
// textures become samplers; without a texture the base color factor is used.
// Rough surfaces get a dimmer, wider highlight.
func MaterialFromModel(m *models.Material) *Material {
	mat := DefaultMaterial()
	mat.UseVertexColor = true
	if m == nil {
		return mat
	}

	if m.BaseMap != nil {
		mat.Diffuse = TextureFromImage(m.BaseMap)
	} else {
		mat.Diffuse = SolidColor{R: m.BaseColor[0], G: m.BaseColor[1], B: m.BaseColor[2]}
	}
	if m.NormalMap != nil {
		mat.Normal = TextureFromImage(m.NormalMap)
	}

	smooth := 1 - m.Roughness
	mat.Gloss = SolidColor(math3d.Gray(max(smooth, 0.04)))
	mat.Specular = SolidColor(math3d.Gray(smooth))
	return mat
}
