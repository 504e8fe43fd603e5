package render

import (
	"fmt"
	"strings"

	"github.com/taigrr/prism/pkg/math3d"
)

// ShadingMode selects what the pixel shader outputs.
type ShadingMode int

const (
	ModeObservedArea ShadingMode = iota // Lambertian cosine term only
	ModeDiffuse                         // Lambert diffuse lit by the light
	ModeSpecular                        // Phong specular
	ModeCombined                        // Diffuse, specular and ambient
	numShadingModes
)

var shadingModeNames = [numShadingModes]string{
	ModeObservedArea: "observed-area",
	ModeDiffuse:      "diffuse",
	ModeSpecular:     "specular",
	ModeCombined:     "combined",
}

// String returns the mode name accepted by ParseShadingMode.
func (m ShadingMode) String() string {
	if m < 0 || m >= numShadingModes {
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
	return shadingModeNames[m]
}

// Next returns the following mode, wrapping after ModeCombined.
func (m ShadingMode) Next() ShadingMode {
	return (m + 1) % numShadingModes
}

// ParseShadingMode parses a mode name as returned by String.
func ParseShadingMode(s string) (ShadingMode, error) {
	for i, name := range shadingModeNames {
		if strings.EqualFold(s, name) {
			return ShadingMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading mode %q (want one of %s)", s, strings.Join(shadingModeNames[:], ", "))
}

// Light is a single directional light.
type Light struct {
	Direction math3d.Vec3 // Unit vector, the direction light travels
	Intensity float64
}

// ShadingConfig is the per-frame input of the pixel shader.
type ShadingConfig struct {
	Mode          ShadingMode
	NormalMapping bool
	Light         Light
	Shininess     float64 // Scales the gloss sample into a Phong exponent
	Ambient       math3d.RGB
}

// DefaultShadingConfig returns the combined mode with a light shining down
// and away from a camera on +Z.
func DefaultShadingConfig() ShadingConfig {
	return ShadingConfig{
		Mode:          ModeCombined,
		NormalMapping: true,
		Light: Light{
			Direction: math3d.V3(0.577, -0.577, -0.577).Normalize(),
			Intensity: 7,
		},
		Shininess: 25,
		Ambient:   math3d.Gray(0.025),
	}
}

// Shade returns the unclamped radiance of fragment f lit under cfg.
func Shade(cfg *ShadingConfig, mat *Material, f *Fragment) math3d.RGB {
	n := f.Normal.Normalize()
	if cfg.NormalMapping && mat.Normal != nil {
		n = perturbNormal(n, f.Tangent, mat.Normal.SampleRGB(f.UV))
	}

	l := cfg.Light.Direction
	observed := ObservedArea(n, l)

	switch cfg.Mode {
	case ModeObservedArea:
		return math3d.Gray(observed)
	case ModeDiffuse:
		return diffuse(mat, f).Scale(cfg.Light.Intensity * observed)
	case ModeSpecular:
		return specular(cfg, mat, f, n).Scale(observed)
	default:
		return diffuse(mat, f).Scale(cfg.Light.Intensity).
			Add(specular(cfg, mat, f, n)).
			Add(cfg.Ambient).
			Scale(observed)
	}
}

func diffuse(mat *Material, f *Fragment) math3d.RGB {
	albedo := mat.Diffuse.SampleRGB(f.UV)
	if mat.UseVertexColor {
		albedo = albedo.Mul(f.Color)
	}
	return Lambert(albedo, mat.Kd)
}

func specular(cfg *ShadingConfig, mat *Material, f *Fragment, n math3d.Vec3) math3d.RGB {
	exponent := mat.Gloss.SampleRGB(f.UV).R * cfg.Shininess
	toViewer := f.ViewDir.Normalize().Negate()
	return Phong(mat.Specular.SampleRGB(f.UV), mat.Ks, exponent, cfg.Light.Direction, n, toViewer)
}

// perturbNormal rotates a tangent-space normal map sample into world space
// using the basis (tangent, tangent x normal, normal).
func perturbNormal(n, tangent math3d.Vec3, sample math3d.RGB) math3d.Vec3 {
	t := tangent.Normalize()
	b := t.Cross(n)
	ts := math3d.V3(2*sample.R-1, 2*sample.G-1, 2*sample.B-1)
	return t.Scale(ts.X).Add(b.Scale(ts.Y)).Add(n.Scale(ts.Z)).Normalize()
}
