package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Lambert returns the Lambertian diffuse BRDF albedo*kd/π.
func Lambert(albedo math3d.RGB, kd float64) math3d.RGB {
	return albedo.Scale(kd / math.Pi)
}

// Phong returns the Phong specular BRDF
// ks * specColor * max(dot(reflect(l, n), v), 0)^exponent.
// l is the direction light travels (toward the surface), n the unit surface
// normal and v the unit vector from the surface toward the viewer.
func Phong(specColor math3d.RGB, ks, exponent float64, l, n, v math3d.Vec3) math3d.RGB {
	cos := max(l.Reflect(n).Dot(v), 0)
	return specColor.Scale(ks * math.Pow(cos, exponent))
}

// ObservedArea returns the cosine between the surface normal and the
// direction toward the light, clamped at zero.
func ObservedArea(n, lightDir math3d.Vec3) float64 {
	return max(n.Dot(lightDir.Negate()), 0)
}
