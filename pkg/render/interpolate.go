package render

// Attribute is any per-vertex quantity that can be blended across a
// triangle: colors, texture coordinates and direction vectors.
type Attribute[T any] interface {
	Add(T) T
	Scale(float64) T
}

// Interpolate blends three attributes linearly with barycentric weights.
// This is only correct for quantities that are affine in screen space.
func Interpolate[T Attribute[T]](attrs [3]T, weights [3]float64) T {
	return attrs[0].Scale(weights[0]).
		Add(attrs[1].Scale(weights[1])).
		Add(attrs[2].Scale(weights[2]))
}

// PerspectiveInterpolate blends three attributes with perspective
// correction: each attribute is divided by its vertex's view depth, the
// quotients are blended, and the sum is scaled back by the interpolated view
// depth w (see InterpolateReciprocal).
func PerspectiveInterpolate[T Attribute[T]](attrs [3]T, weights, invW [3]float64, w float64) T {
	return attrs[0].Scale(weights[0] * invW[0]).
		Add(attrs[1].Scale(weights[1] * invW[1])).
		Add(attrs[2].Scale(weights[2] * invW[2])).
		Scale(w)
}

// InterpolateReciprocal returns 1 / Σ weights[i]/values[i]: the value of a
// quantity whose reciprocal varies linearly across the triangle.
func InterpolateReciprocal(weights, values [3]float64) float64 {
	return 1 / (weights[0]/values[0] + weights[1]/values[1] + weights[2]/values[2])
}
