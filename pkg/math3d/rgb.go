package math3d

import (
	"image/color"
	"math"
)

// RGB is a linear floating point color. Channels are nominally in [0,1] but
// lighting math may push them above 1 until Clamp is applied.
type RGB struct {
	R, G, B float64
}

// Gray returns an RGB with all channels set to v.
func Gray(v float64) RGB {
	return RGB{v, v, v}
}

// RGBFromColor converts an 8-bit color to the [0,1] range. Alpha is dropped.
func RGBFromColor(c color.RGBA) RGB {
	const inv = 1.0 / 255
	return RGB{float64(c.R) * inv, float64(c.G) * inv, float64(c.B) * inv}
}

// Add returns the channel-wise sum.
func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the channel-wise product.
func (c RGB) Mul(o RGB) RGB {
	return RGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c RGB) Scale(s float64) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Clamp limits every channel to [0,1]. Values above 1 are cut off, not
// tone-mapped.
func (c RGB) Clamp() RGB {
	return RGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// RGBA converts the color to opaque 8-bit RGBA after clamping, rounding to
// the nearest level.
func (c RGB) RGBA() color.RGBA {
	c = c.Clamp()
	return color.RGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	// NaN collapses to 0 so a bad sample can't poison the buffer.
	if !(v > 0) {
		return 0
	}
	return math.Min(v, 1)
}
