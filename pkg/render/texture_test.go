package render

import (
	"image"
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// quadrantTexture is a 2x2 texture: red, green on top, blue, white below.
func quadrantTexture() *Texture {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, ColorRed)
	tex.SetPixel(1, 0, ColorGreen)
	tex.SetPixel(0, 1, ColorBlue)
	tex.SetPixel(1, 1, ColorWhite)
	return tex
}

func TestTextureSampleNearest(t *testing.T) {
	tests := []struct {
		name string
		wrap WrapMode
		u, v float64
		want Color
	}{
		{"top-left origin", WrapRepeat, 0.25, 0.25, ColorRed},
		{"top-right", WrapRepeat, 0.75, 0.25, ColorGreen},
		{"bottom-left", WrapRepeat, 0.25, 0.75, ColorBlue},
		{"bottom-right", WrapRepeat, 0.75, 0.75, ColorWhite},
		{"repeat past one", WrapRepeat, 1.25, 0.25, ColorRed},
		{"repeat negative", WrapRepeat, -0.25, 0.25, ColorGreen},
		{"clamp past one", WrapClamp, 1.5, 0.25, ColorGreen},
		{"clamp negative", WrapClamp, 0.25, -3, ColorRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := quadrantTexture()
			tex.WrapU, tex.WrapV = tt.wrap, tt.wrap
			if got := tex.Sample(tt.u, tt.v); got != tt.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	tex := quadrantTexture()
	tex.FilterMode = FilterBilinear

	got := tex.Sample(0.5, 0.5)
	want := Color{R: 127, G: 127, B: 127, A: 255}
	if got != want {
		t.Errorf("bilinear center = %v, want %v", got, want)
	}
}

func TestTextureEmpty(t *testing.T) {
	tex := NewTexture(0, 0)
	if got := tex.Sample(0.5, 0.5); got != (Color{}) {
		t.Errorf("empty texture sample = %v, want zero", got)
	}
}

func TestTextureSampleRGB(t *testing.T) {
	got := quadrantTexture().SampleRGB(math3d.V2(0.1, 0.1))
	if got != (math3d.RGB{R: 1}) {
		t.Errorf("SampleRGB = %v, want red", got)
	}
}

func TestTextureFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, ColorBlue)

	tex := TextureFromImage(img)
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(2, 1); got != ColorBlue {
		t.Errorf("pixel (2,1) = %v, want blue", got)
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorBlack, ColorWhite)
	if tex.GetPixel(0, 0) != ColorBlack || tex.GetPixel(2, 0) != ColorWhite || tex.GetPixel(2, 2) != ColorBlack {
		t.Error("checker pattern is wrong")
	}
}

func TestLoadTextureMissing(t *testing.T) {
	if _, err := LoadTexture("/nonexistent/texture.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSolidColor(t *testing.T) {
	c := SolidColor{R: 0.1, G: 0.2, B: 0.3}
	for _, uv := range []math3d.Vec2{math3d.V2(0, 0), math3d.V2(0.7, 0.2), math3d.V2(-4, 9)} {
		if got := c.SampleRGB(uv); got != math3d.RGB(c) {
			t.Errorf("SampleRGB(%v) = %v, want %v", uv, got, c)
		}
	}
}

func TestMaterialFromModel(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		mat := MaterialFromModel(nil)
		if mat.Diffuse == nil || mat.Normal == nil || mat.Gloss == nil || mat.Specular == nil {
			t.Fatal("material has nil samplers")
		}
		if !mat.UseVertexColor {
			t.Error("loaded materials should use vertex colors")
		}
	})

	t.Run("base color factor", func(t *testing.T) {
		mat := MaterialFromModel(&models.Material{
			BaseColor: [4]float64{0.2, 0.4, 0.6, 1},
			Roughness: 1,
		})
		uv := math3d.V2(0.5, 0.5)
		if got := mat.Diffuse.SampleRGB(uv); got != (math3d.RGB{R: 0.2, G: 0.4, B: 0.6}) {
			t.Errorf("diffuse = %v", got)
		}
		if got := mat.Specular.SampleRGB(uv); got != (math3d.RGB{}) {
			t.Errorf("fully rough specular = %v, want black", got)
		}
		if got := mat.Gloss.SampleRGB(uv).R; math.Abs(got-0.04) > 1e-12 {
			t.Errorf("fully rough gloss = %v, want 0.04", got)
		}
		if got := mat.Normal.SampleRGB(uv); got != math3d.RGB(FlatNormal) {
			t.Errorf("normal = %v, want flat", got)
		}
	})

	t.Run("textures", func(t *testing.T) {
		base := image.NewRGBA(image.Rect(0, 0, 1, 1))
		base.SetRGBA(0, 0, ColorRed)
		normal := image.NewRGBA(image.Rect(0, 0, 1, 1))
		normal.SetRGBA(0, 0, RGB(255, 128, 128))

		mat := MaterialFromModel(&models.Material{
			BaseColor: [4]float64{1, 1, 1, 1},
			BaseMap:   base,
			NormalMap: normal,
		})
		uv := math3d.V2(0.5, 0.5)
		if got := mat.Diffuse.SampleRGB(uv); got != (math3d.RGB{R: 1}) {
			t.Errorf("diffuse = %v, want red", got)
		}
		if got := mat.Normal.SampleRGB(uv); got.R != 1 {
			t.Errorf("normal = %v, want red channel 1", got)
		}
	})
}
