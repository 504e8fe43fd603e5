// Package render implements the software rasterization pipeline for prism:
// vertex transformation, triangle setup and coverage, perspective-correct
// interpolation, depth testing and per-pixel shading.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// ErrEmptyFramebuffer is returned when saving a framebuffer with no pixels.
var ErrEmptyFramebuffer = errors.New("framebuffer has no pixels")

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color from 8-bit channels.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Framebuffer is a row-major grid of packed pixels. Pixel (x, y) lives at
// index x + y*Width.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.save(path, png.Encode)
}

// SaveBMP saves the framebuffer as an uncompressed bitmap. Rows are written
// in the same top-to-bottom order as Pixels.
func (fb *Framebuffer) SaveBMP(path string) error {
	return fb.save(path, bmp.Encode)
}

func (fb *Framebuffer) save(path string, encode func(w io.Writer, m image.Image) error) error {
	if fb.Width == 0 || fb.Height == 0 {
		return ErrEmptyFramebuffer
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	Logger().Info("snapshot saved", "path", path, "width", fb.Width, "height", fb.Height)
	return nil
}

// SwapChain double-buffers frames: the renderer draws into Back while Front
// holds the last completed frame for presentation.
type SwapChain struct {
	front *Framebuffer
	back  *Framebuffer
}

// NewSwapChain allocates two framebuffers of the given size.
func NewSwapChain(width, height int) *SwapChain {
	return &SwapChain{
		front: NewFramebuffer(width, height),
		back:  NewFramebuffer(width, height),
	}
}

// Front returns the buffer holding the last presented frame.
func (s *SwapChain) Front() *Framebuffer { return s.front }

// Back returns the buffer being drawn.
func (s *SwapChain) Back() *Framebuffer { return s.back }

// Swap exchanges the front and back buffers.
func (s *SwapChain) Swap() {
	s.front, s.back = s.back, s.front
}
