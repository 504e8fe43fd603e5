package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Display is a terminal screen that can flush its cells.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalRenderer presents framebuffers on a terminal using half-block
// characters, so each cell shows two vertically stacked pixels.
type TerminalRenderer struct {
	scr    Display
	width  int
	height int
}

// NewTerminalRenderer creates a presenter for a width x height cell screen.
func NewTerminalRenderer(scr Display, width, height int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, width: width, height: height}
}

// FramebufferSize returns the pixel size that fills the screen.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render draws fb onto the screen cells.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.width, t.height))
}

// Flush writes pending cell changes to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// ▀ (upper half block) with fg=top pixel and bg=bottom pixel
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, topY)),
					Bg: rgbaToColor(fb.GetPixel(col, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
