package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/taigrr/prism/pkg/render"
)

// HUD renders an overlay with model info, frame stats and toggles.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, view *ViewState, stats render.FrameStats) {
	const (
		reset    = "\x1b[0m"
		bold     = "\x1b[1m"
		dim      = "\x1b[2m"
		bgBlack  = "\x1b[40m"
		fgWhite  = "\x1b[97m"
		fgGreen  = "\x1b[92m"
		fgYellow = "\x1b[93m"
		fgCyan   = "\x1b[96m"
	)

	moveTo := func(row, col int) string {
		return ansi.CursorPosition(col, row)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + ansi.EraseEntireLine)
	fmt.Print(moveTo(height, 1) + ansi.EraseEntireLine)

	if view.Status != "" && time.Now().Before(view.StatusUntil) {
		msg := fmt.Sprintf("%s%s%s %s %s", bgBlack, bold, fgYellow, view.Status, reset)
		fmt.Print(moveTo(height, max((width-len(view.Status))/2, 1)) + msg)
	}

	if !view.ShowHUD {
		return
	}

	// Top left: FPS
	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	// Top middle: filename
	titleStr := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset)
	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + titleStr)

	// Top right: drawn / total triangles
	polyStr := fmt.Sprintf("%s%s%s %d/%d tris %s", bgBlack, fgCyan, bold, stats.Drawn, h.polyCount, reset)
	polyCol := max(width-20, 1)
	fmt.Print(moveTo(1, polyCol) + polyStr)

	if view.Status != "" && time.Now().Before(view.StatusUntil) {
		return
	}

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modeStr := fmt.Sprintf("%s%s %s  %s Normal map  %s Depth  %s Rotate %s",
		bgBlack, fgWhite, view.Shading.Mode,
		check(view.Shading.NormalMapping), check(view.ShowDepth), check(view.Rotating), reset)
	fmt.Print(moveTo(height, 1) + modeStr)

	hint := fmt.Sprintf("%s%s%s M N Z R P %s", bgBlack, dim, fgYellow, reset)
	fmt.Print(moveTo(height, max(width-12, 1)) + hint)
}
