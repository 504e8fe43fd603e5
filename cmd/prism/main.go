// prism - software rasterizer
// Renders OBJ and glTF models on the CPU, in the terminal or to a bitmap.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Q/E         - Move down/up
//	Arrows      - Turn the camera
//	M           - Cycle shading mode
//	N           - Toggle normal mapping
//	Z           - Toggle depth view
//	R           - Toggle model rotation
//	P           - Save a snapshot
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/schollz/progressbar/v3"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
)

var (
	diffusePath  = flag.String("diffuse", "", "Path to diffuse texture (PNG/JPG)")
	normalPath   = flag.String("normal", "", "Path to tangent-space normal map")
	glossPath    = flag.String("gloss", "", "Path to gloss map (red channel scales shininess)")
	specularPath = flag.String("specular", "", "Path to specular color map")
	targetFPS    = flag.Int("fps", 60, "Target FPS")
	bgColor      = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	modeName     = flag.String("mode", "combined", "Shading mode (observed-area, diffuse, specular, combined)")
	snapshotPath = flag.String("snapshot", "", "Render headless and save to this .bmp or .png file")
	frames       = flag.Int("frames", 1, "Frames to render before saving a headless snapshot")
	width        = flag.Int("width", 640, "Snapshot width in pixels")
	height       = flag.Int("height", 360, "Snapshot height in pixels")
	rotate       = flag.Bool("rotate", false, "Start with the model rotating")
	logPath      = flag.String("log", "", "Write interactive logs to this file")
	verbose      = flag.Bool("v", false, "Log per-frame statistics")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "prism - software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prism [options] [model.obj|model.glb|model.gltf]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model a textured quad is shown; \"grid\" selects a strip-built grid.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D     - Move camera\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Move down/up\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Turn camera\n")
		fmt.Fprintf(os.Stderr, "  M           - Cycle shading mode\n")
		fmt.Fprintf(os.Stderr, "  N           - Toggle normal mapping\n")
		fmt.Fprintf(os.Stderr, "  Z           - Toggle depth view\n")
		fmt.Fprintf(os.Stderr, "  R           - Toggle rotation\n")
		fmt.Fprintf(os.Stderr, "  P           - Save snapshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ViewState holds the toggles the keyboard controls (UI state, not library code)
type ViewState struct {
	Shading   render.ShadingConfig
	ShowDepth bool
	Rotating  bool
	Angle     float64 // Model rotation about Y in radians
	ShowHUD   bool

	Status      string // Transient message shown on the bottom row
	StatusUntil time.Time
}

// SetStatus shows msg on the HUD row for two seconds.
func (v *ViewState) SetStatus(msg string) {
	v.Status = msg
	v.StatusUntil = time.Now().Add(2 * time.Second)
}

// Advance spins the model by dt seconds when rotation is on.
func (v *ViewState) Advance(dt float64) {
	if v.Rotating {
		v.Angle = math.Mod(v.Angle+dt, 2*math.Pi)
	}
}

// scene is the loaded model ready to draw.
type scene struct {
	name   string
	object render.Object
}

// parseBackground reads an "R,G,B" triple of 0-255 components.
func parseBackground(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("invalid -bg %q: want R,G,B", s)
	}
	var c [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("invalid -bg %q: %w", s, err)
		}
		c[i] = uint8(n)
	}
	return render.RGB(c[0], c[1], c[2]), nil
}

func run(modelPath string) error {
	if *targetFPS <= 0 {
		return fmt.Errorf("invalid -fps %d: must be positive", *targetFPS)
	}
	bg, err := parseBackground(*bgColor)
	if err != nil {
		return err
	}

	mode, err := render.ParseShadingMode(*modeName)
	if err != nil {
		return err
	}

	view := &ViewState{
		Shading:  render.DefaultShadingConfig(),
		Rotating: *rotate,
	}
	view.Shading.Mode = mode

	if *snapshotPath != "" {
		setupLogger(os.Stderr)
		sc, err := loadScene(modelPath)
		if err != nil {
			return err
		}
		return renderSnapshot(sc, view, bg)
	}

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			return fmt.Errorf("create log: %w", err)
		}
		defer f.Close()
		setupLogger(f)
	}

	sc, err := loadScene(modelPath)
	if err != nil {
		return err
	}
	return runInteractive(sc, view, bg)
}

func setupLogger(w io.Writer) {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadScene loads the model and its material, then centers it on the origin
// scaled to fit a 2-unit cube.
func loadScene(modelPath string) (*scene, error) {
	var (
		mesh *models.Mesh
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(modelPath)); {
	case modelPath == "":
		mesh = models.NewQuad(2)
	case modelPath == "grid":
		mesh = models.NewGridStrip(2)
	case ext == ".glb" || ext == ".gltf":
		mesh, err = models.NewGLTFLoader().Load(modelPath)
	case ext == ".obj":
		mesh, err = models.LoadOBJ(modelPath)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .obj, .glb or .gltf)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	mat := render.MaterialFromModel(mesh.GetMaterial(0))
	for _, m := range []struct {
		path string
		dst  *render.Sampler
	}{
		{*diffusePath, &mat.Diffuse},
		{*normalPath, &mat.Normal},
		{*glossPath, &mat.Gloss},
		{*specularPath, &mat.Specular},
	} {
		if m.path == "" {
			continue
		}
		tex, err := render.LoadTexture(m.path)
		if err != nil {
			return nil, err
		}
		*m.dst = tex
	}

	// Center and scale model
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		scale := 2.0 / maxDim
		transform := math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(center.Scale(-1)))
		mesh.Transform(transform)
	}

	render.Logger().Info("model loaded",
		"name", mesh.Name,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"topology", mesh.Topology,
	)
	return &scene{name: mesh.Name, object: render.Object{Mesh: mesh, Material: mat}}, nil
}

func newCamera(aspect float64) *render.Camera {
	camera := render.NewCamera()
	camera.SetAspectRatio(aspect)
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)
	camera.SetPosition(math3d.V3(0, 0, 5))
	camera.LookAt(math3d.V3(0, 0, 0))
	return camera
}

func saveFramebuffer(fb *render.Framebuffer, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return fb.SavePNG(path)
	}
	return fb.SaveBMP(path)
}

// renderSnapshot renders the requested number of frames off screen, one
// frame interval apart, and saves the last one.
func renderSnapshot(sc *scene, view *ViewState, bg render.Color) error {
	opts := render.DefaultOptions(*width, *height)
	opts.Background = bg
	renderer := render.NewRenderer(opts)
	camera := newCamera(float64(*width) / float64(*height))

	n := max(*frames, 1)
	var bar *progressbar.ProgressBar
	if n > 1 {
		bar = progressbar.Default(int64(n), "rendering")
	}

	dt := 1 / float64(*targetFPS)
	for range n {
		sc.object.Mesh.World = math3d.RotateY(view.Angle)
		renderer.Render(camera, view.Shading, sc.object)
		renderer.Present()
		view.Advance(dt)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return saveFramebuffer(renderer.Front(), *snapshotPath)
}

func runInteractive(sc *scene, view *ViewState, bg render.Color) error {
	term := uv.DefaultTerminal()

	termWidth, termHeight, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(termWidth, termHeight)

	termRenderer := render.NewTerminalRenderer(term, termWidth, termHeight)
	fbWidth, fbHeight := termRenderer.FramebufferSize()

	opts := render.DefaultOptions(fbWidth, fbHeight)
	opts.Background = bg
	renderer := render.NewRenderer(opts)

	camera := newCamera(float64(fbWidth) / float64(fbHeight))
	controller := render.NewCameraController(camera, *targetFPS)

	hud := NewHUD(sc.name, sc.object.Mesh.TriangleCount())

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	var input render.Input
	snapshots := 0

	handle := func(ev any) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			termWidth, termHeight = ev.Width, ev.Height
			term.Erase()
			term.Resize(termWidth, termHeight)
			termRenderer = render.NewTerminalRenderer(term, termWidth, termHeight)
			fbWidth, fbHeight = termRenderer.FramebufferSize()
			renderer.Resize(fbWidth, fbHeight)
			camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				cancel()
			case ev.MatchString("w"):
				input.Forward = 1
			case ev.MatchString("s"):
				input.Forward = -1
			case ev.MatchString("a"):
				input.Right = -1
			case ev.MatchString("d"):
				input.Right = 1
			case ev.MatchString("e"):
				input.Up = 1
			case ev.MatchString("q"):
				input.Up = -1
			case ev.MatchString("left"):
				input.Yaw = 1
			case ev.MatchString("right"):
				input.Yaw = -1
			case ev.MatchString("up"):
				input.Pitch = 1
			case ev.MatchString("down"):
				input.Pitch = -1
			case ev.MatchString("m"):
				view.Shading.Mode = view.Shading.Mode.Next()
				view.SetStatus("mode: " + view.Shading.Mode.String())
			case ev.MatchString("n"):
				view.Shading.NormalMapping = !view.Shading.NormalMapping
				view.SetStatus(fmt.Sprintf("normal mapping: %v", view.Shading.NormalMapping))
			case ev.MatchString("z"):
				view.ShowDepth = !view.ShowDepth
				renderer.SetShowDepth(view.ShowDepth)
			case ev.MatchString("r"):
				view.Rotating = !view.Rotating
			case ev.MatchString("p"):
				snapshots++
				path := *snapshotPath
				if path == "" {
					path = fmt.Sprintf("prism-%03d.bmp", snapshots)
				}
				if err := saveFramebuffer(renderer.Front(), path); err != nil {
					view.SetStatus(err.Error())
				} else {
					view.SetStatus("saved " + path)
				}
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				view.ShowHUD = !view.ShowHUD
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w"), ev.MatchString("s"):
				input.Forward = 0
			case ev.MatchString("a"), ev.MatchString("d"):
				input.Right = 0
			case ev.MatchString("q"), ev.MatchString("e"):
				input.Up = 0
			case ev.MatchString("left"), ev.MatchString("right"):
				input.Yaw = 0
			case ev.MatchString("up"), ev.MatchString("down"):
				input.Pitch = 0
			}
		}
	}

	events := term.Events()
	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	for {
		// Drain pending input before drawing the frame
	drain:
		for {
			select {
			case <-ctx.Done():
				cleanup()
				return nil
			case ev, ok := <-events:
				if !ok {
					cancel()
					break drain
				}
				handle(ev)
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		if dt > 0.1 {
			dt = 0.1
		}

		controller.Update(dt, input)

		// Key release events are unreliable, so held intents fade out.
		input.Forward *= 0.9
		input.Right *= 0.9
		input.Up *= 0.9
		input.Yaw *= 0.9
		input.Pitch *= 0.9

		view.Advance(dt)
		sc.object.Mesh.World = math3d.RotateY(view.Angle)

		stats := renderer.Render(camera, view.Shading, sc.object)
		termRenderer.Render(renderer.Present())
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(termWidth, termHeight, view, stats)

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
