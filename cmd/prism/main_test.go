package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"golang.org/x/image/bmp"
)

func TestLoadSceneBuiltins(t *testing.T) {
	tests := []struct {
		path      string
		topology  models.Topology
		triangles int
	}{
		{"", models.TriangleList, 2},
		{"grid", models.TriangleStrip, 12},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			sc, err := loadScene(tt.path)
			if err != nil {
				t.Fatalf("loadScene: %v", err)
			}
			mesh := sc.object.Mesh
			if mesh.Topology != tt.topology || mesh.TriangleCount() != tt.triangles {
				t.Errorf("got %v with %d triangles, want %v with %d", mesh.Topology, mesh.TriangleCount(), tt.topology, tt.triangles)
			}
			if size := mesh.Size(); math.Abs(math.Max(size.X, size.Y)-2) > 1e-9 {
				t.Errorf("model size = %v, want largest extent 2", size)
			}
			if sc.object.Material == nil {
				t.Error("scene has no material")
			}
		})
	}
}

func TestLoadSceneErrors(t *testing.T) {
	for _, path := range []string{"model.fbx", "/nonexistent/model.obj"} {
		if _, err := loadScene(path); err == nil {
			t.Errorf("loadScene(%q) succeeded, want error", path)
		}
	}
}

func TestViewStateAdvance(t *testing.T) {
	v := &ViewState{}
	v.Advance(1)
	if v.Angle != 0 {
		t.Errorf("angle = %v while not rotating", v.Angle)
	}

	v.Rotating = true
	v.Advance(0.5)
	v.Advance(0.25)
	if math.Abs(v.Angle-0.75) > 1e-12 {
		t.Errorf("angle = %v, want 0.75 rad after 0.75 s", v.Angle)
	}
}

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Color
		wantErr bool
	}{
		{in: "30,30,40", want: render.RGB(30, 30, 40)},
		{in: " 0, 128 ,255", want: render.RGB(0, 128, 255)},
		{in: "30,30", wantErr: true},
		{in: "30,30,40,50", wantErr: true},
		{in: "red,0,0", wantErr: true},
		{in: "256,0,0", wantErr: true},
		{in: "-1,0,0", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBackground(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseBackground(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBackground(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseBackground(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		fps  int
		bg   string
	}{
		{name: "zero fps", fps: 0, bg: "30,30,40"},
		{name: "negative fps", fps: -5, bg: "30,30,40"},
		{name: "malformed bg", fps: 60, bg: "30;30;40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*targetFPS, *bgColor = tt.fps, tt.bg
			t.Cleanup(func() { *targetFPS, *bgColor = 60, "30,30,40" })
			if err := run(""); err == nil {
				t.Fatal("run succeeded, want a flag error")
			}
		})
	}
}

func TestRenderSnapshot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.bmp")
	*snapshotPath, *width, *height, *frames = out, 48, 32, 3
	t.Cleanup(func() { *snapshotPath, *width, *height, *frames = "", 640, 360, 1 })

	sc, err := loadScene("")
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	view := &ViewState{Shading: render.DefaultShadingConfig(), Rotating: true}
	if err := renderSnapshot(sc, view, render.RGB(0, 0, 0)); err != nil {
		t.Fatalf("renderSnapshot: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 32 {
		t.Errorf("snapshot is %dx%d, want 48x32", b.Dx(), b.Dy())
	}
	if r, g, b, _ := img.At(24, 16).RGBA(); r == 0 && g == 0 && b == 0 {
		t.Error("snapshot center is background, want the quad")
	}
}
