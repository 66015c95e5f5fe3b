package g3d

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/wgpu/hal/noop"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ValidateShaders = false
	r, err := New(&noop.Device{}, &noop.Queue{}, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func triangle() *geometry.Mesh {
	vals := []float32{
		-1, -1, 0, 0, 0, 1,
		1, -1, 0, 0, 0, 1,
		0, 1, 0, 0, 0, 1,
	}
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	m := geometry.NewMesh()
	m.SetStride(24)
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticPosition})
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticNormal, Offset: 12})
	m.SetVertexData(data)
	return m
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleCount = 5
	if _, err := New(&noop.Device{}, &noop.Queue{}, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestRenderer_RenderFrame(t *testing.T) {
	r := newTestRenderer(t)
	g := scene.NewGraph()
	cam := g.Create(scene.NewPerspectiveCamera(60, 0.1, 100))
	g.SetPosition(cam, mgl32.Vec3{0, 0, 4})
	layer := r.NewLayer(g, cam)

	model := g.Create(&scene.Model{Mesh: triangle(), Materials: []*material.Material{material.NewPrincipled()}})
	light := g.Create(scene.NewLight(scene.DirectionalLight))
	for _, id := range []scene.NodeID{model, light} {
		if err := g.AddChild(layer, id); err != nil {
			t.Fatal(err)
		}
	}

	target, err := r.NewTextureTarget(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	for frame := 0; frame < 3; frame++ {
		fs, err := r.RenderFrame(context.Background(), g, render.LayerPass{Layer: layer, Target: target})
		if err != nil {
			t.Fatalf("frame %d: RenderFrame() error = %v", frame, err)
		}
		if fs.Draws != 1 || fs.Lights != 1 {
			t.Errorf("frame %d: stats = %+v", frame, fs)
		}
	}

	s := r.Stats()
	if s.Frames.Frames != 3 || s.Frames.Draws != 3 {
		t.Errorf("frame stats = %+v", s.Frames)
	}
	if s.Meshes != 1 {
		t.Errorf("meshes = %d, want 1", s.Meshes)
	}
	if s.Shaders.Builds != 1 {
		t.Errorf("shader builds = %d, want 1", s.Shaders.Builds)
	}
	if s.Context.PipelinesCreated != 1 {
		t.Errorf("pipelines created = %d, want 1", s.Context.PipelinesCreated)
	}
}

func TestRenderer_ReleaseLayer(t *testing.T) {
	r := newTestRenderer(t)
	g := scene.NewGraph()
	cam := g.Create(scene.NewPerspectiveCamera(60, 0.1, 100))
	g.SetPosition(cam, mgl32.Vec3{0, 0, 4})
	layer := r.NewLayer(g, cam)
	model := g.Create(&scene.Model{Mesh: triangle(), Materials: []*material.Material{material.NewUnlit()}})
	if err := g.AddChild(layer, model); err != nil {
		t.Fatal(err)
	}
	target, err := r.NewTextureTarget(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.RenderFrame(context.Background(), g, render.LayerPass{Layer: layer, Target: target}); err != nil {
		t.Fatal(err)
	}
	if n := r.Stats().Context.UniformSets.Len; n != 1 {
		t.Fatalf("uniform sets = %d, want 1", n)
	}
	if n := r.ReleaseLayer(layer); n != 1 {
		t.Errorf("ReleaseLayer() = %d, want 1", n)
	}
	if n := r.Stats().Context.UniformSets.Len; n != 0 {
		t.Errorf("uniform sets after release = %d, want 0", n)
	}
}

func TestRenderer_NewLayerClearColor(t *testing.T) {
	r := newTestRenderer(t)
	g := scene.NewGraph()
	layer := r.NewLayer(g, scene.NodeID{})
	l, ok := g.Node(layer).Payload().(*scene.Layer)
	if !ok {
		t.Fatal("NewLayer did not create a layer")
	}
	if l.ClearColor != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("clear color = %v", l.ClearColor)
	}
}

func TestRenderer_Close(t *testing.T) {
	r := newTestRenderer(t)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := r.RenderFrame(context.Background(), scene.NewGraph()); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderFrame after Close error = %v, want ErrClosed", err)
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	r := newTestRenderer(t)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "renderer closed") {
		t.Errorf("log output = %q, want it to mention the closed renderer", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}
