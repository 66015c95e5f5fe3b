// Command g3ddemo renders a lit, textured, spinning cube on the headless
// noop backend and prints renderer statistics.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

func main() {
	var (
		width   = flag.Int("width", 800, "target width")
		height  = flag.Int("height", 600, "target height")
		frames  = flag.Int("frames", 60, "frames to render")
		config  = flag.String("config", "", "TOML config file")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := g3d.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = g3d.LoadConfig(*config); err != nil {
			log.Fatal(err)
		}
	}

	r, err := g3d.New(&noop.Device{}, &noop.Queue{}, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	target, err := r.NewTextureTarget(*width, *height)
	if err != nil {
		log.Fatal(err)
	}
	defer target.Destroy()

	g := scene.NewGraph()
	layer, cube := buildScene(r, g)

	ctx := context.Background()
	if _, err := r.Prewarm(ctx, g, layer, 0); err != nil {
		log.Fatal(err)
	}
	var last render.FrameStats
	for i := 0; i < *frames; i++ {
		g.SetEulerRotation(cube, mgl32.Vec3{float32(i) * 0.5, float32(i), 0})
		last, err = r.RenderFrame(ctx, g, render.LayerPass{Layer: layer, Target: target})
		if err != nil {
			log.Fatalf("frame %d: %v", i, err)
		}
	}

	s := r.Stats()
	fmt.Printf("last frame: %d renderables, %d draws, %d skipped, %d lights\n",
		last.Renderables, last.Draws, last.Skipped, last.Lights)
	fmt.Printf("frames:     %d rendered, %d draws, %d abandoned\n",
		s.Frames.Frames, s.Frames.Draws, s.Frames.Abandoned)
	fmt.Printf("shaders:    %d built, %d failed, hit rate %.0f%%\n",
		s.Shaders.Builds, s.Shaders.Failures, s.Shaders.Entries.HitRate*100)
	fmt.Printf("geometry:   %d meshes, %d textures\n", s.Meshes, s.Textures)
	fmt.Printf("rhi:        %s\n", s.Context)
}

// buildScene adds a camera, a layer, three lights and the cube. It
// returns the layer and the cube nodes.
func buildScene(r *g3d.Renderer, g *scene.Graph) (layer, cube scene.NodeID) {
	cam := g.Create(scene.NewPerspectiveCamera(45, 0.1, 100))
	g.SetPosition(cam, mgl32.Vec3{3, 2, 5})
	g.LookAt(cam, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	layer = r.NewLayer(g, cam)
	if l, ok := g.Node(layer).Payload().(*scene.Layer); ok {
		l.AmbientColor = mgl32.Vec3{0.05, 0.05, 0.08}
	}

	mat := material.NewPrincipled()
	mat.SetRoughness(0.4)
	mat.SetTexture(material.BaseColorMap, &material.Texture{
		Data: geometry.TextureDataFromImage(checker(64, 8)),
		Sampler: rhi.SamplerDescription{
			MinFilter: gputypes.FilterModeLinear,
			MagFilter: gputypes.FilterModeLinear,
			AddressU:  gputypes.AddressModeRepeat,
			AddressV:  gputypes.AddressModeRepeat,
			AddressW:  gputypes.AddressModeRepeat,
		},
	})
	cube = g.Create(&scene.Model{Mesh: cubeMesh(), Materials: []*material.Material{mat}, ReceivesShadows: true})

	key := g.Create(scene.NewLight(scene.DirectionalLight))
	g.SetEulerRotation(key, mgl32.Vec3{-45, 30, 0})

	fill := scene.NewLight(scene.PointLight)
	fill.Color = mgl32.Vec3{0.6, 0.7, 1}
	fill.QuadraticFade = 0.05
	fillID := g.Create(fill)
	g.SetPosition(fillID, mgl32.Vec3{-3, 1, 2})

	panel := scene.NewLight(scene.AreaLight)
	panel.Width, panel.Height = 2, 1
	panelID := g.Create(panel)
	g.SetPosition(panelID, mgl32.Vec3{0, 3, 0})
	g.SetEulerRotation(panelID, mgl32.Vec3{-90, 0, 0})

	for _, id := range []scene.NodeID{cube, key, fillID, panelID} {
		if err := g.AddChild(layer, id); err != nil {
			log.Fatal(err)
		}
	}
	return layer, cube
}

// checker returns a size×size checkerboard with cells of the given size.
func checker(size, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 230, G: 220, B: 200, A: 255}
	dark := color.RGBA{R: 60, G: 90, B: 140, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := dark
			if (x/cell+y/cell)%2 == 0 {
				c = light
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// cubeMesh returns a unit cube with per-face normals and UVs: stride 32,
// position at 0, normal at 12, uv0 at 24, 16-bit indices.
func cubeMesh() *geometry.Mesh {
	faces := []struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]byte, 0, 24*32)
	indices := make([]byte, 0, 36*2)
	put := func(vals ...float32) {
		for _, v := range vals {
			vertices = binary.LittleEndian.AppendUint32(vertices, math.Float32bits(v))
		}
	}
	for fi, f := range faces {
		for _, c := range corners {
			p := f.n.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(0.5)
			put(p[0], p[1], p[2], f.n[0], f.n[1], f.n[2], (c[0]+1)/2, (1-c[1])/2)
		}
		base := uint16(fi * 4)
		for _, i := range []uint16{0, 1, 2, 0, 2, 3} {
			indices = binary.LittleEndian.AppendUint16(indices, base+i)
		}
	}

	m := geometry.NewMesh()
	m.SetStride(32)
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticPosition, Offset: 0})
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticNormal, Offset: 12})
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticTexCoord0, Offset: 24})
	m.SetVertexData(vertices)
	m.SetIndexData(indices, geometry.ComponentU16)
	return m
}
