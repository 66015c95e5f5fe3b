// Package g3d is the core of a retained-mode 3D scene renderer.
//
// # Overview
//
// An application builds a scene graph of nodes (models, lights, cameras,
// skins, layers) in package scene, attaches meshes from package geometry
// and materials from package material, and asks a Renderer to draw one
// or more layers per frame. The core turns the graph into GPU work on any
// gogpu/wgpu HAL backend:
//
//   - scene keeps the node arena, dirty flags and global transforms
//   - geometry validates meshes and uploads them once per generation
//   - shader generates WGSL per material structure and feature set
//   - rhi caches pipelines, binding sets, samplers and uniform buffers
//   - render collects renderables, culls, sorts and records draws
//
// # Quick Start
//
//	r, err := g3d.New(device, queue, g3d.DefaultConfig())
//	if err != nil { ... }
//	defer r.Close()
//
//	g := scene.NewGraph()
//	cam := g.Create(scene.NewPerspectiveCamera(60, 0.1, 100))
//	g.SetPosition(cam, mgl32.Vec3{0, 0, 5})
//	layer := r.NewLayer(g, cam)
//	box := g.Create(&scene.Model{Mesh: mesh, Materials: []*material.Material{material.NewPrincipled()}})
//	_ = g.AddChild(layer, box)
//
//	target, _ := r.NewTextureTarget(800, 600)
//	stats, err := r.RenderFrame(ctx, g, render.LayerPass{Layer: layer, Target: target})
//
// # Configuration
//
// Config can be loaded from TOML with LoadConfig or ParseConfig. Unknown
// keys are rejected.
//
// # Logging
//
// g3d is silent by default. SetLogger installs a log/slog logger shared by
// every sub-package.
package g3d

// Version is the current version of the module.
const Version = "0.1.0"
