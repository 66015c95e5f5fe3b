package g3d

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// ErrClosed is returned by a Renderer after Close.
var ErrClosed = errors.New("g3d: renderer closed")

// Renderer owns the GPU caches of one device and renders scene graphs
// with them.
//
// RenderFrame must not be called concurrently; Stats may be.
type Renderer struct {
	cfg     Config
	rc      *rhi.Context
	meshes  *geometry.BufferCache
	shaders *shader.Cache
	frames  *render.FrameRenderer

	mu     sync.Mutex
	closed bool
}

// Stats aggregates the statistics of every cache and the frame renderer.
type Stats struct {
	Context  rhi.Stats
	Shaders  shader.Stats
	Frames   render.Stats
	Meshes   int
	Textures int
}

// New creates a renderer on a HAL device and queue.
func New(device hal.Device, queue hal.Queue, cfg Config) (*Renderer, error) {
	rcfg, err := cfg.rhiConfig()
	if err != nil {
		return nil, err
	}
	rc, err := rhi.NewContext(device, queue, rcfg)
	if err != nil {
		return nil, fmt.Errorf("g3d: %w", err)
	}
	return newRenderer(rc, cfg)
}

// NewFromProvider creates a renderer sharing the device of a gpucontext
// provider, such as a gogpu application window. The provider's surface
// format overrides cfg.ColorFormat.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Renderer, error) {
	rcfg, err := cfg.rhiConfig()
	if err != nil {
		return nil, err
	}
	rc, err := rhi.NewContextFromProvider(provider, rcfg)
	if err != nil {
		return nil, fmt.Errorf("g3d: %w", err)
	}
	cfg.ColorFormat = rc.Config().ColorFormat.String()
	return newRenderer(rc, cfg)
}

func newRenderer(rc *rhi.Context, cfg Config) (*Renderer, error) {
	r := &Renderer{
		cfg:     cfg,
		rc:      rc,
		meshes:  geometry.NewBufferCache(rc),
		shaders: shader.NewCache(rc, cfg.shaderConfig()),
	}
	frames, err := render.NewFrameRenderer(rc, r.meshes, r.shaders, cfg.renderConfig())
	if err != nil {
		r.meshes.Close()
		rc.Close()
		return nil, fmt.Errorf("g3d: %w", err)
	}
	r.frames = frames
	Logger().Info("g3d: renderer created",
		"color", rc.Config().ColorFormat.String(),
		"depth", rc.Config().DepthFormat.String(),
		"validate_shaders", cfg.ValidateShaders)
	return r, nil
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Context returns the GPU resource context.
func (r *Renderer) Context() *rhi.Context { return r.rc }

// Meshes returns the mesh and texture buffer cache.
func (r *Renderer) Meshes() *geometry.BufferCache { return r.meshes }

// Shaders returns the shader permutation cache.
func (r *Renderer) Shaders() *shader.Cache { return r.shaders }

// NewLayer creates a layer node rendered through camera, cleared with the
// configured clear color.
func (r *Renderer) NewLayer(g *scene.Graph, camera scene.NodeID) scene.NodeID {
	return g.Create(&scene.Layer{
		Camera:     camera,
		ClearColor: mgl32.Vec4(r.cfg.ClearColor),
	})
}

// NewTextureTarget creates an offscreen target in the configured formats.
func (r *Renderer) NewTextureTarget(width, height int) (*render.TextureTarget, error) {
	return render.NewTextureTarget(r.rc, width, height)
}

// NewSurfaceTarget creates a target for application-supplied surface
// views in the configured formats.
func (r *Renderer) NewSurfaceTarget() (*render.SurfaceTarget, error) {
	c := r.rc.Config()
	return render.NewSurfaceTarget(r.rc, c.ColorFormat, c.DepthFormat)
}

// RenderFrame renders the passes into one command buffer and submits it.
// See render.FrameRenderer.RenderFrame for the abandonment rules.
func (r *Renderer) RenderFrame(ctx context.Context, g *scene.Graph, passes ...render.LayerPass) (render.FrameStats, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return render.FrameStats{}, ErrClosed
	}
	return r.frames.RenderFrame(ctx, g, passes)
}

// Prewarm builds the shader permutations of a layer ahead of its first
// frame on up to workers goroutines (GOMAXPROCS when workers <= 0).
func (r *Renderer) Prewarm(ctx context.Context, g *scene.Graph, layer scene.NodeID, workers int) (int, error) {
	return r.frames.Prewarm(ctx, g, layer, workers)
}

// ReleaseLayer drops the per-draw uniform buffers of a destroyed layer.
// Buffers of destroyed models are released by RenderFrame.
func (r *Renderer) ReleaseLayer(layer scene.NodeID) int {
	return r.frames.ReleaseLayer(layer)
}

// Stats returns the current statistics.
func (r *Renderer) Stats() Stats {
	meshes, textures := r.meshes.Len()
	return Stats{
		Context:  r.rc.Stats(),
		Shaders:  r.shaders.Stats(),
		Frames:   r.frames.Stats(),
		Meshes:   meshes,
		Textures: textures,
	}
}

// Close waits for the GPU and releases every cached resource. It is safe
// to call more than once.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.frames.Close()
	r.shaders.Clear()
	r.meshes.Close()
	r.rc.Close()
	Logger().Info("g3d: renderer closed")
	return err
}
