package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Target is where a layer pass renders.
//
// ColorView is called once per pass. A target whose surface went away
// returns an error wrapping hal.ErrSurfaceLost, which abandons the frame.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// ColorView returns the view to render into for the current frame.
	ColorView() (hal.TextureView, error)

	// DepthView returns the depth attachment view, or nil for none.
	DepthView() hal.TextureView

	// Descriptor returns the render pass descriptor matching the
	// target's attachments.
	Descriptor() *rhi.RenderPassDescriptor
}

// TextureTarget renders into offscreen textures owned by the target.
type TextureTarget struct {
	rc    *rhi.Context
	color *rhi.Texture
	depth *rhi.Texture
	rp    *rhi.RenderPassDescriptor
}

// NewTextureTarget creates color and depth textures of the given size in
// the context's configured formats. A context without a depth format
// gives a color-only target.
func NewTextureTarget(rc *rhi.Context, width, height int) (*TextureTarget, error) {
	if rc == nil {
		return nil, ErrNilContext
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: texture target size %dx%d", width, height)
	}
	cfg := rc.Config()
	color, err := rc.CreateTexture(rhi.TextureDescription{
		Label:        "target_color",
		Width:        uint32(width),
		Height:       uint32(height),
		Format:       cfg.ColorFormat,
		RenderTarget: true,
	})
	if err != nil {
		return nil, fmt.Errorf("render: texture target: %w", err)
	}
	t := &TextureTarget{rc: rc, color: color}
	if cfg.DepthFormat != gputypes.TextureFormatUndefined {
		t.depth, err = rc.CreateTexture(rhi.TextureDescription{
			Label:        "target_depth",
			Width:        uint32(width),
			Height:       uint32(height),
			Format:       cfg.DepthFormat,
			RenderTarget: true,
		})
		if err != nil {
			rc.DestroyTexture(color)
			return nil, fmt.Errorf("render: texture target depth: %w", err)
		}
	}
	t.rp = rc.NewRenderPassDescriptor([]gputypes.TextureFormat{cfg.ColorFormat}, cfg.DepthFormat, 1)
	return t, nil
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() int {
	w, _ := t.color.Size()
	return int(w)
}

// Height returns the target height in pixels.
func (t *TextureTarget) Height() int {
	_, h := t.color.Size()
	return int(h)
}

// ColorView returns the color texture view.
func (t *TextureTarget) ColorView() (hal.TextureView, error) {
	if t.color == nil || t.color.View() == nil {
		return nil, fmt.Errorf("render: texture target destroyed: %w", hal.ErrSurfaceLost)
	}
	return t.color.View(), nil
}

// DepthView returns the depth texture view, nil without depth.
func (t *TextureTarget) DepthView() hal.TextureView {
	if t.depth == nil {
		return nil
	}
	return t.depth.View()
}

// Descriptor returns the target's render pass descriptor.
func (t *TextureTarget) Descriptor() *rhi.RenderPassDescriptor { return t.rp }

// Color returns the color texture, e.g. to sample it in a later layer.
func (t *TextureTarget) Color() *rhi.Texture { return t.color }

// Destroy releases the textures and the render pass descriptor, evicting
// the pipelines built for it.
func (t *TextureTarget) Destroy() {
	t.rp.Destroy()
	t.rc.DestroyTexture(t.color)
	t.rc.DestroyTexture(t.depth)
}

// SurfaceTarget renders into views supplied by the host application,
// typically the current swapchain image of a window surface.
type SurfaceTarget struct {
	mu     sync.Mutex
	width  int
	height int
	color  hal.TextureView
	depth  hal.TextureView
	lost   bool
	rp     *rhi.RenderPassDescriptor
}

// NewSurfaceTarget creates a target for a surface of the given format.
// depth may be TextureFormatUndefined.
func NewSurfaceTarget(rc *rhi.Context, format, depth gputypes.TextureFormat) (*SurfaceTarget, error) {
	if rc == nil {
		return nil, ErrNilContext
	}
	return &SurfaceTarget{
		rp: rc.NewRenderPassDescriptor([]gputypes.TextureFormat{format}, depth, 1),
	}, nil
}

// SetFrame supplies the views and size of the next frame.
func (t *SurfaceTarget) SetFrame(width, height int, color, depth hal.TextureView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width, t.height = width, height
	t.color, t.depth = color, depth
	t.lost = false
}

// MarkLost records that the surface went away. The next ColorView fails
// with hal.ErrSurfaceLost until SetFrame is called again.
func (t *SurfaceTarget) MarkLost() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lost = true
	t.color, t.depth = nil, nil
}

// Width returns the surface width in pixels.
func (t *SurfaceTarget) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

// Height returns the surface height in pixels.
func (t *SurfaceTarget) Height() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.height
}

// ColorView returns the current frame's view.
func (t *SurfaceTarget) ColorView() (hal.TextureView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lost || t.color == nil {
		return nil, hal.ErrSurfaceLost
	}
	return t.color, nil
}

// DepthView returns the current frame's depth view.
func (t *SurfaceTarget) DepthView() hal.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.depth
}

// Descriptor returns the surface's render pass descriptor.
func (t *SurfaceTarget) Descriptor() *rhi.RenderPassDescriptor { return t.rp }

var (
	_ Target = (*TextureTarget)(nil)
	_ Target = (*SurfaceTarget)(nil)
)
