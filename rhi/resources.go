package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer is a GPU buffer owned by a Context.
type Buffer struct {
	id    uint64
	raw   hal.Buffer
	size  uint64
	usage gputypes.BufferUsage
}

// ID returns the context-unique buffer id.
func (b *Buffer) ID() uint64 { return b.id }

// Raw returns the HAL buffer.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// CreateBuffer allocates a GPU buffer. CopyDst is always added to usage
// so the buffer can be filled through the queue.
func (c *Context) CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	usage |= gputypes.BufferUsageCopyDst
	raw, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: c.label(label),
		Size:  alignUp(size, 4),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("rhi: create buffer %q: %w", label, err)
	}
	return &Buffer{id: c.newID(), raw: raw, size: alignUp(size, 4), usage: usage}, nil
}

// WriteBuffer uploads data at offset through the queue.
func (c *Context) WriteBuffer(b *Buffer, offset uint64, data []byte) error {
	if err := c.queue.WriteBuffer(b.raw, offset, data); err != nil {
		return fmt.Errorf("rhi: write buffer %d: %w", b.id, err)
	}
	return nil
}

// DestroyBuffer releases the buffer. Nil is ignored.
func (c *Context) DestroyBuffer(b *Buffer) {
	if b == nil || b.raw == nil {
		return
	}
	c.device.DestroyBuffer(b.raw)
	b.raw = nil
}

// TextureDescription describes a sampled 2D or cube texture.
type TextureDescription struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
	// Cube creates six array layers viewed as a cube map.
	Cube bool
	// MipLevels defaults to 1.
	MipLevels uint32
	// RenderTarget adds RenderAttachment usage.
	RenderTarget bool
}

// Texture is a GPU texture with its default view.
type Texture struct {
	id     uint64
	raw    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	format gputypes.TextureFormat
	cube   bool
	mips   uint32
}

// ID returns the context-unique texture id.
func (t *Texture) ID() uint64 { return t.id }

// View returns the default texture view (cube view for cube maps).
func (t *Texture) View() hal.TextureView { return t.view }

// Size returns the texture width and height.
func (t *Texture) Size() (width, height uint32) { return t.width, t.height }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// IsCube reports whether the texture is a cube map.
func (t *Texture) IsCube() bool { return t.cube }

// MipLevels returns the number of mip levels.
func (t *Texture) MipLevels() uint32 { return t.mips }

// layers returns the array layer count.
func (t *Texture) layers() uint32 {
	if t.cube {
		return 6
	}
	return 1
}

// CreateTexture creates a texture and its default view.
func (c *Context) CreateTexture(desc TextureDescription) (*Texture, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("rhi: create texture %q: zero size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	mips := desc.MipLevels
	if mips == 0 {
		mips = 1
	}
	layers := uint32(1)
	viewDim := gputypes.TextureViewDimension2D
	if desc.Cube {
		layers = 6
		viewDim = gputypes.TextureViewDimensionCube
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment
	}

	raw, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         c.label(desc.Label),
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: layers},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("rhi: create texture %q: %w", desc.Label, err)
	}
	view, err := c.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:           c.label(desc.Label + "_view"),
		Format:          desc.Format,
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   mips,
		ArrayLayerCount: layers,
	})
	if err != nil {
		c.device.DestroyTexture(raw)
		return nil, fmt.Errorf("rhi: create texture view %q: %w", desc.Label, err)
	}

	return &Texture{
		id:     c.newID(),
		raw:    raw,
		view:   view,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		cube:   desc.Cube,
		mips:   mips,
	}, nil
}

// WriteTexture uploads mip level 0 of every layer. data holds the layers
// back to back, tightly packed.
func (c *Context) WriteTexture(t *Texture, data []byte) error {
	return c.WriteTextureLevel(t, 0, data)
}

// WriteTextureLevel uploads one mip level of every layer. The level size
// is the base size halved per level, at least one pixel.
func (c *Context) WriteTextureLevel(t *Texture, level uint32, data []byte) error {
	bpp := BytesPerPixel(t.format)
	if bpp == 0 {
		return fmt.Errorf("rhi: write texture %d: unsupported format %s", t.id, t.format)
	}
	if level >= t.mips {
		return fmt.Errorf("%w: mip level %d of %d", ErrInvalidTextureData, level, t.mips)
	}
	w, h := max(t.width>>level, 1), max(t.height>>level, 1)
	rowBytes := w * bpp
	layerBytes := int(uint64(rowBytes) * uint64(h))
	if len(data) != layerBytes*int(t.layers()) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidTextureData, len(data), layerBytes*int(t.layers()))
	}

	for layer := uint32(0); layer < t.layers(); layer++ {
		chunk := data[int(layer)*layerBytes : int(layer+1)*layerBytes]
		err := c.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  t.raw,
				MipLevel: level,
				Origin:   hal.Origin3D{Z: layer},
				Aspect:   gputypes.TextureAspectAll,
			},
			chunk,
			&hal.ImageDataLayout{BytesPerRow: rowBytes, RowsPerImage: h},
			&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			return fmt.Errorf("rhi: write texture %d layer %d level %d: %w", t.id, layer, level, err)
		}
	}
	return nil
}

// DestroyTexture releases the texture and its view. Nil is ignored.
func (c *Context) DestroyTexture(t *Texture) {
	if t == nil || t.raw == nil {
		return
	}
	if t.view != nil {
		c.device.DestroyTextureView(t.view)
	}
	c.device.DestroyTexture(t.raw)
	t.raw, t.view = nil, nil
}

// BytesPerPixel returns the texel size of uncompressed color formats
// used for sampled textures, or 0 for unsupported formats.
func BytesPerPixel(f gputypes.TextureFormat) uint32 {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRG8Unorm:
		return 2
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatR32Float:
		return 4
	case gputypes.TextureFormatRGBA16Float:
		return 8
	case gputypes.TextureFormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// alignUp rounds n up to a multiple of a (a power of two).
func alignUp(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}
