package geometry

import (
	"fmt"

	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
)

// GPUMesh is the uploaded form of a Mesh.
type GPUMesh struct {
	MeshID     uint64
	Generation uint64

	Vertex      *rhi.Buffer
	Index       *rhi.Buffer
	IndexFormat gputypes.IndexFormat
	VertexCount uint32
	IndexCount  uint32

	Layout      rhi.InputLayout
	Bounds      Bounds
	Subsets     []Subset
	TargetCount int
	Skinned     bool
}

// Indexed reports whether the mesh draws with an index buffer.
func (g *GPUMesh) Indexed() bool { return g.Index != nil }

type gpuTexture struct {
	tex        *rhi.Texture
	generation uint64
}

// BufferCache uploads meshes and textures and keeps their GPU copies
// until the owner releases them. Entries are never evicted implicitly.
type BufferCache struct {
	ctx      *rhi.Context
	meshes   *cache.Store[uint64, *GPUMesh]
	textures *cache.Store[uint64, *gpuTexture]
}

// NewBufferCache creates a cache on ctx.
func NewBufferCache(ctx *rhi.Context) *BufferCache {
	return &BufferCache{
		ctx:      ctx,
		meshes:   cache.NewStore[uint64, *GPUMesh](cache.Uint64Hasher),
		textures: cache.NewStore[uint64, *gpuTexture](cache.Uint64Hasher),
	}
}

// LoadOrUpdate returns the GPU mesh for m, rebuilding it when m is dirty
// or its generation differs from the cached one.
//
// An invalid mesh is logged and yields nil, which callers treat as nothing
// to draw. The dirty flag is cleared in both cases so a broken mesh is
// reported once per change, not once per frame.
func (c *BufferCache) LoadOrUpdate(m *Mesh) *GPUMesh {
	if m == nil {
		return nil
	}
	cached, ok := c.meshes.Get(m.id)
	if ok && !m.dirty && cached.Generation == m.generation {
		return cached
	}
	if !ok && !m.dirty {
		// Failed earlier at this generation.
		return nil
	}
	m.dirty = false

	if ok {
		c.meshes.Delete(m.id)
		c.destroyMesh(cached)
	}

	g, err := c.build(m)
	if err != nil {
		slogger().Warn("geometry: mesh skipped", "mesh", m.id, "generation", m.generation, "err", err)
		return nil
	}
	c.meshes.Set(m.id, g)
	slogger().Debug("geometry: mesh uploaded",
		"mesh", m.id,
		"vertices", g.VertexCount,
		"indices", g.IndexCount,
		"subsets", len(g.Subsets))
	return g
}

func (c *BufferCache) build(m *Mesh) (*GPUMesh, error) {
	d, err := Validate(m)
	if err != nil {
		return nil, err
	}
	g := &GPUMesh{
		MeshID:      m.id,
		Generation:  m.generation,
		IndexFormat: gputypes.IndexFormatUint32,
		VertexCount: d.VertexCount,
		Layout:      d.Layout,
		Bounds:      d.Bounds,
		Subsets:     d.Subsets,
		TargetCount: d.TargetCount,
		Skinned:     d.Skinned,
	}
	if len(d.Vertices) > 0 {
		g.Vertex, err = c.ctx.CreateBuffer(fmt.Sprintf("mesh%d_vertices", m.id), uint64(len(d.Vertices)), gputypes.BufferUsageVertex)
		if err != nil {
			return nil, err
		}
		if err := c.ctx.WriteBuffer(g.Vertex, 0, d.Vertices); err != nil {
			c.destroyMesh(g)
			return nil, err
		}
	}
	if d.Indices != nil {
		data := indexBytes(d.Indices)
		g.Index, err = c.ctx.CreateBuffer(fmt.Sprintf("mesh%d_indices", m.id), uint64(len(data)), gputypes.BufferUsageIndex)
		if err != nil {
			c.destroyMesh(g)
			return nil, err
		}
		if err := c.ctx.WriteBuffer(g.Index, 0, data); err != nil {
			c.destroyMesh(g)
			return nil, err
		}
		g.IndexCount = uint32(len(d.Indices))
	}
	return g, nil
}

func (c *BufferCache) destroyMesh(g *GPUMesh) {
	c.ctx.DestroyBuffer(g.Vertex)
	c.ctx.DestroyBuffer(g.Index)
}

// Release drops the GPU copy of m.
func (c *BufferCache) Release(m *Mesh) {
	if g, ok := c.meshes.Delete(m.id); ok {
		c.destroyMesh(g)
	}
	m.dirty = true
}

// LoadTexture returns the GPU texture for td, uploading it when the cached
// generation differs. Invalid data is logged once per generation and
// yields nil.
func (c *BufferCache) LoadTexture(td *TextureData) *rhi.Texture {
	if td == nil {
		return nil
	}
	cached, ok := c.textures.Get(td.id)
	if ok && cached.generation == td.generation {
		return cached.tex
	}

	var old *rhi.Texture
	if ok {
		old = cached.tex
	}
	tex, err := c.uploadTexture(td, old)
	if err != nil {
		slogger().Warn("geometry: texture skipped", "texture", td.id, "generation", td.generation, "err", err)
		c.textures.Set(td.id, &gpuTexture{generation: td.generation})
		return nil
	}
	c.textures.Set(td.id, &gpuTexture{tex: tex, generation: td.generation})
	return tex
}

// uploadTexture writes td into old when size and format still match, or
// into a new texture otherwise. old is destroyed when not reused.
func (c *BufferCache) uploadTexture(td *TextureData, old *rhi.Texture) (*rhi.Texture, error) {
	if err := td.validate(); err != nil {
		c.destroyTexture(old)
		return nil, err
	}
	mips := td.mipLevels()
	tex := old
	if old != nil {
		w, h := old.Size()
		if w != td.width || h != td.height || old.Format() != td.format ||
			old.IsCube() != td.IsCube() || old.MipLevels() != mips {
			c.destroyTexture(old)
			tex = nil
		}
	}
	if tex == nil {
		var err error
		tex, err = c.ctx.CreateTexture(rhi.TextureDescription{
			Label:     fmt.Sprintf("texture%d", td.id),
			Width:     td.width,
			Height:    td.height,
			Format:    td.format,
			Cube:      td.IsCube(),
			MipLevels: mips,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := c.ctx.WriteTexture(tex, td.pixels); err != nil {
		c.destroyTexture(tex)
		return nil, err
	}
	if mips > 1 {
		for i, level := range generateMips(td.pixels, td.width, td.height, td.faces) {
			if err := c.ctx.WriteTextureLevel(tex, uint32(i+1), level); err != nil {
				c.destroyTexture(tex)
				return nil, err
			}
		}
	}
	return tex, nil
}

func (c *BufferCache) destroyTexture(t *rhi.Texture) {
	if t == nil {
		return
	}
	c.ctx.ReleaseBindSetsUsing(t.ID())
	c.ctx.DestroyTexture(t)
}

// ReleaseTexture drops the GPU copy of td and every binding set using it.
func (c *BufferCache) ReleaseTexture(td *TextureData) {
	if g, ok := c.textures.Delete(td.id); ok {
		c.destroyTexture(g.tex)
	}
}

// Len returns the number of cached meshes and textures.
func (c *BufferCache) Len() (meshes, textures int) {
	return c.meshes.Len(), c.textures.Len()
}

// Close releases every cached GPU object.
func (c *BufferCache) Close() {
	for _, g := range c.meshes.Clear() {
		c.destroyMesh(g)
	}
	for _, t := range c.textures.Clear() {
		c.destroyTexture(t.tex)
	}
}
