package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// UniformSelector distinguishes the uniform buffers of one renderable in
// different passes.
type UniformSelector uint8

// Uniform selectors.
const (
	SelectorMain UniformSelector = iota
	SelectorDepthPrepass
)

// UniformBufferSetKey identifies the uniform buffers of one draw.
type UniformBufferSetKey struct {
	Layer    uint64
	Model    uint64
	Material uint64
	Entry    int
	Selector UniformSelector
}

// Hash returns a hash for shard selection.
func (k UniformBufferSetKey) Hash() uint64 {
	h := uint64(fnvOffset64)
	h = mix(h, k.Layer)
	h = mix(h, k.Model)
	h = mix(h, k.Material)
	h = mix(h, uint64(k.Entry))
	return mix(h, uint64(k.Selector))
}

// UniformBufferSet holds the uniform buffers of one draw: the main block
// (matrices and material parameters) and the light blocks.
type UniformBufferSet struct {
	Main       *Buffer
	Lights     *Buffer
	AreaLights *Buffer
}

func (u *UniformBufferSet) destroy(c *Context) {
	c.DestroyBuffer(u.Main)
	c.DestroyBuffer(u.Lights)
	c.DestroyBuffer(u.AreaLights)
	u.Main, u.Lights, u.AreaLights = nil, nil, nil
}

// UniformBufferSet returns the uniform buffer set for key. Buffers are
// allocated lazily with EnsureUniformBuffer.
func (c *Context) UniformBufferSet(key UniformBufferSetKey) *UniformBufferSet {
	return c.uniformSets.GetOrCreate(key, func() *UniformBufferSet { return &UniformBufferSet{} })
}

// EnsureUniformBuffer makes *buf a uniform buffer of at least size bytes.
// A smaller buffer is replaced, and binding sets using it are released.
func (c *Context) EnsureUniformBuffer(buf **Buffer, name string, size uint64) (*Buffer, error) {
	if b := *buf; b != nil && b.raw != nil && b.size >= size {
		return b, nil
	}
	if old := *buf; old != nil {
		c.ReleaseBindSetsUsing(old.id)
		c.DestroyBuffer(old)
	}
	b, err := c.CreateBuffer(name, size, gputypes.BufferUsageUniform)
	if err != nil {
		return nil, fmt.Errorf("rhi: uniform buffer %q: %w", name, err)
	}
	*buf = b
	return b, nil
}

// ReleaseUniformBuffers evicts and destroys the uniform buffer sets whose
// keys match pred, returning how many were released.
func (c *Context) ReleaseUniformBuffers(pred func(UniformBufferSetKey) bool) int {
	var ids []uint64
	removed := c.uniformSets.DeleteFunc(func(k UniformBufferSetKey, u *UniformBufferSet) bool {
		if !pred(k) {
			return false
		}
		for _, b := range []*Buffer{u.Main, u.Lights, u.AreaLights} {
			if b != nil {
				ids = append(ids, b.id)
			}
		}
		return true
	})
	if len(ids) > 0 {
		c.ReleaseBindSetsUsing(ids...)
	}
	for _, u := range removed {
		u.destroy(c)
	}
	return len(removed)
}
