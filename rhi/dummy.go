package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// dummyTextureSize is the edge length of dummy textures.
const dummyTextureSize = 4

// DummyTexture returns the placeholder texture bound to declared but
// unused sampler slots: a transparent black RGBA8 2D texture, or a cube
// map when cube is true. One of each is created per context.
func (c *Context) DummyTexture(cube bool) (*Texture, error) {
	idx := 0
	if cube {
		idx = 1
	}

	c.dummyMu.Lock()
	defer c.dummyMu.Unlock()
	if t := c.dummies[idx]; t != nil {
		return t, nil
	}

	name := "dummy_2d"
	if cube {
		name = "dummy_cube"
	}
	t, err := c.CreateTexture(TextureDescription{
		Label:  name,
		Width:  dummyTextureSize,
		Height: dummyTextureSize,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Cube:   cube,
	})
	if err != nil {
		return nil, fmt.Errorf("rhi: dummy texture: %w", err)
	}
	data := make([]byte, dummyTextureSize*dummyTextureSize*4*int(t.layers()))
	if err := c.WriteTexture(t, data); err != nil {
		c.DestroyTexture(t)
		return nil, fmt.Errorf("rhi: dummy texture: %w", err)
	}
	c.dummies[idx] = t
	slogger().Debug("rhi: dummy texture created", "cube", cube)
	return t, nil
}

// DummySampler returns the sampler paired with dummy textures.
func (c *Context) DummySampler() (*Sampler, error) {
	return c.Sampler(NearestClampSampler)
}
