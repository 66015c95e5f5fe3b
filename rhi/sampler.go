package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SamplerDescription is the cache key of a sampler.
// MipmapFilter FilterModeUndefined disables mipmapping.
type SamplerDescription struct {
	MinFilter    gputypes.FilterMode
	MagFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	AddressU     gputypes.AddressMode
	AddressV     gputypes.AddressMode
	AddressW     gputypes.AddressMode
}

// Fixed sampler descriptions used by the binding builder.
var (
	// NearestClampSampler samples without filtering or mipmaps. Dummy
	// textures and depth textures use it.
	NearestClampSampler = SamplerDescription{
		MinFilter: gputypes.FilterModeNearest,
		MagFilter: gputypes.FilterModeNearest,
		AddressU:  gputypes.AddressModeClampToEdge,
		AddressV:  gputypes.AddressModeClampToEdge,
		AddressW:  gputypes.AddressModeClampToEdge,
	}

	// LinearClampSampler filters linearly without mipmaps. Shadow maps and
	// the ambient occlusion texture use it.
	LinearClampSampler = SamplerDescription{
		MinFilter: gputypes.FilterModeLinear,
		MagFilter: gputypes.FilterModeLinear,
		AddressU:  gputypes.AddressModeClampToEdge,
		AddressV:  gputypes.AddressModeClampToEdge,
		AddressW:  gputypes.AddressModeClampToEdge,
	}
)

// Hash returns a hash for shard selection.
func (d SamplerDescription) Hash() uint64 {
	return uint64(d.MinFilter) | uint64(d.MagFilter)<<4 | uint64(d.MipmapFilter)<<8 |
		uint64(d.AddressU)<<12 | uint64(d.AddressV)<<16 | uint64(d.AddressW)<<20
}

// Sampler is a cached GPU sampler.
type Sampler struct {
	id   uint64
	raw  hal.Sampler
	desc SamplerDescription
}

// ID returns the context-unique sampler id.
func (s *Sampler) ID() uint64 { return s.id }

// Raw returns the HAL sampler.
func (s *Sampler) Raw() hal.Sampler { return s.raw }

// Description returns the description the sampler was created from.
func (s *Sampler) Description() SamplerDescription { return s.desc }

// Sampler returns the sampler for desc, creating it on first use.
// Samplers live until the context is closed.
func (c *Context) Sampler(desc SamplerDescription) (*Sampler, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	return c.samplers.GetOrTryCreate(desc, func() (*Sampler, error) {
		lodMax := float32(0.25)
		if desc.MipmapFilter != gputypes.FilterModeUndefined {
			lodMax = 32
		}
		raw, err := c.device.CreateSampler(&hal.SamplerDescriptor{
			Label:        c.label("sampler"),
			AddressModeU: desc.AddressU,
			AddressModeV: desc.AddressV,
			AddressModeW: desc.AddressW,
			MagFilter:    desc.MagFilter,
			MinFilter:    desc.MinFilter,
			MipmapFilter: desc.MipmapFilter,
			LodMaxClamp:  lodMax,
		})
		if err != nil {
			return nil, fmt.Errorf("rhi: create sampler: %w", err)
		}
		return &Sampler{id: c.newID(), raw: raw, desc: desc}, nil
	})
}
