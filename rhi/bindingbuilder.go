package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Uniform block bindings.
const (
	MainUniformBinding       = 0
	LightsUniformBinding     = 1
	AreaLightsUniformBinding = 2
)

// Reserved sampler names.
const (
	SamplerLightProbe    = "lightProbe"
	SamplerDepthTexture  = "depthTexture"
	SamplerAOTexture     = "aoTexture"
	SamplerShadowMap2D   = "shadowMaps2D"
	SamplerShadowMapCube = "shadowMapsCube"
)

// Fixed sampler descriptions of the reserved samplers.
var (
	lightProbeSampler = SamplerDescription{
		MinFilter:    gputypes.FilterModeLinear,
		MagFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
		AddressU:     gputypes.AddressModeRepeat,
		AddressV:     gputypes.AddressModeClampToEdge,
		AddressW:     gputypes.AddressModeClampToEdge,
	}
	depthTextureSampler = NearestClampSampler
	aoTextureSampler    = LinearClampSampler
	shadowMapSampler    = LinearClampSampler
)

// ShadowMapArray is the set of shadow maps bound to one shadow sampler array.
type ShadowMapArray struct {
	Name     string
	Cube     bool
	Textures []*Texture
}

// MaterialTexture is a material texture bound to the sampler with its name.
type MaterialTexture struct {
	Name    string
	Texture *Texture
	Sampler SamplerDescription
}

// BindingInputs holds the resources available for one draw.
type BindingInputs struct {
	Uniforms *UniformBufferSet

	LightProbe   *Texture
	DepthTexture *Texture
	AOTexture    *Texture

	ShadowMaps []ShadowMapArray
	Textures   []MaterialTexture
}

// BuildBindings assembles the complete binding list for a shader: uniform
// blocks at bindings 0, 1 and 2, the available textures, and a dummy
// texture with the dummy sampler for every declared sampler left without
// one. Sampler arrays are truncated or padded with dummies of matching
// dimensionality to their declared size.
func (c *Context) BuildBindings(stages *ShaderStages, in BindingInputs) (BindingList, error) {
	if stages == nil {
		return nil, ErrNilShader
	}
	desc := stages.Description()
	visibility := gputypes.ShaderStagesVertexFragment

	var list BindingList
	for _, ub := range desc.UniformBlocks {
		var buf *Buffer
		if in.Uniforms != nil {
			switch ub.Binding {
			case MainUniformBinding:
				buf = in.Uniforms.Main
			case LightsUniformBinding:
				buf = in.Uniforms.Lights
			case AreaLightsUniformBinding:
				buf = in.Uniforms.AreaLights
			}
		}
		if buf == nil {
			return nil, fmt.Errorf("%w: block %q at binding %d", ErrMissingUniformBuffer, ub.Name, ub.Binding)
		}
		list = append(list, UniformBufferBinding(ub.Binding, visibility, buf, 0, ub.Size))
	}

	specified := newBitset(desc.MaxSamplerBinding() + 1)

	dummySampler, err := c.DummySampler()
	if err != nil {
		return nil, err
	}

	// bind adds the sampled texture binding for a declared sampler. Missing
	// or surplus elements are padded or dropped.
	bind := func(name string, textures []*Texture, sd SamplerDescription) error {
		v, ok := desc.SamplerByName(name)
		if !ok || specified.test(v.Binding) {
			return nil
		}
		smp, err := c.Sampler(sd)
		if err != nil {
			return err
		}
		dummy, err := c.DummyTexture(v.Cube)
		if err != nil {
			return err
		}
		n := v.Count()
		elems := make([]TextureAndSampler, n)
		for i := range elems {
			if i < len(textures) && textures[i] != nil && textures[i].IsCube() == v.Cube {
				elems[i] = TextureAndSampler{Texture: textures[i], Sampler: smp}
			} else {
				elems[i] = TextureAndSampler{Texture: dummy, Sampler: dummySampler}
			}
		}
		list = append(list, SampledTextures(v.Binding, visibility, v.Cube, elems...))
		specified.set(v.Binding)
		return nil
	}

	type fixed struct {
		name string
		tex  *Texture
		desc SamplerDescription
	}
	for _, f := range []fixed{
		{SamplerLightProbe, in.LightProbe, lightProbeSampler},
		{SamplerDepthTexture, in.DepthTexture, depthTextureSampler},
		{SamplerAOTexture, in.AOTexture, aoTextureSampler},
	} {
		if f.tex == nil {
			continue
		}
		if err := bind(f.name, []*Texture{f.tex}, f.desc); err != nil {
			return nil, err
		}
	}
	for _, sm := range in.ShadowMaps {
		if err := bind(sm.Name, sm.Textures, shadowMapSampler); err != nil {
			return nil, err
		}
	}
	for _, mt := range in.Textures {
		if mt.Texture == nil {
			continue
		}
		if err := bind(mt.Name, []*Texture{mt.Texture}, mt.Sampler); err != nil {
			return nil, err
		}
	}

	// Every declared sampler must be bound.
	for _, v := range desc.CombinedImageSamplers {
		if specified.test(v.Binding) {
			continue
		}
		dummy, err := c.DummyTexture(v.Cube)
		if err != nil {
			return nil, err
		}
		elems := make([]TextureAndSampler, v.Count())
		for i := range elems {
			elems[i] = TextureAndSampler{Texture: dummy, Sampler: dummySampler}
		}
		list = append(list, SampledTextures(v.Binding, visibility, v.Cube, elems...))
		specified.set(v.Binding)
	}

	return list.sorted(), nil
}
