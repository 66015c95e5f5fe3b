package rhi

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Shader entry points. Every generated module uses these names.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// InOutVariable is a reflected vertex input.
type InOutVariable struct {
	Name     string
	Location uint32
	Format   gputypes.VertexFormat
}

// BlockVariable is a reflected uniform block.
type BlockVariable struct {
	Name    string
	Binding int
	Size    uint64
}

// SamplerVariable is a reflected combined image sampler. ArrayDims is
// empty for a single sampler.
type SamplerVariable struct {
	Name      string
	Binding   int
	Cube      bool
	ArrayDims []int
}

// Count returns the number of texture elements the variable declares.
func (v SamplerVariable) Count() int {
	n := 1
	for _, d := range v.ArrayDims {
		n *= d
	}
	return n
}

// ShaderDescription is the reflection data of a shader pipeline.
type ShaderDescription struct {
	Inputs                []InOutVariable
	UniformBlocks         []BlockVariable
	CombinedImageSamplers []SamplerVariable
}

// Input returns the vertex input with the given name.
func (d *ShaderDescription) Input(name string) (InOutVariable, bool) {
	for _, in := range d.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return InOutVariable{}, false
}

// UniformBlock returns the uniform block at binding.
func (d *ShaderDescription) UniformBlock(binding int) (BlockVariable, bool) {
	for _, b := range d.UniformBlocks {
		if b.Binding == binding {
			return b, true
		}
	}
	return BlockVariable{}, false
}

// SamplerByName returns the combined image sampler with the given name.
func (d *ShaderDescription) SamplerByName(name string) (SamplerVariable, bool) {
	for _, s := range d.CombinedImageSamplers {
		if s.Name == name {
			return s, true
		}
	}
	return SamplerVariable{}, false
}

// BindingForTexture returns the binding and array dimensions of the named
// sampler, or -1 when the shader does not declare it.
func (d *ShaderDescription) BindingForTexture(name string) (int, []int) {
	if s, ok := d.SamplerByName(name); ok {
		return s.Binding, s.ArrayDims
	}
	return -1, nil
}

// MaxSamplerBinding returns the highest declared sampler binding, or -1.
func (d *ShaderDescription) MaxSamplerBinding() int {
	m := -1
	for _, s := range d.CombinedImageSamplers {
		if s.Binding > m {
			m = s.Binding
		}
	}
	return m
}

// FlatSampler is one texture element of a sampler variable as realized in
// bind group 1.
type FlatSampler struct {
	Name           string
	Element        int
	Cube           bool
	TextureBinding uint32
	SamplerBinding uint32
}

// FlattenSamplers orders sampler variables by binding and assigns each
// texture element a texture binding 2k and a sampler binding 2k+1.
func FlattenSamplers(vars []SamplerVariable) []FlatSampler {
	sorted := make([]SamplerVariable, len(vars))
	copy(sorted, vars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Binding < sorted[j].Binding })

	var out []FlatSampler
	k := uint32(0)
	for _, v := range sorted {
		for e := 0; e < v.Count(); e++ {
			out = append(out, FlatSampler{
				Name:           v.Name,
				Element:        e,
				Cube:           v.Cube,
				TextureBinding: 2 * k,
				SamplerBinding: 2*k + 1,
			})
			k++
		}
	}
	return out
}

// ShaderStages is a compiled shader pipeline: one WGSL module holding the
// vertex and fragment (or compute) entry points, plus its reflection.
type ShaderStages struct {
	id     uint64
	label  string
	module hal.ShaderModule
	source string
	desc   ShaderDescription
}

// ID returns the context-unique shader id. Pipeline state refers to
// shaders by this id.
func (s *ShaderStages) ID() uint64 { return s.id }

// Label returns the debug label.
func (s *ShaderStages) Label() string { return s.label }

// Module returns the HAL shader module.
func (s *ShaderStages) Module() hal.ShaderModule { return s.module }

// Source returns the WGSL source.
func (s *ShaderStages) Source() string { return s.source }

// Description returns the reflection data.
func (s *ShaderStages) Description() *ShaderDescription { return &s.desc }

// CreateShaderStages creates the HAL module for WGSL source.
func (c *Context) CreateShaderStages(label, wgsl string, desc ShaderDescription) (*ShaderStages, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  c.label(label),
		Source: hal.ShaderSource{WGSL: wgsl},
	})
	if err != nil {
		return nil, fmt.Errorf("rhi: create shader module %q: %w", label, err)
	}
	s := &ShaderStages{id: c.newID(), label: label, module: module, source: wgsl, desc: desc}
	slogger().Debug("rhi: shader stages created", "label", label, "id", s.id)
	return s, nil
}

// DestroyShaderStages releases the shader module. Pipelines built from it
// stay valid until evicted.
func (c *Context) DestroyShaderStages(s *ShaderStages) {
	if s == nil || s.module == nil {
		return
	}
	c.device.DestroyShaderModule(s.module)
	s.module = nil
}
