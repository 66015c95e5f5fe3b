package rhi

import (
	"fmt"

	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PipelineKey identifies a graphics pipeline: the fixed-function state
// (including the shader id and baked input layout), the render pass
// compatibility class and the binding layout compatibility class.
type PipelineKey struct {
	State      GraphicsPipelineState
	RenderPass string
	Layout     string
}

// Hash returns a hash for shard selection.
func (k PipelineKey) Hash() uint64 {
	h := k.State.Hash()
	h = mix(h, cache.StringHasher(k.RenderPass))
	return mix(h, cache.StringHasher(k.Layout))
}

// GraphicsPipeline is a cached render pipeline.
type GraphicsPipeline struct {
	id  uint64
	raw hal.RenderPipeline
	key PipelineKey

	// refs holds the ids of render pass descriptors the pipeline was
	// obtained through. Guarded by Context.mu.
	refs map[uint64]struct{}
}

// ID returns the context-unique pipeline id.
func (p *GraphicsPipeline) ID() uint64 { return p.id }

// Raw returns the HAL render pipeline.
func (p *GraphicsPipeline) Raw() hal.RenderPipeline { return p.raw }

// State returns the state the pipeline was built from.
func (p *GraphicsPipeline) State() GraphicsPipelineState { return p.key.State }

// PreparePipeline returns the pipeline for state with the given shader,
// render pass and binding layout, creating it on first use.
//
// The input layout is baked against the shader reflection, the shader id
// is stored in the state, and the sample count and attachment count are
// taken from the render pass, so callers may pass a partially filled state.
// Viewport and scissor are dynamic and do not select a pipeline.
func (c *Context) PreparePipeline(state GraphicsPipelineState, stages *ShaderStages, rp *RenderPassDescriptor, layout *BindingLayout) (*GraphicsPipeline, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	if stages == nil || stages.module == nil {
		return nil, ErrNilShader
	}
	if rp == nil || rp.Destroyed() {
		return nil, ErrRenderPassDestroyed
	}
	if layout == nil {
		return nil, fmt.Errorf("rhi: prepare pipeline: nil binding layout")
	}

	state.Shader = stages.id
	state.Viewport, state.ScissorEnable, state.Scissor = Viewport{}, false, Scissor{}
	state.InputLayout = state.InputLayout.BakeVertexInputLocations(stages)
	state.SampleCount = rp.sampleCount
	state.ColorAttachmentCount = len(rp.colorFormats)

	key := PipelineKey{State: state, RenderPass: rp.compatKey, Layout: layout.key}
	p, err := c.pipelines.GetOrTryCreate(key, func() (*GraphicsPipeline, error) {
		return c.createPipeline(key, stages, rp, layout)
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	p.refs[rp.id] = struct{}{}
	c.mu.Unlock()
	return p, nil
}

func (c *Context) createPipeline(key PipelineKey, stages *ShaderStages, rp *RenderPassDescriptor, layout *BindingLayout) (*GraphicsPipeline, error) {
	state := &key.State

	targets := make([]gputypes.ColorTargetState, len(rp.colorFormats))
	for i, f := range rp.colorFormats {
		targets[i] = gputypes.ColorTargetState{
			Format:    f,
			Blend:     state.blendState(),
			WriteMask: state.TargetBlend.ColorWrite,
		}
	}

	var depthStencil *hal.DepthStencilState
	if rp.depthFormat != gputypes.TextureFormatUndefined {
		compare := gputypes.CompareFunctionAlways
		if state.DepthTest {
			compare = state.DepthFunc
		}
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		depthStencil = &hal.DepthStencilState{
			Format:              rp.depthFormat,
			DepthWriteEnabled:   state.DepthTest && state.DepthWrite,
			DepthCompare:        compare,
			StencilFront:        keep,
			StencilBack:         keep,
			DepthBias:           state.DepthBias,
			DepthBiasSlopeScale: state.SlopeScaledDepthBias,
		}
	}

	primitive := gputypes.PrimitiveState{
		Topology:  state.InputLayout.Topology,
		FrontFace: state.FrontFace,
		CullMode:  state.CullMode,
	}
	if primitive.Topology == gputypes.PrimitiveTopologyTriangleStrip || primitive.Topology == gputypes.PrimitiveTopologyLineStrip {
		f := gputypes.IndexFormatUint32
		primitive.StripIndexFormat = &f
	}

	raw, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  c.label(stages.label + "_pipeline"),
		Layout: layout.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     stages.module,
			EntryPoint: VertexEntryPoint,
			Buffers:    state.InputLayout.vertexBuffers(),
		},
		Primitive:    primitive,
		DepthStencil: depthStencil,
		Multisample: gputypes.MultisampleState{
			Count: rp.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     stages.module,
			EntryPoint: FragmentEntryPoint,
			Targets:    targets,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rhi: create render pipeline %q: %w", stages.label, err)
	}

	p := &GraphicsPipeline{
		id:   c.newID(),
		raw:  raw,
		key:  key,
		refs: make(map[uint64]struct{}),
	}
	c.pipelinesCreated.Add(1)
	slogger().Debug("rhi: pipeline created",
		"shader", stages.label,
		"pass", rp.compatKey,
		"layout", layout.key)
	return p, nil
}

// InvalidateCachedReferences evicts and destroys every pipeline obtained
// through rp. It is called by RenderPassDescriptor.Destroy and by the
// frame renderer when a frame on rp is abandoned.
func (c *Context) InvalidateCachedReferences(rp *RenderPassDescriptor) int {
	if rp == nil {
		return 0
	}
	removed := c.pipelines.DeleteFunc(func(_ PipelineKey, p *GraphicsPipeline) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		_, ok := p.refs[rp.id]
		return ok
	})
	for _, p := range removed {
		c.device.DestroyRenderPipeline(p.raw)
	}
	if n := len(removed); n > 0 {
		c.pipelinesEvicted.Add(uint64(n))
		slogger().Debug("rhi: pipelines invalidated", "pass", rp.id, "count", n)
	}
	return len(removed)
}

// ReleaseShaderPipelines evicts and destroys every pipeline built from the
// shader.
func (c *Context) ReleaseShaderPipelines(stages *ShaderStages) int {
	removed := c.pipelines.DeleteFunc(func(k PipelineKey, _ *GraphicsPipeline) bool {
		return k.State.Shader == stages.id
	})
	for _, p := range removed {
		c.device.DestroyRenderPipeline(p.raw)
	}
	c.pipelinesEvicted.Add(uint64(len(removed)))
	return len(removed)
}
