package rhi

import "github.com/gogpu/gputypes"

// TargetBlend is the blend state of the color attachments.
type TargetBlend struct {
	ColorWrite gputypes.ColorWriteMask
	SrcColor   gputypes.BlendFactor
	DstColor   gputypes.BlendFactor
	OpColor    gputypes.BlendOperation
	SrcAlpha   gputypes.BlendFactor
	DstAlpha   gputypes.BlendFactor
	OpAlpha    gputypes.BlendOperation
}

// Viewport is a viewport rectangle with depth range.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Scissor is a scissor rectangle in pixels.
type Scissor struct {
	X, Y, Width, Height uint32
}

// GraphicsPipelineState is the fixed-function state of a draw. Two states
// describe the same pipeline exactly when they compare equal with ==.
//
// Viewport and scissor are applied as dynamic state when drawing; they
// stay part of the value for draw batching, but PreparePipeline clears
// them before the pipeline lookup.
type GraphicsPipelineState struct {
	// Shader is the ShaderStages id. PreparePipeline sets it.
	Shader uint64

	SampleCount uint32

	DepthTest  bool
	DepthWrite bool
	DepthFunc  gputypes.CompareFunction

	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace

	DepthBias            int32
	SlopeScaledDepthBias float32

	BlendEnable          bool
	TargetBlend          TargetBlend
	ColorAttachmentCount int

	Viewport      Viewport
	ScissorEnable bool
	Scissor       Scissor

	LineWidth float32

	InputLayout InputLayout
}

// DefaultGraphicsPipelineState returns opaque depth-tested state with
// back-face culling.
func DefaultGraphicsPipelineState() GraphicsPipelineState {
	return GraphicsPipelineState{
		SampleCount: 1,
		DepthTest:   true,
		DepthWrite:  true,
		DepthFunc:   gputypes.CompareFunctionLessEqual,
		CullMode:    gputypes.CullModeBack,
		FrontFace:   gputypes.FrontFaceCCW,
		TargetBlend: TargetBlend{
			ColorWrite: gputypes.ColorWriteMaskAll,
			SrcColor:   gputypes.BlendFactorOne,
			DstColor:   gputypes.BlendFactorZero,
			OpColor:    gputypes.BlendOperationAdd,
			SrcAlpha:   gputypes.BlendFactorOne,
			DstAlpha:   gputypes.BlendFactorZero,
			OpAlpha:    gputypes.BlendOperationAdd,
		},
		ColorAttachmentCount: 1,
		LineWidth:            1,
	}
}

// SetAlphaBlend enables source-over blending of non-premultiplied color.
func (s *GraphicsPipelineState) SetAlphaBlend() {
	s.BlendEnable = true
	s.TargetBlend.SrcColor = gputypes.BlendFactorSrcAlpha
	s.TargetBlend.DstColor = gputypes.BlendFactorOneMinusSrcAlpha
	s.TargetBlend.SrcAlpha = gputypes.BlendFactorOne
	s.TargetBlend.DstAlpha = gputypes.BlendFactorOneMinusSrcAlpha
}

// Hash returns a hash for shard selection. Equal states hash equally.
func (s *GraphicsPipelineState) Hash() uint64 {
	h := uint64(fnvOffset64)
	h = mix(h, s.Shader)
	h = mix(h, uint64(s.SampleCount))
	h = mixBool(h, s.DepthTest)
	h = mixBool(h, s.DepthWrite)
	h = mix(h, uint64(s.DepthFunc))
	h = mix(h, uint64(s.CullMode))
	h = mix(h, uint64(s.FrontFace))
	h = mix(h, uint64(uint32(s.DepthBias)))
	h = mixFloat(h, s.SlopeScaledDepthBias)
	h = mixBool(h, s.BlendEnable)
	h = mix(h, uint64(s.TargetBlend.SrcColor)<<32|uint64(s.TargetBlend.DstColor))
	h = mix(h, uint64(s.TargetBlend.SrcAlpha)<<32|uint64(s.TargetBlend.DstAlpha))
	h = mix(h, uint64(s.ColorAttachmentCount))
	h = mix(h, uint64(s.InputLayout.Stride))
	h = mix(h, uint64(s.InputLayout.Topology))
	h = mix(h, uint64(s.InputLayout.Count))
	for _, a := range s.InputLayout.Attrs() {
		h = mix(h, uint64(a.Location)<<40|uint64(a.Format)<<20|uint64(a.Offset))
	}
	return h
}

// blendState returns the HAL blend state, nil when blending is off.
func (s *GraphicsPipelineState) blendState() *gputypes.BlendState {
	if !s.BlendEnable {
		return nil
	}
	return &gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: s.TargetBlend.SrcColor,
			DstFactor: s.TargetBlend.DstColor,
			Operation: s.TargetBlend.OpColor,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: s.TargetBlend.SrcAlpha,
			DstFactor: s.TargetBlend.DstAlpha,
			Operation: s.TargetBlend.OpAlpha,
		},
	}
}
