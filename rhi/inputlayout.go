package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// MaxVertexAttributes is the maximum number of attributes in an input layout.
const MaxVertexAttributes = 16

// Vertex attribute names shared by the geometry cache and shader generator.
const (
	AttrPosition = "attr_pos"
	AttrNormal   = "attr_norm"
	AttrUV0      = "attr_uv0"
	AttrUV1      = "attr_uv1"
	AttrTangent  = "attr_textan"
	AttrBinormal = "attr_binormal"
	AttrJoints   = "attr_joints"
	AttrWeights  = "attr_weights"
	AttrColor    = "attr_color"
)

// AttrTargetPosition returns the attribute name of morph target i's positions.
func AttrTargetPosition(i int) string { return fmt.Sprintf("attr_tpos%d", i) }

// AttrTargetNormal returns the attribute name of morph target i's normals.
func AttrTargetNormal(i int) string { return fmt.Sprintf("attr_tnorm%d", i) }

// VertexInputAttribute is one attribute of an interleaved vertex buffer.
type VertexInputAttribute struct {
	Name     string
	Location uint32
	Format   gputypes.VertexFormat
	Offset   uint32
}

// InputLayout describes one interleaved vertex buffer. It is comparable
// and part of GraphicsPipelineState.
type InputLayout struct {
	Stride     uint32
	Topology   gputypes.PrimitiveTopology
	Count      int
	Attributes [MaxVertexAttributes]VertexInputAttribute
}

// Add appends an attribute.
func (l *InputLayout) Add(a VertexInputAttribute) error {
	if l.Count >= MaxVertexAttributes {
		return fmt.Errorf("%w: %s", ErrTooManyAttributes, a.Name)
	}
	l.Attributes[l.Count] = a
	l.Count++
	return nil
}

// Attrs returns the used attributes.
func (l *InputLayout) Attrs() []VertexInputAttribute {
	return l.Attributes[:l.Count]
}

// BakeVertexInputLocations returns a copy of the layout holding only the
// attributes the shader declares, with locations taken from its reflection.
func (l InputLayout) BakeVertexInputLocations(stages *ShaderStages) InputLayout {
	out := InputLayout{Stride: l.Stride, Topology: l.Topology}
	desc := stages.Description()
	for _, a := range l.Attrs() {
		in, ok := desc.Input(a.Name)
		if !ok {
			continue
		}
		a.Location = in.Location
		out.Attributes[out.Count] = a
		out.Count++
	}
	return out
}

// vertexBuffers converts the layout to the HAL vertex buffer description.
func (l *InputLayout) vertexBuffers() []gputypes.VertexBufferLayout {
	if l.Count == 0 {
		return nil
	}
	attrs := make([]gputypes.VertexAttribute, 0, l.Count)
	for _, a := range l.Attrs() {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: uint64(l.Stride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}}
}
