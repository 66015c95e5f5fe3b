package material

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
)

// Kind is the material variant.
type Kind uint8

// Material kinds.
const (
	KindUnlit Kind = iota
	KindPrincipled
	KindCustom
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUnlit:
		return "unlit"
	case KindPrincipled:
		return "principled"
	case KindCustom:
		return "custom"
	default:
		return "kind" + strconv.Itoa(int(k))
	}
}

// DirtyBits records changed property groups.
type DirtyBits uint32

// Property groups.
const (
	DirtyBaseColor DirtyBits = 1 << iota
	DirtyEmissive
	DirtySpecular
	DirtyRoughness
	DirtyMetalness
	DirtyNormal
	DirtyOcclusion
	DirtyAlpha
	DirtyOpacity
	DirtyPointSize
	DirtyLineWidth
	DirtyLighting
	DirtyBlend
	DirtyCull
	// DirtyCustom covers custom shader code, properties and textures.
	DirtyCustom
)

// DirtyAll has every bit set.
const DirtyAll = DirtyCustom<<1 - 1

// Has reports whether any bit in b is set.
func (d DirtyBits) Has(b DirtyBits) bool { return d&b != 0 }

// Lighting selects the lighting model.
type Lighting uint8

// Lighting modes.
const (
	LightingNone Lighting = iota
	LightingFragment
)

// BlendMode is the color blend mode.
type BlendMode uint8

// Blend modes.
const (
	BlendOpaque BlendMode = iota
	BlendSourceOver
	BlendAdditive
	BlendMultiply
	BlendScreen
)

// CullMode selects which faces are culled.
type CullMode uint8

// Cull modes.
const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// AlphaMode selects how base color alpha is interpreted.
type AlphaMode uint8

// Alpha modes.
const (
	AlphaDefault AlphaMode = iota
	AlphaMask
	AlphaBlend
	AlphaOpaque
)

// TextureSlot is a material texture parameter.
type TextureSlot uint8

// Texture slots.
const (
	BaseColorMap TextureSlot = iota
	EmissiveMap
	SpecularMap
	RoughnessMap
	MetalnessMap
	NormalMap
	OcclusionMap
	OpacityMap
	textureSlotCount
)

var slotNames = [textureSlotCount]string{
	"baseColorMap", "emissiveMap", "specularMap", "roughnessMap",
	"metalnessMap", "normalMap", "occlusionMap", "opacityMap",
}

var slotDirty = [textureSlotCount]DirtyBits{
	DirtyBaseColor, DirtyEmissive, DirtySpecular, DirtyRoughness,
	DirtyMetalness, DirtyNormal, DirtyOcclusion, DirtyOpacity,
}

// String returns the sampler name of the slot in generated shaders.
func (s TextureSlot) String() string {
	if s < textureSlotCount {
		return slotNames[s]
	}
	return "slot" + strconv.Itoa(int(s))
}

// TextureSlots returns every texture slot in declaration order.
func TextureSlots() []TextureSlot {
	out := make([]TextureSlot, textureSlotCount)
	for i := range out {
		out[i] = TextureSlot(i)
	}
	return out
}

// Texture is a texture parameter with its sampling description.
type Texture struct {
	Data    *geometry.TextureData
	Sampler rhi.SamplerDescription
	// UVSet selects texture coordinate set 0 or 1.
	UVSet int
}

var materialIDs atomic.Uint64

// Material is a surface description. The zero value is not usable; use
// NewUnlit, NewPrincipled or NewCustom.
type Material struct {
	id   uint64
	kind Kind

	baseColor       mgl32.Vec4
	emissive        mgl32.Vec3
	specularAmount  float32
	roughness       float32
	metalness       float32
	normalStrength  float32
	occlusionAmount float32
	alphaMode       AlphaMode
	alphaCutoff     float32
	opacity         float32
	pointSize       float32
	lineWidth       float32
	vertexColors    bool

	lighting Lighting
	blend    BlendMode
	cull     CullMode

	textures [textureSlotCount]*Texture
	custom   *Custom

	dirty DirtyBits
}

func newMaterial(kind Kind) *Material {
	return &Material{
		id:              materialIDs.Add(1),
		kind:            kind,
		baseColor:       mgl32.Vec4{1, 1, 1, 1},
		specularAmount:  0.5,
		roughness:       0,
		metalness:       0,
		normalStrength:  1,
		occlusionAmount: 1,
		alphaCutoff:     0.5,
		opacity:         1,
		pointSize:       1,
		lineWidth:       1,
		lighting:        LightingFragment,
		dirty:           DirtyAll,
	}
}

// NewUnlit returns an unlit material.
func NewUnlit() *Material {
	m := newMaterial(KindUnlit)
	m.lighting = LightingNone
	return m
}

// NewPrincipled returns a principled (metal/roughness) material.
func NewPrincipled() *Material {
	m := newMaterial(KindPrincipled)
	m.metalness = 1
	m.roughness = 0
	return m
}

// NewCustom returns a material shaded by user WGSL.
func NewCustom(c *Custom) *Material {
	m := newMaterial(KindCustom)
	m.custom = c
	return m
}

// ID returns the material identity.
func (m *Material) ID() uint64 { return m.id }

// Kind returns the material variant.
func (m *Material) Kind() Kind { return m.kind }

// Custom returns the custom shader description, nil for other kinds.
func (m *Material) Custom() *Custom { return m.custom }

// Lighting returns the lighting mode.
func (m *Material) Lighting() Lighting { return m.lighting }

// Blend returns the blend mode.
func (m *Material) Blend() BlendMode { return m.blend }

// AlphaMode returns the alpha mode.
func (m *Material) AlphaMode() AlphaMode { return m.alphaMode }

// Cull returns the cull mode.
func (m *Material) Cull() CullMode { return m.cull }

// VertexColors reports whether vertex colors modulate the base color.
func (m *Material) VertexColors() bool { return m.vertexColors }

// Texture returns the texture of a slot, or nil.
func (m *Material) Texture(s TextureSlot) *Texture {
	if s >= textureSlotCount {
		return nil
	}
	return m.textures[s]
}

// Dirty returns the pending dirty bits without clearing them.
func (m *Material) Dirty() DirtyBits { return m.dirty }

// Commit returns the pending dirty bits and clears them.
func (m *Material) Commit() DirtyBits {
	d := m.dirty
	m.dirty = 0
	return d
}

// SetBaseColor sets the base color (linear RGBA).
func (m *Material) SetBaseColor(c mgl32.Vec4) {
	m.baseColor = c
	m.dirty |= DirtyBaseColor
}

// SetEmissive sets the emissive factor.
func (m *Material) SetEmissive(c mgl32.Vec3) {
	m.emissive = c
	m.dirty |= DirtyEmissive
}

// SetSpecularAmount sets the specular amount.
func (m *Material) SetSpecularAmount(v float32) {
	m.specularAmount = v
	m.dirty |= DirtySpecular
}

// SetRoughness sets the roughness.
func (m *Material) SetRoughness(v float32) {
	m.roughness = v
	m.dirty |= DirtyRoughness
}

// SetMetalness sets the metalness.
func (m *Material) SetMetalness(v float32) {
	m.metalness = v
	m.dirty |= DirtyMetalness
}

// SetNormalStrength sets the normal map strength.
func (m *Material) SetNormalStrength(v float32) {
	m.normalStrength = v
	m.dirty |= DirtyNormal
}

// SetOcclusionAmount sets the occlusion map amount.
func (m *Material) SetOcclusionAmount(v float32) {
	m.occlusionAmount = v
	m.dirty |= DirtyOcclusion
}

// SetAlphaMode sets the alpha mode and the mask cutoff.
func (m *Material) SetAlphaMode(mode AlphaMode, cutoff float32) {
	m.alphaMode = mode
	m.alphaCutoff = cutoff
	m.dirty |= DirtyAlpha
}

// SetOpacity sets the opacity factor.
func (m *Material) SetOpacity(v float32) {
	m.opacity = v
	m.dirty |= DirtyOpacity
}

// SetPointSize sets the point size for point topologies.
func (m *Material) SetPointSize(v float32) {
	m.pointSize = v
	m.dirty |= DirtyPointSize
}

// SetLineWidth sets the line width for line topologies.
func (m *Material) SetLineWidth(v float32) {
	m.lineWidth = v
	m.dirty |= DirtyLineWidth
}

// SetLighting sets the lighting mode.
func (m *Material) SetLighting(l Lighting) {
	m.lighting = l
	m.dirty |= DirtyLighting
}

// SetVertexColors enables vertex color modulation.
func (m *Material) SetVertexColors(on bool) {
	m.vertexColors = on
	m.dirty |= DirtyBaseColor
}

// SetBlend sets the blend mode.
func (m *Material) SetBlend(b BlendMode) {
	m.blend = b
	m.dirty |= DirtyBlend
}

// SetCull sets the cull mode.
func (m *Material) SetCull(c CullMode) {
	m.cull = c
	m.dirty |= DirtyCull
}

// SetTexture sets or clears (nil) the texture of a slot.
func (m *Material) SetTexture(s TextureSlot, t *Texture) {
	if s >= textureSlotCount {
		return
	}
	m.textures[s] = t
	m.dirty |= slotDirty[s]
}

// MarkCustomDirty records a change to the custom shader description.
func (m *Material) MarkCustomDirty() { m.dirty |= DirtyCustom }

// Transparent reports whether the material needs blending and a sorted,
// depth-write-free draw.
func (m *Material) Transparent() bool {
	if m.blend != BlendOpaque || m.alphaMode == AlphaBlend {
		return true
	}
	if m.alphaMode == AlphaOpaque || m.alphaMode == AlphaMask {
		return false
	}
	if m.opacity < 1 || m.baseColor[3] < 1 {
		return true
	}
	for _, s := range []TextureSlot{BaseColorMap, OpacityMap} {
		if t := m.textures[s]; t != nil && t.Data != nil && t.Data.HasTransparency() {
			return true
		}
	}
	return false
}

// StructuralKey returns the part of the material that shapes generated
// shader code: kind, lighting, alpha mode, vertex colors, bound texture
// slots with their UV sets and dimensionality, and custom shader identity.
// Uniform values never participate.
func (m *Material) StructuralKey() string {
	var b strings.Builder
	b.WriteString(m.kind.String())
	b.WriteString("|l")
	b.WriteString(strconv.Itoa(int(m.lighting)))
	b.WriteString("|a")
	b.WriteString(strconv.Itoa(int(m.alphaMode)))
	if m.vertexColors {
		b.WriteString("|vc")
	}
	for i, t := range m.textures {
		if t == nil || t.Data == nil {
			continue
		}
		b.WriteByte('|')
		b.WriteString(slotNames[i])
		b.WriteString(":uv")
		b.WriteString(strconv.Itoa(t.UVSet))
		if t.Data.IsCube() {
			b.WriteString(":cube")
		}
	}
	if m.custom != nil {
		b.WriteString("|custom:")
		b.WriteString(m.custom.Identity())
	}
	return b.String()
}

// Params are the uniform values of a material.
type Params struct {
	BaseColor       mgl32.Vec4
	Emissive        mgl32.Vec3
	SpecularAmount  float32
	Roughness       float32
	Metalness       float32
	NormalStrength  float32
	OcclusionAmount float32
	AlphaCutoff     float32
	Opacity         float32
	PointSize       float32
	LineWidth       float32
}

// Params returns the current uniform values.
func (m *Material) Params() Params {
	return Params{
		BaseColor:       m.baseColor,
		Emissive:        m.emissive,
		SpecularAmount:  m.specularAmount,
		Roughness:       m.roughness,
		Metalness:       m.metalness,
		NormalStrength:  m.normalStrength,
		OcclusionAmount: m.occlusionAmount,
		AlphaCutoff:     m.alphaCutoff,
		Opacity:         m.opacity,
		PointSize:       m.pointSize,
		LineWidth:       m.lineWidth,
	}
}

// ApplyState applies blend, cull and depth-write state to s.
func (m *Material) ApplyState(s *rhi.GraphicsPipelineState) {
	switch m.cull {
	case CullBack:
		s.CullMode = gputypes.CullModeBack
	case CullFront:
		s.CullMode = gputypes.CullModeFront
	case CullNone:
		s.CullMode = gputypes.CullModeNone
	}
	s.LineWidth = m.lineWidth

	if !m.Transparent() {
		s.BlendEnable = false
		return
	}
	s.DepthWrite = false
	tb := &s.TargetBlend
	s.BlendEnable = true
	tb.OpColor = gputypes.BlendOperationAdd
	tb.OpAlpha = gputypes.BlendOperationAdd
	switch m.blend {
	case BlendAdditive:
		tb.SrcColor, tb.DstColor = gputypes.BlendFactorOne, gputypes.BlendFactorOne
		tb.SrcAlpha, tb.DstAlpha = gputypes.BlendFactorOne, gputypes.BlendFactorOne
	case BlendMultiply:
		tb.SrcColor, tb.DstColor = gputypes.BlendFactorDst, gputypes.BlendFactorOneMinusSrcAlpha
		tb.SrcAlpha, tb.DstAlpha = gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha
	case BlendScreen:
		tb.SrcColor, tb.DstColor = gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrc
		tb.SrcAlpha, tb.DstAlpha = gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha
	default:
		s.SetAlphaBlend()
	}
}

// Custom is a material shaded by user WGSL.
//
// Fragment is the body of a WGSL function
//
//	fn custom_material(ctx: MaterialContext) -> vec4<f32>
//
// where ctx carries the interpolated attributes (uv0, uv1, world_normal,
// world_position, color, frag_coord). Properties become vec4 members of
// the uniform block u, read as u.<name>; a texture <name> is sampled
// through <name>_tex and <name>_smp.
type Custom struct {
	Name       string
	Fragment   string
	Properties []Property
	Textures   []CustomTexture
	// Needs lists the attributes the fragment code reads.
	Needs CustomNeeds
}

// CustomNeeds declares the varyings a custom fragment reads.
type CustomNeeds struct {
	UV0, UV1, WorldNormal, WorldPosition, Color bool
	// DepthTexture declares the depthTexture sampler.
	DepthTexture bool
}

// Property is a custom uniform value.
type Property struct {
	Name  string
	Value mgl32.Vec4
}

// CustomTexture is a custom sampler binding.
type CustomTexture struct {
	Name    string
	Texture Texture
}

// Identity returns the structural identity of the custom shader: name,
// code, property names and texture names. Property values and texture
// contents are excluded. Property order is part of the identity since it
// fixes the uniform layout.
func (c *Custom) Identity() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('#')
	b.WriteString(strconv.FormatUint(cache.StringHasher(c.Fragment), 16))
	b.WriteString("|p:")
	for _, p := range c.Properties {
		b.WriteString(p.Name)
		b.WriteByte(',')
	}
	b.WriteString("|t:")
	for _, t := range c.Textures {
		b.WriteString(t.Name)
		if t.Texture.Data != nil && t.Texture.Data.IsCube() {
			b.WriteString("(cube)")
		}
		b.WriteByte(',')
	}
	n := c.Needs
	for _, f := range []bool{n.UV0, n.UV1, n.WorldNormal, n.WorldPosition, n.Color, n.DepthTexture} {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// SetProperty updates the value of a named property, adding it when
// missing. Adding a property changes the structural key.
func (c *Custom) SetProperty(name string, v mgl32.Vec4) {
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			c.Properties[i].Value = v
			return
		}
	}
	c.Properties = append(c.Properties, Property{Name: name, Value: v})
}
