package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texture(cube bool) *Texture {
	td := geometry.NewTextureData()
	td.SetSize(1, 1)
	td.SetCube(cube)
	return &Texture{Data: td, Sampler: rhi.LinearClampSampler}
}

func TestMaterial_Commit(t *testing.T) {
	m := NewPrincipled()
	assert.Equal(t, DirtyAll, m.Commit(), "new material starts fully dirty")
	assert.Zero(t, m.Commit())

	m.SetBaseColor(mgl32.Vec4{1, 0, 0, 1})
	m.SetRoughness(0.3)
	m.SetRoughness(0.4)
	d := m.Dirty()
	assert.True(t, d.Has(DirtyBaseColor))
	assert.True(t, d.Has(DirtyRoughness))
	assert.False(t, d.Has(DirtyMetalness))

	assert.Equal(t, DirtyBaseColor|DirtyRoughness, m.Commit())
	assert.Zero(t, m.Dirty())
	assert.Equal(t, float32(0.4), m.Params().Roughness)
}

func TestMaterial_SetterBits(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Material)
		want DirtyBits
	}{
		{"emissive", func(m *Material) { m.SetEmissive(mgl32.Vec3{1, 1, 1}) }, DirtyEmissive},
		{"specular", func(m *Material) { m.SetSpecularAmount(1) }, DirtySpecular},
		{"metalness", func(m *Material) { m.SetMetalness(0) }, DirtyMetalness},
		{"normal", func(m *Material) { m.SetNormalStrength(2) }, DirtyNormal},
		{"occlusion", func(m *Material) { m.SetOcclusionAmount(0) }, DirtyOcclusion},
		{"alpha", func(m *Material) { m.SetAlphaMode(AlphaMask, 0.2) }, DirtyAlpha},
		{"opacity", func(m *Material) { m.SetOpacity(0.5) }, DirtyOpacity},
		{"point size", func(m *Material) { m.SetPointSize(4) }, DirtyPointSize},
		{"line width", func(m *Material) { m.SetLineWidth(2) }, DirtyLineWidth},
		{"lighting", func(m *Material) { m.SetLighting(LightingNone) }, DirtyLighting},
		{"blend", func(m *Material) { m.SetBlend(BlendAdditive) }, DirtyBlend},
		{"cull", func(m *Material) { m.SetCull(CullNone) }, DirtyCull},
		{"normal map", func(m *Material) { m.SetTexture(NormalMap, texture(false)) }, DirtyNormal},
		{"opacity map", func(m *Material) { m.SetTexture(OpacityMap, nil) }, DirtyOpacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPrincipled()
			m.Commit()
			tt.set(m)
			assert.Equal(t, tt.want, m.Commit())
		})
	}
}

func TestMaterial_StructuralKey(t *testing.T) {
	a := NewPrincipled()
	b := NewPrincipled()
	b.SetBaseColor(mgl32.Vec4{0.2, 0.3, 0.4, 1})
	b.SetRoughness(0.9)
	b.SetEmissive(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, a.StructuralKey(), b.StructuralKey(), "uniform values must not change the key")

	b.SetTexture(BaseColorMap, texture(false))
	assert.NotEqual(t, a.StructuralKey(), b.StructuralKey(), "texture presence changes the key")

	c := NewPrincipled()
	c.SetTexture(BaseColorMap, &Texture{Data: texture(false).Data, UVSet: 1})
	assert.NotEqual(t, b.StructuralKey(), c.StructuralKey(), "uv set changes the key")

	assert.NotEqual(t, NewUnlit().StructuralKey(), a.StructuralKey())

	d := NewPrincipled()
	d.SetVertexColors(true)
	assert.NotEqual(t, a.StructuralKey(), d.StructuralKey())
}

func TestCustom_Identity(t *testing.T) {
	code := "return vec4<f32>(ctx.uv0, 0.0, 1.0) * u.tint;"
	a := NewCustom(&Custom{Name: "tinted", Fragment: code,
		Properties: []Property{{Name: "tint", Value: mgl32.Vec4{1, 1, 1, 1}}}})
	b := NewCustom(&Custom{Name: "tinted", Fragment: code,
		Properties: []Property{{Name: "tint", Value: mgl32.Vec4{1, 0, 0, 1}}}})
	require.Equal(t, KindCustom, a.Kind())
	assert.Equal(t, a.StructuralKey(), b.StructuralKey())

	b.Custom().SetProperty("tint", mgl32.Vec4{0, 1, 0, 1})
	assert.Equal(t, a.StructuralKey(), b.StructuralKey())
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, b.Custom().Properties[0].Value)

	b.Custom().SetProperty("glow", mgl32.Vec4{})
	assert.NotEqual(t, a.StructuralKey(), b.StructuralKey())

	c := NewCustom(&Custom{Name: "tinted", Fragment: code + " "})
	assert.NotEqual(t, a.Custom().Identity(), c.Custom().Identity())

	e := NewCustom(&Custom{Name: "env", Fragment: code,
		Textures: []CustomTexture{{Name: "env", Texture: *texture(true)}}})
	assert.Contains(t, e.StructuralKey(), "env(cube)")

	ab := NewCustom(&Custom{Name: "pair", Fragment: code,
		Properties: []Property{{Name: "a"}, {Name: "b"}}})
	ba := NewCustom(&Custom{Name: "pair", Fragment: code,
		Properties: []Property{{Name: "b"}, {Name: "a"}}})
	assert.NotEqual(t, ab.StructuralKey(), ba.StructuralKey(), "property order fixes the uniform layout")
}

func TestMaterial_Transparent(t *testing.T) {
	m := NewPrincipled()
	assert.False(t, m.Transparent())

	m.SetOpacity(0.5)
	assert.True(t, m.Transparent())

	m.SetAlphaMode(AlphaOpaque, 0)
	assert.False(t, m.Transparent())

	m = NewUnlit()
	tex := texture(false)
	tex.Data.SetHasTransparency(true)
	m.SetTexture(BaseColorMap, tex)
	assert.True(t, m.Transparent())

	m = NewUnlit()
	m.SetBlend(BlendScreen)
	assert.True(t, m.Transparent())
}

func TestMaterial_ApplyState(t *testing.T) {
	s := rhi.DefaultGraphicsPipelineState()
	m := NewPrincipled()
	m.SetCull(CullNone)
	m.ApplyState(&s)
	assert.Equal(t, gputypes.CullModeNone, s.CullMode)
	assert.False(t, s.BlendEnable)
	assert.True(t, s.DepthWrite)

	s = rhi.DefaultGraphicsPipelineState()
	m.SetOpacity(0.5)
	m.ApplyState(&s)
	assert.True(t, s.BlendEnable)
	assert.False(t, s.DepthWrite)
	assert.Equal(t, gputypes.BlendFactorSrcAlpha, s.TargetBlend.SrcColor)

	s = rhi.DefaultGraphicsPipelineState()
	m.SetBlend(BlendAdditive)
	m.ApplyState(&s)
	assert.Equal(t, gputypes.BlendFactorOne, s.TargetBlend.DstColor)
}
