package render

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
)

// block is a uniform block image in WGSL uniform layout. mgl32 matrices are
// column-major like WGSL, so they are written as is.
type block []byte

func (b block) putFloat(off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

func (b block) putUint(off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func (b block) putVec4(off int, v mgl32.Vec4) {
	for i, f := range v {
		b.putFloat(off+4*i, f)
	}
}

func (b block) putVec3(off int, v mgl32.Vec3, w float32) {
	b.putVec4(off, v.Vec4(w))
}

func (b block) putMat4(off int, m mgl32.Mat4) {
	for i, f := range m {
		b.putFloat(off+4*i, f)
	}
}

// drawUniforms are the values of the main uniform block of one draw.
type drawUniforms struct {
	model    mgl32.Mat4
	viewProj mgl32.Mat4
	camera   mgl32.Vec3
	width    float32
	height   float32
	params   material.Params
	// opacity is the node's global opacity, folded into the material's.
	opacity float32
	morph   []float32
	custom  []material.Property
	skinned bool
	bones   []mgl32.Mat4
	normals []mgl32.Mat4
}

// size returns the main block size for these uniforms.
func (d *drawUniforms) size() uint64 {
	return shader.MainBlockSize(len(d.custom), d.skinned)
}

// pack writes the main block into dst, which must hold size bytes.
func (d *drawUniforms) pack(dst block) {
	clear(dst)
	dst.putMat4(shader.OffsetMVP, d.viewProj.Mul4(d.model))
	dst.putMat4(shader.OffsetModel, d.model)
	dst.putMat4(shader.OffsetNormalMatrix, mgl32.Mat4Normal(d.model).Mat4())
	dst.putMat4(shader.OffsetViewProjection, d.viewProj)
	dst.putVec3(shader.OffsetCameraPosition, d.camera, 1)

	w, h := math32.Max(d.width, 1), math32.Max(d.height, 1)
	dst.putVec4(shader.OffsetViewport, mgl32.Vec4{w, h, 1 / w, 1 / h})

	p := d.params
	dst.putVec4(shader.OffsetBaseColor, p.BaseColor)
	dst.putVec3(shader.OffsetEmissive, p.Emissive, 0)
	dst.putVec4(shader.OffsetParams0, mgl32.Vec4{p.SpecularAmount, p.Roughness, p.Metalness, p.NormalStrength})
	dst.putVec4(shader.OffsetParams1, mgl32.Vec4{p.OcclusionAmount, p.AlphaCutoff, p.Opacity * d.opacity, p.PointSize})

	for i, wt := range d.morph {
		if i >= 8 {
			break
		}
		dst.putFloat(shader.OffsetMorphWeights+4*i, wt)
	}
	for i, prop := range d.custom {
		dst.putVec4(shader.OffsetCustom+16*i, prop.Value)
	}
	if !d.skinned {
		return
	}
	bones := int(shader.BoneOffset(len(d.custom)))
	normals := int(shader.BoneNormalOffset(len(d.custom)))
	for i := 0; i < shader.MaxJoints; i++ {
		bone, normal := mgl32.Ident4(), mgl32.Ident4()
		if i < len(d.bones) {
			bone, normal = d.bones[i], d.normals[i]
		}
		dst.putMat4(bones+64*i, bone)
		dst.putMat4(normals+64*i, normal)
	}
}

// lightEntry is a light node collected for a layer.
type lightEntry struct {
	node  *scene.Node
	light *scene.Light
}

// castsShadow reports whether the light samples a shadow map.
func (e lightEntry) castsShadow() bool {
	l := e.light
	return l.CastsShadow && l.ShadowMap >= 0 && l.ShadowMap < rhi.MaxShadowMapsPerType
}

// packLights writes the lights block: count, ambient color, then one
// record per light.
func packLights(dst block, lights []lightEntry, ambient mgl32.Vec3) {
	clear(dst)
	n := min(len(lights), rhi.MaxLights)
	dst.putUint(0, uint32(n))
	dst.putVec3(shader.LightsAmbient, ambient, 1)
	for i := 0; i < n; i++ {
		packLight(dst[shader.LightsHeader+i*shader.LightStride:], lights[i])
	}
}

func packLight(dst block, e lightEntry) {
	l := e.light
	typ := float32(shader.LightTypeDirectional)
	switch l.Type {
	case scene.PointLight:
		typ = shader.LightTypePoint
	case scene.SpotLight:
		typ = shader.LightTypeSpot
	}
	dst.putVec3(shader.LightPosition, e.node.GlobalPosition(), typ)
	dst.putVec3(shader.LightDirection, e.node.GlobalDirection(), 0)
	dst.putVec3(shader.LightColor, l.Color.Mul(l.Brightness), 1)
	dst.putVec4(shader.LightAttenuation, mgl32.Vec4{l.ConstantFade, l.LinearFade, l.QuadraticFade, 0})

	outer := math32.Cos(mgl32.DegToRad(l.ConeAngle) / 2)
	inner := math32.Cos(mgl32.DegToRad(math32.Min(l.InnerConeAngle, l.ConeAngle)) / 2)
	dst.putVec4(shader.LightCone, mgl32.Vec4{inner, outer, 0, 0})

	index, cube := float32(-1), float32(0)
	if e.castsShadow() {
		index = float32(l.ShadowMap)
	}
	if l.Type == scene.PointLight {
		cube = 1
	}
	dst.putVec4(shader.LightShadow, mgl32.Vec4{index, l.ShadowBias, cube, l.ShadowFar})
	dst.putMat4(shader.LightShadowMatrix, l.ShadowMatrix)
}

// packAreaLights writes the area lights block. The right and up axes are
// the node's global X and Y axes scaled by half the light size.
func packAreaLights(dst block, lights []lightEntry) {
	clear(dst)
	n := min(len(lights), rhi.MaxAreaLights)
	dst.putUint(0, uint32(n))
	for i := 0; i < n; i++ {
		e := lights[i]
		rec := dst[shader.AreaLightsHeader+i*shader.AreaLightStride:]
		m := e.node.GlobalTransform()
		right := m.Col(0).Vec3().Normalize().Mul(e.light.Width / 2)
		up := m.Col(1).Vec3().Normalize().Mul(e.light.Height / 2)
		rec.putVec3(shader.AreaLightPosition, e.node.GlobalPosition(), 1)
		rec.putVec3(shader.AreaLightRight, right, 0)
		rec.putVec3(shader.AreaLightUp, up, 0)
		rec.putVec3(shader.AreaLightColor, e.light.Color.Mul(e.light.Brightness), 1)
	}
}
