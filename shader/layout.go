package shader

import "github.com/gogpu/g3d/rhi"

// Main uniform block layout (std140-compatible WGSL layout, bytes).
const (
	OffsetMVP            = 0
	OffsetModel          = 64
	OffsetNormalMatrix   = 128
	OffsetViewProjection = 192
	OffsetCameraPosition = 256
	// OffsetViewport holds width, height, 1/width, 1/height.
	OffsetViewport  = 272
	OffsetBaseColor = 288
	// OffsetEmissive holds the emissive factor in xyz.
	OffsetEmissive = 304
	// OffsetParams0 holds specular amount, roughness, metalness and
	// normal strength.
	OffsetParams0 = 320
	// OffsetParams1 holds occlusion amount, alpha cutoff, opacity and
	// point size.
	OffsetParams1      = 336
	OffsetMorphWeights = 352
	// OffsetCustom is where custom material properties start, one vec4
	// each in declaration order.
	OffsetCustom = 384
)

// MaxJoints is the number of bone matrices a skinned shader declares.
const MaxJoints = 64

// Lights block layout.
const (
	// LightStride is the size of one light record.
	LightStride = 160

	LightPosition     = 0  // xyz position, w type
	LightDirection    = 16 // xyz direction
	LightColor        = 32 // rgb color times brightness
	LightAttenuation  = 48 // constant, linear, quadratic
	LightCone         = 64 // cos inner, cos outer
	LightShadow       = 80 // map index or -1, bias, cube flag, far plane
	LightShadowMatrix = 96 // light view-projection
	LightsHeader      = 32 // count in x (u32), then ambient rgb
	LightsAmbient     = 16
	LightsBlockSize   = LightsHeader + rhi.MaxLights*LightStride

	AreaLightStride     = 64
	AreaLightPosition   = 0
	AreaLightRight      = 16 // right axis times half width
	AreaLightUp         = 32 // up axis times half height
	AreaLightColor      = 48
	AreaLightsHeader    = 16
	AreaLightsBlockSize = AreaLightsHeader + rhi.MaxAreaLights*AreaLightStride
)

// Light types stored in the w component of the light position.
const (
	LightTypeDirectional = 0
	LightTypePoint       = 1
	LightTypeSpot        = 2
)

// BoneOffset returns the offset of the bone matrix array.
func BoneOffset(customProps int) uint64 {
	return OffsetCustom + 16*uint64(customProps)
}

// BoneNormalOffset returns the offset of the bone normal matrix array.
func BoneNormalOffset(customProps int) uint64 {
	return BoneOffset(customProps) + 64*MaxJoints
}

// MainBlockSize returns the size of the main uniform block.
func MainBlockSize(customProps int, skinned bool) uint64 {
	if skinned {
		return BoneNormalOffset(customProps) + 64*MaxJoints
	}
	return BoneOffset(customProps)
}
