package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
)

// Kind is the node variant selected by its payload.
type Kind uint8

// Node kinds.
const (
	KindNode Kind = iota
	KindModel
	KindLight
	KindCamera
	KindSkin
	KindJoint
	KindLayer
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindModel:
		return "model"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	case KindSkin:
		return "skin"
	case KindJoint:
		return "joint"
	case KindLayer:
		return "layer"
	default:
		return "unknown"
	}
}

// Payload is the kind-specific part of a node. The set of payloads is
// closed: *Model, *Light, *Camera, *Skin, *Joint and *Layer.
type Payload interface {
	Kind() Kind
}

// Model draws a mesh with one material per subset. Subsets past the end
// of Materials reuse the last material.
type Model struct {
	Mesh      *geometry.Mesh
	Materials []*material.Material
	// Skin is the skin node deforming the mesh; the zero id means none.
	Skin NodeID
	// MorphWeights holds one weight per morph target.
	MorphWeights []float32

	CastsShadows    bool
	ReceivesShadows bool
}

// Kind implements Payload.
func (*Model) Kind() Kind { return KindModel }

// MaterialFor returns the material of subset i, or nil.
func (m *Model) MaterialFor(i int) *material.Material {
	if len(m.Materials) == 0 {
		return nil
	}
	if i >= len(m.Materials) {
		i = len(m.Materials) - 1
	}
	return m.Materials[i]
}

// LightType is the light variant.
type LightType uint8

// Light types.
const (
	DirectionalLight LightType = iota
	PointLight
	SpotLight
	AreaLight
)

// Light illuminates the models of the layers it belongs to. Direction
// follows the node's -Z axis.
type Light struct {
	Type       LightType
	Color      mgl32.Vec3
	Brightness float32

	ConstantFade  float32
	LinearFade    float32
	QuadraticFade float32

	// Cone angles of spot lights, in degrees, measured edge to edge.
	ConeAngle      float32
	InnerConeAngle float32

	// Width and Height of area lights.
	Width  float32
	Height float32

	CastsShadow bool
	ShadowBias  float32
	// ShadowMap is the index of the light's shadow map in its map array,
	// assigned by the application that renders shadow maps.
	ShadowMap int
	ShadowFar float32
	// ShadowMatrix maps world positions into the shadow map of a
	// directional or spot light.
	ShadowMatrix mgl32.Mat4
}

// NewLight returns a white light of the given type with default fades.
func NewLight(t LightType) *Light {
	return &Light{
		Type:           t,
		Color:          mgl32.Vec3{1, 1, 1},
		Brightness:     1,
		ConstantFade:   1,
		ConeAngle:      40,
		InnerConeAngle: 30,
		Width:          1,
		Height:         1,
		ShadowBias:     0.005,
		ShadowMap:      -1,
		ShadowFar:      5000,
		ShadowMatrix:   mgl32.Ident4(),
	}
}

// Kind implements Payload.
func (*Light) Kind() Kind { return KindLight }

// Skin binds a list of joint nodes to a skinned mesh.
type Skin struct {
	Joints           []NodeID
	InverseBindPoses []mgl32.Mat4
}

// Kind implements Payload.
func (*Skin) Kind() Kind { return KindSkin }

// Joint marks a node as joint Index of a skin.
type Joint struct {
	Index int
	Skin  NodeID
}

// Kind implements Payload.
func (*Joint) Kind() Kind { return KindJoint }

// Layer is the root of one render pass.
type Layer struct {
	Camera       NodeID
	ClearColor   mgl32.Vec4
	AmbientColor mgl32.Vec3
	// LightProbe is an optional cube map used for image based ambient
	// light.
	LightProbe *geometry.TextureData
	// AO is an optional screen-space ambient occlusion texture.
	AO *geometry.TextureData
}

// Kind implements Payload.
func (*Layer) Kind() Kind { return KindLayer }
