package shader

import (
	"strconv"
	"strings"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
)

// Feature is a shader feature flag.
type Feature uint32

// Feature flags, in key order.
const (
	FeatureNormals Feature = 1 << iota
	FeatureUV0
	FeatureUV1
	FeatureTangents
	FeatureVertexColors
	FeatureSkinning
	FeatureMorphNormals
	FeatureLighting
	FeatureAreaLights
	FeatureShadows
	FeatureLightProbe
	FeatureSSAO
	FeatureDepthPass
	featureEnd
)

var featureNames = []string{
	"normals", "uv0", "uv1", "tangents", "vertex_colors", "skinning",
	"morph_normals", "lighting", "area_lights", "shadows", "light_probe",
	"ssao", "depth_pass",
}

// JointType is the scalar type of the joint index attribute.
type JointType uint8

// Joint index types.
const (
	JointSint JointType = iota
	JointUint
	JointFloat
)

// FeatureSet is the ordered set of features a permutation is built for.
// It is comparable.
type FeatureSet struct {
	Flags        Feature
	MorphTargets uint8
	Joints       JointType
}

// Has reports whether every flag in f is set.
func (s FeatureSet) Has(f Feature) bool { return s.Flags&f == f }

// With returns a copy with f set.
func (s FeatureSet) With(f Feature) FeatureSet {
	s.Flags |= f
	return s
}

// Without returns a copy with f cleared.
func (s FeatureSet) Without(f Feature) FeatureSet {
	s.Flags &^= f
	return s
}

// String lists the set flags in key order.
func (s FeatureSet) String() string {
	var parts []string
	for i, name := range featureNames {
		if s.Flags&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if s.MorphTargets > 0 {
		parts = append(parts, "morph"+strconv.Itoa(int(s.MorphTargets)))
	}
	if s.Has(FeatureSkinning) && s.Joints != JointSint {
		parts = append(parts, "joints"+strconv.Itoa(int(s.Joints)))
	}
	return strings.Join(parts, ",")
}

// MeshFeatures derives the vertex-side features of an input layout: which
// optional attributes exist, the joint type and the morph target count.
func MeshFeatures(layout *rhi.InputLayout) FeatureSet {
	var s FeatureSet
	hasJoints, hasWeights := false, false
	for _, a := range layout.Attrs() {
		switch a.Name {
		case rhi.AttrNormal:
			s.Flags |= FeatureNormals
		case rhi.AttrUV0:
			s.Flags |= FeatureUV0
		case rhi.AttrUV1:
			s.Flags |= FeatureUV1
		case rhi.AttrTangent:
			s.Flags |= FeatureTangents
		case rhi.AttrColor:
			s.Flags |= FeatureVertexColors
		case rhi.AttrJoints:
			hasJoints = true
			s.Joints = jointType(a.Format)
		case rhi.AttrWeights:
			hasWeights = true
		}
	}
	if hasJoints && hasWeights {
		s.Flags |= FeatureSkinning
	} else {
		s.Joints = JointSint
	}
	for i := 0; i < geometry.MaxMorphTargets; i++ {
		if !hasAttr(layout, rhi.AttrTargetPosition(i)) {
			break
		}
		s.MorphTargets++
	}
	if s.MorphTargets > 0 {
		normals := true
		for i := 0; i < int(s.MorphTargets); i++ {
			normals = normals && hasAttr(layout, rhi.AttrTargetNormal(i))
		}
		if normals {
			s.Flags |= FeatureMorphNormals
		}
	}
	// Tangent frames need a binormal too.
	if s.Has(FeatureTangents) && !hasAttr(layout, rhi.AttrBinormal) {
		s.Flags &^= FeatureTangents
	}
	return s
}

func hasAttr(layout *rhi.InputLayout, name string) bool {
	for _, a := range layout.Attrs() {
		if a.Name == name {
			return true
		}
	}
	return false
}

func jointType(f gputypes.VertexFormat) JointType {
	switch f {
	case gputypes.VertexFormatFloat32x4:
		return JointFloat
	case gputypes.VertexFormatUint32x4, gputypes.VertexFormatUint16x4:
		return JointUint
	default:
		return JointSint
	}
}
