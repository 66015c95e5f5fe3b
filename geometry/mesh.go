package geometry

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// MaxMorphTargets is the maximum number of morph targets per mesh.
const MaxMorphTargets = 8

// Semantic is the meaning of a vertex attribute.
type Semantic uint8

// Vertex attribute semantics.
const (
	SemanticPosition Semantic = iota
	SemanticNormal
	SemanticTexCoord0
	SemanticTexCoord1
	SemanticTangent
	SemanticBinormal
	SemanticJoint
	SemanticWeight
	SemanticColor
	SemanticTargetPosition
	SemanticTargetNormal
)

// String returns the semantic name.
func (s Semantic) String() string {
	switch s {
	case SemanticPosition:
		return "position"
	case SemanticNormal:
		return "normal"
	case SemanticTexCoord0:
		return "texcoord0"
	case SemanticTexCoord1:
		return "texcoord1"
	case SemanticTangent:
		return "tangent"
	case SemanticBinormal:
		return "binormal"
	case SemanticJoint:
		return "joint"
	case SemanticWeight:
		return "weight"
	case SemanticColor:
		return "color"
	case SemanticTargetPosition:
		return "target_position"
	case SemanticTargetNormal:
		return "target_normal"
	default:
		return "unknown"
	}
}

// defaultComponents is the component count of a semantic when an
// attribute leaves Components zero.
func (s Semantic) defaultComponents() int {
	switch s {
	case SemanticTexCoord0, SemanticTexCoord1:
		return 2
	case SemanticJoint, SemanticWeight, SemanticColor:
		return 4
	default:
		return 3
	}
}

// ComponentType is the scalar type of attribute and index components.
type ComponentType uint8

// Component types.
const (
	ComponentF32 ComponentType = iota
	ComponentU16
	ComponentU32
	ComponentI32
)

// Size returns the component size in bytes.
func (c ComponentType) Size() int {
	if c == ComponentU16 {
		return 2
	}
	return 4
}

// Attribute is one attribute of the interleaved vertex buffer.
type Attribute struct {
	Semantic Semantic
	Offset   uint32
	Type     ComponentType
	// Components defaults to the semantic's natural count (3 for
	// positions, 2 for texture coordinates, 4 for joints and colors).
	Components int
	// Target is the morph target index of target semantics.
	Target int
}

// components returns the effective component count.
func (a Attribute) components() int {
	if a.Components > 0 {
		return a.Components
	}
	return a.Semantic.defaultComponents()
}

// byteSize returns the attribute size in bytes.
func (a Attribute) byteSize() uint32 {
	return uint32(a.components() * a.Type.Size())
}

// Subset is a drawable range of the index buffer (or of the vertices for
// non-indexed meshes).
type Subset struct {
	Name   string
	Count  uint32
	Offset uint32
	// Bounds are computed by Validate when HasBounds is false.
	Bounds    Bounds
	HasBounds bool
	// LightmapWidth and LightmapHeight are the suggested lightmap size.
	LightmapWidth  uint32
	LightmapHeight uint32
}

var (
	meshIDs     atomic.Uint64
	generations atomic.Uint64
)

// nextGeneration returns a process-wide increasing generation number, so a
// replaced resource never repeats an earlier generation.
func nextGeneration() uint64 { return generations.Add(1) }

// Mesh is application-owned geometry. Every setter marks the mesh dirty
// and bumps its generation.
//
// Mesh is not safe for concurrent mutation; mutate between frames.
type Mesh struct {
	id         uint64
	generation uint64
	dirty      bool

	stride     uint32
	primitive  gputypes.PrimitiveTopology
	attributes []Attribute
	vertexData []byte
	indexData  []byte
	indexType  ComponentType
	bounds     Bounds
	hasBounds  bool
	subsets    []Subset
}

// NewMesh returns an empty triangle-list mesh.
func NewMesh() *Mesh {
	return &Mesh{
		id:         meshIDs.Add(1),
		generation: nextGeneration(),
		dirty:      true,
		primitive:  gputypes.PrimitiveTopologyTriangleList,
		indexType:  ComponentU32,
	}
}

func (m *Mesh) changed() {
	m.dirty = true
	m.generation = nextGeneration()
}

// ID returns the mesh identity used by the buffer cache.
func (m *Mesh) ID() uint64 { return m.id }

// Generation returns the current content generation.
func (m *Mesh) Generation() uint64 { return m.generation }

// Dirty reports whether the mesh changed since the cache last saw it.
func (m *Mesh) Dirty() bool { return m.dirty }

// Stride returns the vertex stride in bytes.
func (m *Mesh) Stride() uint32 { return m.stride }

// Primitive returns the primitive topology.
func (m *Mesh) Primitive() gputypes.PrimitiveTopology { return m.primitive }

// Attributes returns the vertex attributes.
func (m *Mesh) Attributes() []Attribute { return m.attributes }

// Subsets returns the subsets.
func (m *Mesh) Subsets() []Subset { return m.subsets }

// SetStride sets the vertex stride.
func (m *Mesh) SetStride(stride uint32) {
	m.stride = stride
	m.changed()
}

// SetPrimitive sets the primitive topology.
func (m *Mesh) SetPrimitive(p gputypes.PrimitiveTopology) {
	m.primitive = p
	m.changed()
}

// AddAttribute appends a vertex attribute.
func (m *Mesh) AddAttribute(a Attribute) {
	m.attributes = append(m.attributes, a)
	m.changed()
}

// ClearAttributes removes all attributes.
func (m *Mesh) ClearAttributes() {
	m.attributes = nil
	m.changed()
}

// SetVertexData replaces the interleaved vertex data.
func (m *Mesh) SetVertexData(data []byte) {
	m.vertexData = data
	m.changed()
}

// SetIndexData replaces the index data. typ must be ComponentU16 or
// ComponentU32. Nil data makes the mesh non-indexed.
func (m *Mesh) SetIndexData(data []byte, typ ComponentType) {
	m.indexData = data
	m.indexType = typ
	m.changed()
}

// SetBounds sets explicit bounds, skipping the position scan.
func (m *Mesh) SetBounds(min, max mgl32.Vec3) {
	m.bounds = Bounds{Min: min, Max: max}
	m.hasBounds = true
	m.changed()
}

// ClearBounds drops explicit bounds.
func (m *Mesh) ClearBounds() {
	m.hasBounds = false
	m.changed()
}

// AddSubset appends a subset.
func (m *Mesh) AddSubset(s Subset) {
	m.subsets = append(m.subsets, s)
	m.changed()
}

// ClearSubsets removes all subsets. A mesh without subsets draws as one.
func (m *Mesh) ClearSubsets() {
	m.subsets = nil
	m.changed()
}

// Clear resets the mesh to its empty state.
func (m *Mesh) Clear() {
	m.stride = 0
	m.primitive = gputypes.PrimitiveTopologyTriangleList
	m.attributes = nil
	m.vertexData = nil
	m.indexData = nil
	m.indexType = ComponentU32
	m.hasBounds = false
	m.subsets = nil
	m.changed()
}
